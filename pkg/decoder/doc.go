/*
Package decoder extracts validated events from a growing model response.

The model streams text that only becomes valid JSON at the very end. A Decoder
re-parses the accumulated buffer on every chunk with a truncation-tolerant
parser and looks at the first event not yet emitted:

  - valid and followed by a sibling: it cannot grow any more, so it is emitted;
  - valid but last in the array: it is held as the candidate final event;
  - invalid: it is still being written, so nothing happens until more text arrives.

Close emits the held candidate. Events come out in array order, exactly once,
and never before they pass schema validation.
*/
package decoder
