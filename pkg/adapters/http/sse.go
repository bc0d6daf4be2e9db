package http

import (
	"bufio"
	"io"
	"strings"
)

// maxUnitSize bounds a single SSE line.
const maxUnitSize = 1 << 20

// Unit is one SSE message: the lines up to a blank line.
type Unit struct {
	Event string
	Data  string
}

// ReadUnits splits r into SSE units and calls fn for each until fn returns
// false or r ends. Multiple data lines are joined with newlines, comment
// lines are ignored and a trailing unit without a blank line is dropped.
func ReadUnits(r io.Reader, fn func(Unit) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxUnitSize)

	var (
		unit Unit
		data []string
		seen bool
	)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			if seen {
				unit.Data = strings.Join(data, "\n")
				if !fn(unit) {
					return nil
				}
			}
			unit, data, seen = Unit{}, nil, false
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			unit.Event = value
			seen = true
		case "data":
			data = append(data, value)
			seen = true
		}
	}
	return sc.Err()
}
