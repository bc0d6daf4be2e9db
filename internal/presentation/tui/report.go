package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/easel/pkg/domain"
)

// maxListed caps the change list; longer runs are summarised by count.
const maxListed = 20

// Report describes a settled run as markdown.
func Report(res domain.Result, err error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", headline(res, err))
	b.WriteString("| | |\n|---|---|\n")
	if res.RunID != "" {
		fmt.Fprintf(&b, "| Run | `%s` |\n", res.RunID)
	}
	fmt.Fprintf(&b, "| Mode | %s |\n", res.Mode)
	fmt.Fprintf(&b, "| Changes | %d |\n", len(res.Changes))
	fmt.Fprintf(&b, "| Duration | %s |\n", res.Duration.Round(time.Millisecond))

	if err != nil {
		fmt.Fprintf(&b, "\n> %s\n", err)
		var applyErr *domain.ApplyError
		if errors.As(err, &applyErr) {
			fmt.Fprintf(&b, ">\n> Failed at change %d (%s). The canvas was rolled back.\n",
				applyErr.Index+1, applyErr.Change.Type)
		}
	}

	if len(res.Changes) > 0 {
		b.WriteString("\n### Changes\n\n")
		for i, c := range res.Changes {
			if i == maxListed {
				fmt.Fprintf(&b, "- … and %d more\n", len(res.Changes)-maxListed)
				break
			}
			b.WriteString(changeLine(c))
		}
	}
	return b.String()
}

func headline(res domain.Result, err error) string {
	switch res.Outcome {
	case domain.OutcomeSuccess:
		return "Canvas updated"
	case domain.OutcomeCancelled:
		return "Run cancelled"
	case domain.OutcomeTimeout:
		return "Run timed out"
	}
	if errors.Is(err, domain.ErrNothingToRepeat) {
		return "Nothing to repeat"
	}
	return "Run failed"
}

func changeLine(c domain.Change) string {
	line := fmt.Sprintf("- **%s**", c.Type)
	if id := c.TargetID(); id != "" {
		line += fmt.Sprintf(" `%s`", id)
	}
	if c.Description != "" {
		line += " " + c.Description
	}
	return line + "\n"
}
