package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"   ___  __ _ ___  ___| |", "#818cf8"},
	{"  / _ \\/ _` / __|/ _ \\ |", "#a78bfa"},
	{" |  __/ (_| \\__ \\  __/ |", "#e879f9"},
	{"  \\___|\\__,_|___/\\___|_|", "#fb7185"},
}

// PrintBanner writes the easel banner to w in a violet gradient. Profile
// detection follows w, so piped output stays plain.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w)
}
