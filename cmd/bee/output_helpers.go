package main

import (
	"encoding/json"
	"io"
	"os"

	"golang.org/x/term"
)

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// outputWidth returns the terminal width of stdout, or 80 when stdout is
// not a terminal.
func outputWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}
