package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON when requested, otherwise the plain text.
func (a *app) emit(w io.Writer, v any, text string) error {
	if a.jsonOutput {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
