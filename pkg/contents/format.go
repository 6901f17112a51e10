package contents

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultWidth is the length of each line written by Print.
const DefaultWidth = 50

// Print writes the entries as a block of fixed-width lines with
// the name on the left and the count on the right. The block is
// surrounded by blank lines. Names too long for the width are
// separated from the count by a single space.
func Print(w io.Writer, entries []Entry, width int) error {
	sb := strings.Builder{}
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(FormatEntry(e, width))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// FormatEntry renders a single entry padded to the given width.
func FormatEntry(e Entry, width int) string {
	count := strconv.Itoa(e.Count)
	padding := width - len(e.Name) - len(count)
	if padding < 1 {
		padding = 1
	}
	return e.Name + strings.Repeat(" ", padding) + count
}

// PrintJSON writes the entries as an indented JSON array.
func PrintJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(entries)
}
