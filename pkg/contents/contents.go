// Package contents counts the packages referenced by a Debian
// Contents index and ranks them by the number of files they own.
//
// https://wiki.debian.org/DebianRepository/Format#A.22Contents.22_indices
package contents

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
)

// maxLineSize is the longest line that is counted. Longer
// lines are skipped.
const maxLineSize = 16 * 1024 * 1024

// checkEvery is how many lines are read between context checks.
const checkEvery = 4096

// Counts maps a package identifier (e.g. "admin/btrfs-progs")
// to the number of files attributed to it.
type Counts map[string]int

// ParseLine extracts the package identifiers from a single
// line of a Contents index.
//
// The package list is the last whitespace-delimited token of
// the line. Blank lines and empty list entries yield nothing.
func ParseLine(line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	var out []string
	for _, name := range strings.Split(fields[len(fields)-1], ",") {
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Add counts every package on the line once and returns how
// many packages were counted.
func (c Counts) Add(line string) int {
	names := ParseLine(line)
	for _, name := range names {
		c[name]++
	}
	return len(names)
}

// Merge adds the counts of other into c.
func (c Counts) Merge(other Counts) {
	for name, n := range other {
		c[name] += n
	}
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	var total int
	for _, n := range c {
		total += n
	}
	return total
}

// Count reads a decompressed Contents index line by line and
// returns the number of files owned by each package.
//
// Lines without a package list are skipped. Only errors from
// reading r are returned.
func Count(ctx context.Context, r io.Reader) (Counts, error) {
	log := logr.FromContextOrDiscard(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := Counts{}
	scanner, splitter := newScanner(r, maxLineSize)
	var n, pairs int
	for scanner.Scan() {
		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pairs += counts.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Error(err, "failed to read contents index", "line", n+splitter.skipped)
		return nil, fmt.Errorf("reading line %d: %w", n+splitter.skipped+1, err)
	}
	if splitter.skipped > 0 {
		log.Info("skipped overlong lines", "count", splitter.skipped, "max", maxLineSize)
	}
	log.V(1).Info("counted contents index", "lines", n, "files", pairs, "packages", len(counts))
	return counts, nil
}

// lineSplitter splits input into lines like bufio.ScanLines,
// except that lines of limit bytes or more are dropped rather
// than failing the scan.
type lineSplitter struct {
	limit    int
	skipping bool
	skipped  int
}

func (l *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if l.skipping {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			l.skipping = false
			return i + 1, nil, nil
		}
		if atEOF {
			l.skipping = false
		}
		return len(data), nil, nil
	}
	advance, token, err := bufio.ScanLines(data, atEOF)
	if advance == 0 && token == nil && err == nil && !atEOF && len(data) >= l.limit {
		l.skipping = true
		l.skipped++
		return len(data), nil, nil
	}
	return advance, token, err
}

func newScanner(r io.Reader, limit int) (*bufio.Scanner, *lineSplitter) {
	l := &lineSplitter{limit: limit}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)
	scanner.Split(l.split)
	return scanner, l
}
