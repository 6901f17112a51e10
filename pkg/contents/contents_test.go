package contents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	var cases = []struct {
		in  string
		out []string
	}{
		{
			"usr/bin/btrfs\tadmin/btrfs-progs",
			[]string{"admin/btrfs-progs"},
		},
		{
			"bin/x  shells/a,shells/b\n",
			[]string{"shells/a", "shells/b"},
		},
		{
			"usr/share/doc/foo/README    doc/foo   \r\n",
			[]string{"doc/foo"},
		},
		{
			"bin/y  utils/a,,utils/b,",
			[]string{"utils/a", "utils/b"},
		},
		{
			"",
			nil,
		},
		{
			"   \t \n",
			nil,
		},
		{
			"bin/z  ,",
			nil,
		},
	}

	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			assert.EqualValues(t, tt.out, ParseLine(tt.in))
		})
	}
}

func TestCount(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	var cases = []struct {
		name string
		in   string
		out  Counts
	}{
		{
			"repeated package",
			"bin/a  utils/a\nbin/b  utils/a\nbin/c  utils/b\n",
			Counts{"utils/a": 2, "utils/b": 1},
		},
		{
			"multiple packages on a line",
			"bin/x  shells/a,shells/b\n",
			Counts{"shells/a": 1, "shells/b": 1},
		},
		{
			"blank lines are ignored",
			"bin/a  utils/a\n\n   \nbin/b  utils/a\n\nbin/c  utils/b",
			Counts{"utils/a": 2, "utils/b": 1},
		},
		{
			"empty input",
			"",
			Counts{},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Count(ctx, strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.EqualValues(t, tt.out, out)
		})
	}
}

func TestCount_Conservation(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	in := generateIndex(1000, 40)
	var pairs int
	for _, line := range strings.Split(in, "\n") {
		pairs += len(ParseLine(line))
	}

	out, err := Count(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.EqualValues(t, pairs, out.Total())
	for name, n := range out {
		assert.Positive(t, n, "package %s has a non-positive count", name)
	}
}

func TestCount_PermutationInvariant(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	lines := strings.Split(generateIndex(500, 25), "\n")
	expected, err := Count(ctx, strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		rng.Shuffle(len(lines), func(i, j int) {
			lines[i], lines[j] = lines[j], lines[i]
		})
		out, err := Count(ctx, strings.NewReader(strings.Join(lines, "\n")))
		require.NoError(t, err)
		assert.EqualValues(t, expected, out)
	}
}

func TestCount_LongLine(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	in := strings.Repeat("a", 200*1024) + " utils/long\nbin/a utils/a\n"
	out, err := Count(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.EqualValues(t, Counts{"utils/long": 1, "utils/a": 1}, out)
}

func TestCount_OverlongLine(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	in := "bin/a utils/a\n" +
		strings.Repeat("a", maxLineSize+10) + " utils/long\n" +
		"bin/b utils/b\n"

	out, err := Count(ctx, strings.NewReader(in))
	require.NoError(t, err)
	assert.EqualValues(t, Counts{"utils/a": 1, "utils/b": 1}, out)

	out, err = CountParallel(ctx, strings.NewReader(in), 2)
	require.NoError(t, err)
	assert.EqualValues(t, Counts{"utils/a": 1, "utils/b": 1}, out)
}

func TestLineSplitter(t *testing.T) {
	var cases = []struct {
		name    string
		in      string
		lines   []string
		skipped int
	}{
		{
			"short lines",
			"bin/a x\r\nbin/b y\nbin/c z",
			[]string{"bin/a x", "bin/b y", "bin/c z"},
			0,
		},
		{
			"overlong line in the middle",
			"bin/a x\n" + strings.Repeat("a", 40) + " utils/long\nbin/b y\n",
			[]string{"bin/a x", "bin/b y"},
			1,
		},
		{
			"overlong last line",
			"bin/a x\n" + strings.Repeat("a", 40),
			[]string{"bin/a x"},
			1,
		},
		{
			"line just under the limit",
			strings.Repeat("b", 15) + "\n" + strings.Repeat("c", 16) + "\nbin/d\n",
			[]string{strings.Repeat("b", 15), "bin/d"},
			1,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range []io.Reader{strings.NewReader(tt.in), iotest.OneByteReader(strings.NewReader(tt.in))} {
				scanner, splitter := newScanner(r, 16)
				var lines []string
				for scanner.Scan() {
					lines = append(lines, scanner.Text())
				}
				require.NoError(t, scanner.Err())
				assert.EqualValues(t, tt.lines, lines)
				assert.EqualValues(t, tt.skipped, splitter.skipped)
			}
		})
	}
}

func TestCount_ReadError(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	errBroken := errors.New("broken stream")
	r := io.MultiReader(strings.NewReader("bin/a utils/a\n"), &failingReader{err: errBroken})

	_, err := Count(ctx, r)
	assert.ErrorIs(t, err, errBroken)
}

func TestCount_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.TODO())
	cancel()

	_, err := Count(ctx, strings.NewReader(generateIndex(checkEvery*2, 10)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCounts_Merge(t *testing.T) {
	c := Counts{"utils/a": 1, "utils/b": 2}
	c.Merge(Counts{"utils/b": 3, "utils/c": 4})
	assert.EqualValues(t, Counts{"utils/a": 1, "utils/b": 5, "utils/c": 4}, c)
	assert.EqualValues(t, 10, c.Total())
}

type failingReader struct {
	err error
}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

// generateIndex builds a deterministic Contents index with the
// given number of lines spread over the given number of packages.
// Every seventh line is blank and every fifth line belongs to two
// packages.
func generateIndex(lines, packages int) string {
	sb := strings.Builder{}
	for i := 0; i < lines; i++ {
		switch {
		case i%7 == 0:
			sb.WriteString("\n")
		case i%5 == 0:
			sb.WriteString(fmt.Sprintf("usr/share/file-%d\t\tsection/pkg-%d,section/pkg-%d\n", i, i%packages, (i*3)%packages))
		default:
			sb.WriteString(fmt.Sprintf("usr/bin/file-%d    section/pkg-%d\n", i, (i*i)%packages))
		}
	}
	return sb.String()
}
