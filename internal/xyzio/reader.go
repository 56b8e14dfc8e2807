// Package xyzio reads whitespace-separated "x y z" point records.
package xyzio

import (
	"bufio"
	"io"
	"math"
	"strconv"
)

const (
	// initialLineBuffer is the starting scanner buffer.
	initialLineBuffer = 64 * 1024
	// MaxLineLength bounds a single input line. Longer lines abort the read.
	MaxLineLength = 1024 * 1024
)

// Record is one parsed point. ZToken aliases the reader's line buffer and
// is only valid until the next call to Next.
type Record struct {
	X, Y, Z float64
	ZToken  []byte
}

// Reader streams Records from an io.Reader, skipping blank lines, comment
// lines and lines whose first three fields are not all numbers.
type Reader struct {
	sc  *bufio.Scanner
	rec Record

	lines   int
	skipped int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialLineBuffer), MaxLineLength)
	return &Reader{sc: sc}
}

// Next advances to the next well-formed record. It returns false at end of
// input or on a read error; check Err afterwards.
func (r *Reader) Next() bool {
	for r.sc.Scan() {
		r.lines++
		rec, ok := ParseLine(r.sc.Bytes())
		if !ok {
			if !isBlankOrComment(r.sc.Bytes()) {
				r.skipped++
			}
			continue
		}
		r.rec = rec
		return true
	}
	return false
}

// Record returns the record Next last advanced to.
func (r *Reader) Record() Record { return r.rec }

// Err returns the first non-EOF read error, including bufio.ErrTooLong for
// a line longer than MaxLineLength.
func (r *Reader) Err() error { return r.sc.Err() }

// Lines returns the number of lines consumed so far.
func (r *Reader) Lines() int { return r.lines }

// Skipped returns the number of non-blank, non-comment lines that did not
// parse as a record.
func (r *Reader) Skipped() int { return r.skipped }

// ParseLine parses the first three whitespace-separated fields of line.
// Fields beyond the third are ignored. Non-finite x or y and NaN z are
// rejected because they have no lattice position or ordering.
func ParseLine(line []byte) (Record, bool) {
	if isBlankOrComment(line) {
		return Record{}, false
	}

	var (
		vals [3]float64
		tok  []byte
		rest = line
	)
	for i := range vals {
		tok, rest = nextField(rest)
		if len(tok) == 0 {
			return Record{}, false
		}
		v, err := strconv.ParseFloat(string(tok), 64)
		if err != nil {
			return Record{}, false
		}
		vals[i] = v
	}

	x, y, z := vals[0], vals[1], vals[2]
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) || math.IsNaN(z) {
		return Record{}, false
	}
	return Record{X: x, Y: y, Z: z, ZToken: tok}, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func isBlankOrComment(line []byte) bool {
	for _, c := range line {
		if isSpace(c) {
			continue
		}
		return c == '#'
	}
	return true
}

// nextField returns the first whitespace-delimited field of b and the
// remainder after it.
func nextField(b []byte) (field, rest []byte) {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	j := i
	for j < len(b) && !isSpace(b[j]) {
		j++
	}
	return b[i:j], b[j:]
}
