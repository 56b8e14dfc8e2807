package monitoring

import (
	"github.com/dustin/go-humanize"
)

// DefaultProgressEvery is the record interval between progress lines.
const DefaultProgressEvery = 1000000

// Progress logs a line every N ticks, e.g. "3,000,000 lines".
// A zero Progress, or one built with every <= 0, never logs.
type Progress struct {
	every int
	n     int
	until int
}

// NewProgress returns a Progress that logs every `every` ticks.
func NewProgress(every int) *Progress {
	return &Progress{every: every, until: every}
}

// Tick records one processed record.
func (p *Progress) Tick() {
	if p == nil || p.every <= 0 {
		return
	}
	p.n++
	p.until--
	if p.until == 0 {
		p.until = p.every
		Logf("%s lines", humanize.Comma(int64(p.n)))
	}
}

// Count returns the number of ticks so far.
func (p *Progress) Count() int {
	if p == nil {
		return 0
	}
	return p.n
}
