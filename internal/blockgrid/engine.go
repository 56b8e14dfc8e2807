package blockgrid

import (
	"bufio"
	"io"
)

// Options is the run configuration the engine consumes.
type Options struct {
	Region     Region
	Inc        float64
	Mode       Mode
	Addressing Addressing
	Update     UpdateRule
	Format     Format
}

// Engine wires a Mapper to an Aggregator and a Formatter for one run.
// Points flow through Add one at a time; WriteTo emits the occupied cells.
type Engine struct {
	opts      Options
	lattice   Lattice
	mapper    Mapper
	agg       *Aggregator
	formatter Formatter

	accepted int
	dropped  int
}

// NewEngine validates opts, sizes the lattice and allocates the arena.
// Every configuration error surfaces here, before any point is consumed.
func NewEngine(opts Options) (*Engine, error) {
	l, err := NewLattice(opts.Region, opts.Inc)
	if err != nil {
		return nil, err
	}
	m, err := NewMapper(l, opts.Addressing)
	if err != nil {
		return nil, err
	}
	f, err := NewFormatter(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.Mode != ModeMinimum && opts.Mode != ModeMaximum {
		return nil, configErrorf("mode", "unknown aggregation %v", opts.Mode)
	}
	if opts.Update != UpdateStrict && opts.Update != UpdateLegacyLastWriter {
		return nil, configErrorf("update", "unknown rule %v", opts.Update)
	}

	return &Engine{
		opts:      opts,
		lattice:   l,
		mapper:    m,
		agg:       NewAggregator(l, opts.Mode, opts.Update, opts.Format.NeedsTokens()),
		formatter: f,
	}, nil
}

// Add maps (x, y) and folds z into the target cell. It returns false when
// the addressing policy discarded the point.
func (e *Engine) Add(x, y, z float64, zToken []byte) bool {
	ix, iy, ok := e.mapper.Map(x, y)
	if !ok {
		e.dropped++
		return false
	}
	e.agg.Add(ix, iy, z, zToken)
	e.accepted++
	return true
}

// Walk calls fn with the output coordinate of every occupied cell in
// row-major order.
func (e *Engine) Walk(fn func(x, y float64, c Cell) error) error {
	return e.agg.Walk(func(c Cell) error {
		x, y := e.mapper.Coord(c.IX, c.IY)
		return fn(x, y, c)
	})
}

// Coord returns the output coordinate of lattice cell (ix, iy).
func (e *Engine) Coord(ix, iy int) (float64, float64) { return e.mapper.Coord(ix, iy) }

// WriteTo writes one line per occupied cell to w and returns the number of
// bytes written.
func (e *Engine) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	var n int64
	line := make([]byte, 0, 96)
	err := e.Walk(func(x, y float64, c Cell) error {
		line = e.formatter.AppendCell(line[:0], x, y, c)
		k, err := bw.Write(line)
		n += int64(k)
		return err
	})
	if err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// Options returns the configuration the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Lattice returns the sized lattice.
func (e *Engine) Lattice() Lattice { return e.lattice }

// Aggregator exposes the owned arena for read-only reporting.
func (e *Engine) Aggregator() *Aggregator { return e.agg }

// Accepted returns the number of points routed to a cell.
func (e *Engine) Accepted() int { return e.accepted }

// Dropped returns the number of points the addressing policy discarded.
func (e *Engine) Dropped() int { return e.dropped }
