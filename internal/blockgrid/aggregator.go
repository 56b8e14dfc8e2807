package blockgrid

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects which extreme of z each cell keeps.
type Mode int

const (
	ModeMinimum Mode = iota
	ModeMaximum
)

func (m Mode) String() string {
	switch m {
	case ModeMinimum:
		return "min"
	case ModeMaximum:
		return "max"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "min"/"minimum" and "max"/"maximum".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "min", "minimum":
		return ModeMinimum, nil
	case "max", "maximum":
		return ModeMaximum, nil
	}
	return 0, configErrorf("mode", "unknown aggregation %q (want min or max)", s)
}

// sentinel is the aggregate an untouched cell starts from.
func (m Mode) sentinel() float64 {
	if m == ModeMaximum {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// UpdateRule decides when a later z replaces a cell's stored aggregate.
type UpdateRule int

const (
	// UpdateStrict replaces only on strict improvement. This is the default.
	UpdateStrict UpdateRule = iota
	// UpdateLegacyLastWriter reproduces the legacy script's comparison:
	// in minimum mode every value overwrites, in maximum mode only strictly
	// smaller values are rejected. Use it for parity checks only.
	UpdateLegacyLastWriter
)

func (u UpdateRule) String() string {
	switch u {
	case UpdateStrict:
		return "strict"
	case UpdateLegacyLastWriter:
		return "legacy"
	}
	return fmt.Sprintf("UpdateRule(%d)", int(u))
}

// ParseUpdateRule accepts "strict" and "legacy" (alias "last-writer").
func ParseUpdateRule(s string) (UpdateRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return UpdateStrict, nil
	case "legacy", "last-writer":
		return UpdateLegacyLastWriter, nil
	}
	return 0, configErrorf("update", "unknown rule %q (want strict or legacy)", s)
}

// Cell is a read-only view of one occupied lattice cell.
type Cell struct {
	IX, IY int
	Value  float64
	// Token is the verbatim z text that produced Value; empty unless the
	// aggregator retains tokens.
	Token string
}

// Aggregator owns the dense lattice arena: one aggregate and one hit flag
// per cell, plus the winning z token when tokens are retained. Cell (ix, iy)
// lives at ix + nx*iy. Not safe for concurrent use.
type Aggregator struct {
	lattice Lattice
	mode    Mode
	rule    UpdateRule

	values []float64
	hit    []bool
	tokens []string // nil unless tokens are retained

	occupied int
	updates  int
}

// NewAggregator allocates the arena for l and presets every cell to the
// mode's sentinel. keepTokens retains the verbatim z text of each cell's
// current aggregate for legacy formatting.
func NewAggregator(l Lattice, mode Mode, rule UpdateRule, keepTokens bool) *Aggregator {
	n := l.Cells()
	a := &Aggregator{
		lattice: l,
		mode:    mode,
		rule:    rule,
		values:  make([]float64, n),
		hit:     make([]bool, n),
	}
	preset := mode.sentinel()
	for i := range a.values {
		a.values[i] = preset
	}
	if keepTokens {
		a.tokens = make([]string, n)
	}
	return a
}

// Add folds z into cell (ix, iy) and reports whether the stored aggregate
// changed. The first value a cell sees is always stored. token is copied
// when it wins, so callers may reuse its backing array.
func (a *Aggregator) Add(ix, iy int, z float64, token []byte) bool {
	idx := a.lattice.Index(ix, iy)
	if a.hit[idx] && !a.replaces(a.values[idx], z) {
		return false
	}
	if !a.hit[idx] {
		a.hit[idx] = true
		a.occupied++
	}
	a.values[idx] = z
	if a.tokens != nil {
		a.tokens[idx] = string(token)
	}
	a.updates++
	return true
}

func (a *Aggregator) replaces(cur, z float64) bool {
	switch {
	case a.mode == ModeMinimum && a.rule == UpdateLegacyLastWriter:
		// The legacy test was "z < cur, or else z >= cur".
		return z < cur || z >= cur
	case a.mode == ModeMinimum:
		return z < cur
	case a.rule == UpdateLegacyLastWriter:
		return !(z < cur)
	default:
		return z > cur
	}
}

// Cell returns the state of (ix, iy); ok is false for an unvisited cell.
func (a *Aggregator) Cell(ix, iy int) (Cell, bool) {
	idx := a.lattice.Index(ix, iy)
	if !a.hit[idx] {
		return Cell{}, false
	}
	return a.cellAt(ix, iy, idx), true
}

func (a *Aggregator) cellAt(ix, iy, idx int) Cell {
	c := Cell{IX: ix, IY: iy, Value: a.values[idx]}
	if a.tokens != nil {
		c.Token = a.tokens[idx]
	}
	return c
}

// Walk calls fn for every occupied cell, outer loop over iy and inner over
// ix. It stops at the first error fn returns.
func (a *Aggregator) Walk(fn func(Cell) error) error {
	nx, ny := a.lattice.NX, a.lattice.NY
	for iy := 0; iy < ny; iy++ {
		row := iy * nx
		for ix := 0; ix < nx; ix++ {
			if !a.hit[row+ix] {
				continue
			}
			if err := fn(a.cellAt(ix, iy, row+ix)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lattice returns the lattice the arena was sized for.
func (a *Aggregator) Lattice() Lattice { return a.lattice }

// Mode returns the aggregation mode.
func (a *Aggregator) Mode() Mode { return a.mode }

// Occupied returns the number of cells that have received at least one value.
func (a *Aggregator) Occupied() int { return a.occupied }

// Updates returns how many Add calls changed a stored aggregate.
func (a *Aggregator) Updates() int { return a.updates }

// KeepsTokens reports whether z tokens are retained.
func (a *Aggregator) KeepsTokens() bool { return a.tokens != nil }
