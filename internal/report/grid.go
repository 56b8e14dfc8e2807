// Package report renders a finished lattice as a heatmap image or an
// interactive HTML page.
package report

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/blockminmax/internal/blockgrid"
)

// ErrNoData is returned when the lattice has no occupied cells to draw.
var ErrNoData = errors.New("report: no occupied cells")

// HeatmapGrid is a lattice reduced to at most maxDim cells per side. Each
// block keeps the minimum or maximum of its occupied cells, following the
// run's aggregation mode; blocks with no occupied cell are NaN. Rows are in
// ascending y order regardless of the addressing policy.
//
// HeatmapGrid implements plotter.GridXYZ.
type HeatmapGrid struct {
	cols, rows int
	factor     int
	xs, ys     []float64
	z          []float64 // row-major
	lo, hi     float64
}

// NewHeatmapGrid reduces eng's lattice to a grid no larger than maxDim on
// either side.
func NewHeatmapGrid(eng *blockgrid.Engine, maxDim int) (*HeatmapGrid, error) {
	agg := eng.Aggregator()
	if agg.Occupied() == 0 {
		return nil, ErrNoData
	}
	if maxDim < 1 {
		maxDim = 1
	}
	l := eng.Lattice()

	k := 1
	if n := max(l.NX, l.NY); n > maxDim {
		k = (n + maxDim - 1) / maxDim
	}
	g := &HeatmapGrid{
		cols:   (l.NX + k - 1) / k,
		rows:   (l.NY + k - 1) / k,
		factor: k,
	}

	// Gridline addressing numbers rows downward from ymax.
	flip := false
	if l.NY > 1 {
		_, y0 := eng.Coord(0, 0)
		_, y1 := eng.Coord(0, 1)
		flip = y1 < y0
	}
	row := func(iy int) int {
		if flip {
			return l.NY - 1 - iy
		}
		return iy
	}

	g.xs = make([]float64, g.cols)
	for c := range g.xs {
		first, last := c*k, min((c+1)*k, l.NX)-1
		x0, _ := eng.Coord(first, 0)
		x1, _ := eng.Coord(last, 0)
		g.xs[c] = (x0 + x1) / 2
	}
	g.ys = make([]float64, g.rows)
	for r := range g.ys {
		first, last := r*k, min((r+1)*k, l.NY)-1
		_, y0 := eng.Coord(0, row(first))
		_, y1 := eng.Coord(0, row(last))
		g.ys[r] = (y0 + y1) / 2
	}

	g.z = make([]float64, g.cols*g.rows)
	for i := range g.z {
		g.z[i] = math.NaN()
	}
	mode := agg.Mode()
	_ = agg.Walk(func(cell blockgrid.Cell) error {
		i := (row(cell.IY)/k)*g.cols + cell.IX/k
		cur := g.z[i]
		switch {
		case math.IsNaN(cur):
			g.z[i] = cell.Value
		case mode == blockgrid.ModeMaximum:
			g.z[i] = math.Max(cur, cell.Value)
		default:
			g.z[i] = math.Min(cur, cell.Value)
		}
		return nil
	})

	// The colour range covers finite blocks only; infinite blocks are
	// pinned to its ends so the palette never indexes outside itself.
	values := make([]float64, 0, len(g.z))
	for _, v := range g.z {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	g.lo, g.hi = floats.Min(values), floats.Max(values)
	if g.lo == g.hi {
		g.lo -= 0.5
		g.hi += 0.5
	}
	for i, v := range g.z {
		switch {
		case math.IsInf(v, -1):
			g.z[i] = g.lo
		case math.IsInf(v, 1):
			g.z[i] = g.hi
		}
	}
	return g, nil
}

// Dims returns the number of columns and rows.
func (g *HeatmapGrid) Dims() (c, r int) { return g.cols, g.rows }

// Z returns the block value at column c, row r, or NaN if the block is empty.
func (g *HeatmapGrid) Z(c, r int) float64 { return g.z[r*g.cols+c] }

// X returns the x coordinate of column c's centre.
func (g *HeatmapGrid) X(c int) float64 { return g.xs[c] }

// Y returns the y coordinate of row r's centre.
func (g *HeatmapGrid) Y(r int) float64 { return g.ys[r] }

// Min returns the lower bound of the colour scale.
func (g *HeatmapGrid) Min() float64 { return g.lo }

// Max returns the upper bound of the colour scale. It is strictly greater
// than Min, widened by half a unit each way when every block holds the
// same value.
func (g *HeatmapGrid) Max() float64 { return g.hi }

// Factor returns how many lattice cells per side were folded into a block.
func (g *HeatmapGrid) Factor() int { return g.factor }
