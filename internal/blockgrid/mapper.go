package blockgrid

import (
	"fmt"
	"math"
	"strings"
)

// Addressing selects how a continuous point is snapped to a cell.
type Addressing int

const (
	// AddressNearest rounds each offset half away from zero and clamps
	// out-of-region points onto the border cells.
	AddressNearest Addressing = iota
	// AddressTieLow picks the nearest node but resolves exact ties toward the
	// lower coordinate, then clamps like AddressNearest.
	AddressTieLow
	// AddressGridline indexes rows from ymax downward and drops points whose
	// nearest node lies outside the lattice instead of clamping them.
	AddressGridline
)

// tieEpsilon keeps floating-point noise at an exact half step from
// promoting a point to the upper node under AddressTieLow.
const tieEpsilon = 1e-12

var addressingNames = map[Addressing]string{
	AddressNearest:  "nearest",
	AddressTieLow:   "tielow",
	AddressGridline: "gridline",
}

func (a Addressing) String() string {
	if s, ok := addressingNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Addressing(%d)", int(a))
}

// ParseAddressing accepts "nearest", "tielow" (alias "tclround") and "gridline".
func ParseAddressing(s string) (Addressing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nearest":
		return AddressNearest, nil
	case "tielow", "tclround":
		return AddressTieLow, nil
	case "gridline":
		return AddressGridline, nil
	}
	return 0, configErrorf("addressing", "unknown policy %q (want nearest, tielow or gridline)", s)
}

// Mapper converts points to cell indices and cell indices back to the
// coordinates written out for them. Implementations are pure.
type Mapper interface {
	// Map returns the target cell for (x, y). ok is false when the point
	// must be discarded.
	Map(x, y float64) (ix, iy int, ok bool)
	// Coord returns the output coordinate of cell (ix, iy).
	Coord(ix, iy int) (x, y float64)
}

// NewMapper returns the Mapper implementing policy a over l.
func NewMapper(l Lattice, a Addressing) (Mapper, error) {
	switch a {
	case AddressNearest:
		return nearestMapper{l}, nil
	case AddressTieLow:
		return tieLowMapper{l}, nil
	case AddressGridline:
		return gridlineMapper{l}, nil
	}
	return nil, configErrorf("addressing", "unknown policy %v", a)
}

// clampIndex converts a node position to an index in [0, n). The clamp is
// done in float64 so far out-of-region points never overflow int.
func clampIndex(node float64, n int) int {
	if !(node >= 0) {
		return 0
	}
	if node > float64(n-1) {
		return n - 1
	}
	return int(node)
}

// tieLowNode is the closed form of a nearest-node search over nodes
// 0, 1, 2, ... that keeps the lower node on a tie.
func tieLowNode(t float64) float64 {
	f := math.Floor(t)
	if t-f > 0.5+tieEpsilon {
		return f + 1
	}
	return f
}

type nearestMapper struct{ l Lattice }

func (m nearestMapper) Map(x, y float64) (int, int, bool) {
	r := m.l.Region
	ix := clampIndex(math.Round((x-r.XMin)/m.l.Inc), m.l.NX)
	iy := clampIndex(math.Round((y-r.YMin)/m.l.Inc), m.l.NY)
	return ix, iy, true
}

func (m nearestMapper) Coord(ix, iy int) (float64, float64) {
	return originCoord(m.l, ix, iy)
}

type tieLowMapper struct{ l Lattice }

func (m tieLowMapper) Map(x, y float64) (int, int, bool) {
	r := m.l.Region
	ix := clampIndex(tieLowNode((x-r.XMin)/m.l.Inc), m.l.NX)
	iy := clampIndex(tieLowNode((y-r.YMin)/m.l.Inc), m.l.NY)
	return ix, iy, true
}

func (m tieLowMapper) Coord(ix, iy int) (float64, float64) {
	return originCoord(m.l, ix, iy)
}

func originCoord(l Lattice, ix, iy int) (float64, float64) {
	return l.Region.XMin + float64(ix)*l.Inc, l.Region.YMin + float64(iy)*l.Inc
}

// gridlineMapper stores row 0 at ymax. Offsets are rounded to the nearest
// node with exact ties going to the smaller coordinate on both axes.
type gridlineMapper struct{ l Lattice }

// halfDown rounds t to the nearest integer, resolving .5 downward.
func halfDown(t float64) float64 {
	return math.Ceil(t - 0.5)
}

func (m gridlineMapper) Map(x, y float64) (int, int, bool) {
	r := m.l.Region
	col := halfDown((x - r.XMin) / m.l.Inc)
	if !(col >= 0 && col < float64(m.l.NX)) {
		return 0, 0, false
	}
	row := float64(m.l.NY-1) - halfDown((y-r.YMin)/m.l.Inc)
	if !(row >= 0 && row < float64(m.l.NY)) {
		return 0, 0, false
	}
	return int(col), int(row), true
}

func (m gridlineMapper) Coord(col, row int) (float64, float64) {
	return m.l.Region.XMin + float64(col)*m.l.Inc, m.l.Region.YMax - float64(row)*m.l.Inc
}
