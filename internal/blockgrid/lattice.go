package blockgrid

import (
	"math"
)

// cellBytes is the arena cost of one aggregate value.
const cellBytes = 8

// Lattice is the regular nx by ny node grid covering a Region at spacing Inc.
// It is immutable once built by NewLattice.
type Lattice struct {
	Region Region
	Inc    float64
	NX, NY int
}

// NewLattice validates the region and spacing and derives the lattice
// dimensions. Each dimension is round(extent/inc)+1 with ties rounded away
// from zero, so the region bounds are themselves lattice nodes.
func NewLattice(r Region, inc float64) (Lattice, error) {
	if err := r.Validate(); err != nil {
		return Lattice{}, err
	}
	if !(inc > 0) || math.IsInf(inc, 0) {
		return Lattice{}, configErrorf("inc", "%g: must be a finite value > 0", inc)
	}

	nx := dimension(r.XMax-r.XMin, inc)
	ny := dimension(r.YMax-r.YMin, inc)
	if !(nx >= 1 && ny >= 1) {
		return Lattice{}, configErrorf("inc", "computed grid dimensions invalid (%g x %g)", nx, ny)
	}

	// float64(math.MaxInt) rounds up to 2^63, so >= rejects anything int cannot hold.
	limit := float64(math.MaxInt)
	if nx >= limit || ny >= limit {
		return Lattice{}, &CapacityError{NX: nx, NY: ny}
	}
	inx, iny := int(nx), int(ny)
	if inx > math.MaxInt/iny || inx*iny > math.MaxInt/cellBytes {
		return Lattice{}, &CapacityError{NX: nx, NY: ny}
	}

	return Lattice{Region: r, Inc: inc, NX: inx, NY: iny}, nil
}

func dimension(extent, inc float64) float64 {
	return math.Round(extent/inc) + 1
}

// Cells returns nx*ny.
func (l Lattice) Cells() int {
	return l.NX * l.NY
}

// Index returns the arena offset of cell (ix, iy).
func (l Lattice) Index(ix, iy int) int {
	return ix + l.NX*iy
}
