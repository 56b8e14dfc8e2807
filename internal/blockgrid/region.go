package blockgrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Region is the inclusive bounding box of the lattice.
type Region struct {
	XMin, XMax, YMin, YMax float64
}

// ParseRegion parses "xmin/xmax/ymin/ymax", optionally prefixed with "-R"
// or "R" as in GMT-style command lines. It only checks syntax; bounds are
// validated by NewLattice.
func ParseRegion(s string) (Region, error) {
	p := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(p, "-R"), strings.HasPrefix(p, "-r"):
		p = p[2:]
	case strings.HasPrefix(p, "R"), strings.HasPrefix(p, "r"):
		p = p[1:]
	}

	parts := strings.Split(p, "/")
	if len(parts) != 4 {
		return Region{}, configErrorf("region", "%q: want xmin/xmax/ymin/ymax", s)
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Region{}, &ConfigError{Field: "region", Reason: fmt.Sprintf("%q: bad bound %q", s, part), Err: err}
		}
		v[i] = f
	}
	return Region{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3]}, nil
}

// Validate checks that both extents are finite and strictly positive.
func (r Region) Validate() error {
	for _, v := range [...]float64{r.XMin, r.XMax, r.YMin, r.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf("region", "%s: bounds must be finite", r)
		}
	}
	if !(r.XMax > r.XMin && r.YMax > r.YMin) {
		return configErrorf("region", "%s: require xmax > xmin and ymax > ymin", r)
	}
	return nil
}

// String renders the region in the same slash grammar ParseRegion accepts.
func (r Region) String() string {
	return fmt.Sprintf("%g/%g/%g/%g", r.XMin, r.XMax, r.YMin, r.YMax)
}
