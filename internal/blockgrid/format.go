package blockgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// Format selects how an occupied cell is rendered.
type Format int

const (
	// FormatCompact prints x, y and z with up to 10 significant digits (%.10g).
	FormatCompact Format = iota
	// FormatLegacy prints x and y with one decimal and z as the verbatim
	// input token that set the cell's aggregate.
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatCompact:
		return "compact"
	case FormatLegacy:
		return "legacy"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts "compact" and "legacy".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compact":
		return FormatCompact, nil
	case "legacy":
		return FormatLegacy, nil
	}
	return 0, configErrorf("format", "unknown format %q (want compact or legacy)", s)
}

// NeedsTokens reports whether the format prints the original z text.
func (f Format) NeedsTokens() bool { return f == FormatLegacy }

// Formatter appends one output line for a cell located at (x, y).
type Formatter interface {
	AppendCell(dst []byte, x, y float64, c Cell) []byte
}

// NewFormatter returns the Formatter for f.
func NewFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatCompact:
		return compactFormatter{}, nil
	case FormatLegacy:
		return legacyFormatter{}, nil
	}
	return nil, configErrorf("format", "unknown format %v", f)
}

type compactFormatter struct{}

func (compactFormatter) AppendCell(dst []byte, x, y float64, c Cell) []byte {
	dst = strconv.AppendFloat(dst, x, 'g', 10, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, y, 'g', 10, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, c.Value, 'g', 10, 64)
	return append(dst, '\n')
}

type legacyFormatter struct{}

func (legacyFormatter) AppendCell(dst []byte, x, y float64, c Cell) []byte {
	dst = strconv.AppendFloat(dst, x, 'f', 1, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, y, 'f', 1, 64)
	dst = append(dst, ' ')
	if c.Token != "" {
		dst = append(dst, c.Token...)
	} else {
		// Only reachable when the engine was fed values without tokens.
		dst = strconv.AppendFloat(dst, c.Value, 'g', -1, 64)
	}
	return append(dst, '\n')
}
