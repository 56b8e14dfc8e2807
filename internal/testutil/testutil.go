// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// Point is one x y z sample used to build fixtures.
type Point struct {
	X, Y, Z float64
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// XYZ renders points as whitespace separated "x y z" lines.
func XYZ(points ...Point) []byte {
	var b []byte
	for _, p := range points {
		b = strconv.AppendFloat(b, p.X, 'g', -1, 64)
		b = append(b, ' ')
		b = strconv.AppendFloat(b, p.Y, 'g', -1, 64)
		b = append(b, ' ')
		b = strconv.AppendFloat(b, p.Z, 'g', -1, 64)
		b = append(b, '\n')
	}
	return b
}

// WriteTempFile writes data to name inside a fresh temporary directory and
// returns the full path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Lines splits output into non-empty lines, preserving order.
func Lines(data []byte) []string {
	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// SortedLines is Lines with the result sorted, for comparing output whose
// cell order is not under test.
func SortedLines(data []byte) []string {
	out := Lines(data)
	sort.Strings(out)
	return out
}
