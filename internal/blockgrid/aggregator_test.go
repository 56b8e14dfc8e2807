package blockgrid

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zIn struct {
	z   float64
	tok string
}

func feed(a *Aggregator, ix, iy int, in ...zIn) {
	for _, v := range in {
		a.Add(ix, iy, v.z, []byte(v.tok))
	}
}

func TestAggregator_UpdateRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mode      Mode
		rule      UpdateRule
		in        []zIn
		wantValue float64
		wantToken string
	}{
		{"strict min", ModeMinimum, UpdateStrict, []zIn{{5, "5"}, {3, "3"}, {3, "3.0"}, {7, "7"}}, 3, "3"},
		{"strict max", ModeMaximum, UpdateStrict, []zIn{{5, "5"}, {3, "3"}, {9, "9"}, {9, "9.0"}}, 9, "9"},
		{"strict min keeps first on tie", ModeMinimum, UpdateStrict, []zIn{{5, "5"}, {5, "5.00"}}, 5, "5"},
		{"first write wins over sentinel", ModeMinimum, UpdateStrict, []zIn{{math.Inf(1), "inf"}}, math.Inf(1), "inf"},
		{"legacy min is last writer", ModeMinimum, UpdateLegacyLastWriter, []zIn{{5, "5"}, {3, "3"}, {7, "7.0"}}, 7, "7.0"},
		{"legacy min tie overwrites token", ModeMinimum, UpdateLegacyLastWriter, []zIn{{5, "5"}, {5, "5.00"}}, 5, "5.00"},
		{"legacy max rejects smaller", ModeMaximum, UpdateLegacyLastWriter, []zIn{{5, "5"}, {3, "3"}}, 5, "5"},
		{"legacy max tie overwrites token", ModeMaximum, UpdateLegacyLastWriter, []zIn{{5, "5"}, {3, "3"}, {9, "9"}, {9, "9.0"}}, 9, "9.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator(unitLattice(t), tt.mode, tt.rule, true)
			feed(a, 1, 2, tt.in...)

			c, ok := a.Cell(1, 2)
			require.True(t, ok)
			assert.Equal(t, tt.wantValue, c.Value)
			assert.Equal(t, tt.wantToken, c.Token)
			assert.Equal(t, 1, a.Occupied())
		})
	}
}

func TestAggregator_AddReportsChange(t *testing.T) {
	t.Parallel()
	a := NewAggregator(unitLattice(t), ModeMinimum, UpdateStrict, false)

	assert.True(t, a.Add(0, 0, 5, nil))
	assert.True(t, a.Add(0, 0, 3, nil))
	assert.False(t, a.Add(0, 0, 3, nil))
	assert.False(t, a.Add(0, 0, 4, nil))
	assert.Equal(t, 2, a.Updates())
}

func TestAggregator_UnvisitedCells(t *testing.T) {
	t.Parallel()
	a := NewAggregator(unitLattice(t), ModeMaximum, UpdateStrict, false)

	_, ok := a.Cell(2, 2)
	assert.False(t, ok)
	assert.Equal(t, math.Inf(-1), a.values[a.lattice.Index(2, 2)])

	calls := 0
	require.NoError(t, a.Walk(func(Cell) error { calls++; return nil }))
	assert.Zero(t, calls)
	assert.False(t, a.KeepsTokens())
}

func TestAggregator_WalkRowMajor(t *testing.T) {
	t.Parallel()
	a := NewAggregator(unitLattice(t), ModeMinimum, UpdateStrict, false)
	a.Add(2, 0, 1, nil)
	a.Add(0, 1, 2, nil)
	a.Add(1, 0, 3, nil)
	a.Add(2, 2, 4, nil)

	var order [][2]int
	require.NoError(t, a.Walk(func(c Cell) error {
		order = append(order, [2]int{c.IX, c.IY})
		return nil
	}))
	assert.Equal(t, [][2]int{{1, 0}, {2, 0}, {0, 1}, {2, 2}}, order)
	assert.Equal(t, 4, a.Occupied())
}

func TestAggregator_TokenIsCopied(t *testing.T) {
	t.Parallel()
	a := NewAggregator(unitLattice(t), ModeMinimum, UpdateStrict, true)

	buf := []byte("1.5")
	a.Add(0, 0, 1.5, buf)
	copy(buf, "9.9")

	c, _ := a.Cell(0, 0)
	assert.Equal(t, "1.5", c.Token)
}

func TestAggregator_StrictMonotonicity(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(42, 1))
	l := unitLattice(t)

	for _, mode := range []Mode{ModeMinimum, ModeMaximum} {
		a := NewAggregator(l, mode, UpdateStrict, false)
		seen := make(map[int][]float64)
		for i := 0; i < 2000; i++ {
			ix, iy := rng.IntN(l.NX), rng.IntN(l.NY)
			z := rng.NormFloat64() * 100
			a.Add(ix, iy, z, nil)
			seen[l.Index(ix, iy)] = append(seen[l.Index(ix, iy)], z)
		}
		require.NoError(t, a.Walk(func(c Cell) error {
			for _, z := range seen[l.Index(c.IX, c.IY)] {
				if mode == ModeMinimum {
					assert.LessOrEqual(t, c.Value, z)
				} else {
					assert.GreaterOrEqual(t, c.Value, z)
				}
			}
			return nil
		}))
	}
}

func TestParsePolicies(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("MAX")
	require.NoError(t, err)
	assert.Equal(t, ModeMaximum, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeMinimum, m)
	_, err = ParseMode("mean")
	assert.ErrorIs(t, err, ErrConfig)

	u, err := ParseUpdateRule("last-writer")
	require.NoError(t, err)
	assert.Equal(t, UpdateLegacyLastWriter, u)
	u, err = ParseUpdateRule("")
	require.NoError(t, err)
	assert.Equal(t, UpdateStrict, u)
	_, err = ParseUpdateRule("first-writer")
	assert.ErrorIs(t, err, ErrConfig)

	assert.Equal(t, "max", ModeMaximum.String())
	assert.Equal(t, "legacy", UpdateLegacyLastWriter.String())
}
