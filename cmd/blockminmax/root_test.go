package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/blockminmax/internal/blockgrid"
	"github.com/banshee-data/blockminmax/internal/fsutil"
	"github.com/banshee-data/blockminmax/internal/monitoring"
	"github.com/banshee-data/blockminmax/internal/testutil"
	"github.com/banshee-data/blockminmax/internal/timeutil"
)

var scenario = testutil.XYZ(
	testutil.Point{X: -0.49, Y: -0.49, Z: 5},
	testutil.Point{X: 0.5, Y: 0.5, Z: 10},
	testutil.Point{X: 2.0, Y: 2.0, Z: 9},
	testutil.Point{X: 1.49, Y: 0.49, Z: 7},
)

type harness struct {
	fs     *fsutil.MemoryFileSystem
	stdout bytes.Buffer
	stderr bytes.Buffer
	logs   []string
	app    *app
}

// newHarness builds an app over an in-memory filesystem holding pts.xyz.
// It replaces the package logger, so tests using it must not be parallel.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fs: fsutil.NewMemoryFileSystem()}
	h.fs.WriteFile("pts.xyz", scenario)
	clock := timeutil.NewMockClock(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	clock.Step = time.Second
	h.app = &app{fs: h.fs, clock: clock, stdout: &h.stdout}

	monitoring.SetLogger(func(format string, v ...interface{}) {
		h.logs = append(h.logs, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	return h
}

func (h *harness) run(args ...string) error {
	cmd := newRootCmd(h.app)
	cmd.SetArgs(normalizeArgs(args))
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	return cmd.Execute()
}

func (h *harness) lines(t *testing.T, name string) []string {
	t.Helper()
	data, err := h.fs.ReadFile(name)
	require.NoError(t, err)
	return testutil.Lines(data)
}

func TestRoot_LegacySpelling(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-R0/2/0/2", "-I", "1", "-PATH", "pts.xyz"))

	assert.Equal(t, []string{"0 0 5", "1 0 7", "1 1 10", "2 2 9"}, h.lines(t, "pts.xyz.min"))
	assert.Contains(t, h.logs, "region 0 2 0 2")
	assert.Contains(t, h.logs, "3 columns by 3 rows")
	assert.Contains(t, h.logs, "write pts.xyz.min")
	assert.Contains(t, h.logs, "4 lines, 4 records, 0 skipped, 0 dropped, 4 cells in 1s")
}

func TestRoot_TclRoundLegacyFormat(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("R0/2/0/2", "--tclround", "--format", "legacy", "-o", "out.txt", "pts.xyz"))

	assert.Equal(t, []string{"0.0 0.0 5", "1.0 0.0 7", "2.0 2.0 9"}, h.lines(t, "out.txt"))
}

func TestRoot_MaxDefaultOutput(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-R0/2/0/2", "-MAX", "--path=pts.xyz"))

	assert.Equal(t, []string{"0 0 5", "1 0 7", "1 1 10", "2 2 9"}, h.lines(t, "pts.xyz.max"))
}

func TestRoot_GridlineMatchesTieLow(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-R0/2/0/2", "--addressing", "gridline", "-o", "grid.txt", "pts.xyz"))

	assert.ElementsMatch(t, []string{"0 0 5", "1 0 7", "2 2 9"}, h.lines(t, "grid.txt"))
}

func TestRoot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		config  bool
	}{
		{"missing region", []string{"pts.xyz"}, "region", true},
		{"missing path", []string{"-R0/2/0/2"}, "missing input path", true},
		{"bad increment", []string{"-R0/2/0/2", "-I", "0", "pts.xyz"}, "increment", true},
		{"inverted region", []string{"-R2/0/0/2", "pts.xyz"}, "region", true},
		{"tclround conflict", []string{"-R0/2/0/2", "--tclround", "--addressing", "gridline", "pts.xyz"}, "conflicts", true},
		{"bad policy", []string{"-R0/2/0/2", "--update", "sometimes", "pts.xyz"}, "sometimes", true},
		{"two inputs", []string{"-R0/2/0/2", "-PATH", "pts.xyz", "other.xyz"}, "unexpected argument", true},
		{"missing file", []string{"-R0/2/0/2", "nope.xyz"}, "open nope.xyz", false},
		{"unknown flag", []string{"-R0/2/0/2", "--bogus", "pts.xyz"}, "unknown flag", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.config {
				assert.ErrorIs(t, err, blockgrid.ErrConfig)
			}
			assert.Equal(t, []string{"pts.xyz"}, h.fs.Files(), "no output may be created")
		})
	}
}

func TestRoot_ConfigFile(t *testing.T) {
	h := newHarness(t)
	cfgPath := testutil.WriteTempFile(t, "run.json", []byte(`{
		"region": "0/2/0/2",
		"increment": 2,
		"mode": "max",
		"progress_every": 0
	}`))

	// --inc overrides the file; mode comes from the file.
	require.NoError(t, h.run("--config", cfgPath, "-I1", "pts.xyz"))
	assert.Equal(t, []string{"0 0 5", "1 0 7", "1 1 10", "2 2 9"}, h.lines(t, "pts.xyz.max"))
}

func TestRoot_ConfigFileOutputs(t *testing.T) {
	h := newHarness(t)
	db := filepath.Join(t.TempDir(), "runs.db")
	cfgPath := testutil.WriteTempFile(t, "run.json", []byte(fmt.Sprintf(`{
		"region": "0/2/0/2",
		"heatmap": "reports/grid.png",
		"html": "reports/grid.html",
		"runs_db": %q
	}`, db)))

	// --html overrides the file; the PNG and run log come from the file.
	require.NoError(t, h.run("--config", cfgPath, "--html", "override.html", "pts.xyz"))
	assert.Equal(t, []string{"override.html", "pts.xyz", "pts.xyz.min", "reports/grid.png"}, h.fs.Files())

	var recorded bool
	for _, line := range h.logs {
		recorded = recorded || (strings.HasPrefix(line, "recorded run ") && strings.HasSuffix(line, db))
	}
	assert.True(t, recorded, "run not recorded: %v", h.logs)
}

func TestRoot_Heatmaps(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-R0/2/0/2", "--heatmap", "out.png", "--html", "out.html", "pts.xyz"))

	assert.Equal(t, []string{"out.html", "out.png", "pts.xyz", "pts.xyz.min"}, h.fs.Files())
	html, err := h.fs.ReadFile("out.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "zmin 0/2/0/2")
}

func TestRoot_HeatmapSkippedWithoutData(t *testing.T) {
	h := newHarness(t)
	h.fs.WriteFile("empty.xyz", []byte("# nothing here\n"))
	require.NoError(t, h.run("-R0/2/0/2", "--heatmap", "out.png", "empty.xyz"))

	assert.Contains(t, h.logs, "heatmap skipped: no occupied cells")
	assert.Equal(t, []string{"empty.xyz", "empty.xyz.min", "pts.xyz"}, h.fs.Files())
}

func TestRoot_RunsDB(t *testing.T) {
	h := newHarness(t)
	db := filepath.Join(t.TempDir(), "runs.db")

	require.NoError(t, h.run("-R0/2/0/2", "--runs-db", db, "pts.xyz"))
	require.NoError(t, h.run("-R0/2/0/2", "-MAX", "--runs-db", db, "pts.xyz"))

	h.stdout.Reset()
	require.NoError(t, h.run("runs", "--runs-db", db))
	out := testutil.Lines(h.stdout.Bytes())
	require.Len(t, out, 3)
	assert.True(t, strings.HasPrefix(out[0], "RUN ID"))
	assert.Contains(t, h.stdout.String(), "zmin")
	assert.Contains(t, h.stdout.String(), "zmax")
	assert.Contains(t, h.stdout.String(), "pts.xyz.max")

	h.stdout.Reset()
	require.NoError(t, h.run("runs", "--runs-db", db, "--limit", "1"))
	assert.Len(t, testutil.Lines(h.stdout.Bytes()), 2)
}

func TestRoot_RunsRequiresDB(t *testing.T) {
	h := newHarness(t)
	err := h.run("runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--runs-db")
}

func TestRoot_Version(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("--version"))
	assert.Contains(t, h.stdout.String(), "dev (unknown, built unknown)")
}
