// Package pipeline runs one gridding pass: it reads an XYZ file, folds every
// record into a blockgrid.Engine and writes the occupied cells.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/blockminmax/internal/blockgrid"
	"github.com/banshee-data/blockminmax/internal/fsutil"
	"github.com/banshee-data/blockminmax/internal/monitoring"
	"github.com/banshee-data/blockminmax/internal/timeutil"
	"github.com/banshee-data/blockminmax/internal/xyzio"
)

// Config describes a single run.
type Config struct {
	Engine     blockgrid.Options
	InputPath  string
	OutputPath string

	// ProgressEvery is the number of records between progress lines.
	// Zero disables them.
	ProgressEvery int

	// FS and Clock default to the OS filesystem and the wall clock.
	FS    fsutil.FileSystem
	Clock timeutil.Clock
}

// Summary reports what a run did.
type Summary struct {
	Lines    int // lines read, including blank and comment lines
	Records  int // well-formed records
	Skipped  int // malformed lines
	Dropped  int // records discarded by the addressing policy
	Occupied int // cells written
	NX, NY   int
	Bytes    int64
	Started  time.Time
	Elapsed  time.Duration
}

// Result is a completed run. Engine is retained so callers can render
// reports from the final lattice.
type Result struct {
	Summary Summary
	Engine  *blockgrid.Engine
}

// Run validates cfg, sizes the lattice, then streams the input into the
// engine and writes the output. No file is opened until the lattice has
// been allocated. On any failure after the output was created it is
// removed.
func Run(cfg Config) (*Result, error) {
	fsys := cfg.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if cfg.InputPath == "" {
		return nil, &blockgrid.ConfigError{Field: "path", Reason: "missing input path"}
	}
	if cfg.OutputPath == "" {
		return nil, &blockgrid.ConfigError{Field: "output", Reason: "missing output path"}
	}

	started := clock.Now()
	r := cfg.Engine.Region
	monitoring.Logf("region %.12g %.12g %.12g %.12g", r.XMin, r.XMax, r.YMin, r.YMax)

	eng, err := blockgrid.NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	l := eng.Lattice()
	monitoring.Logf("%d columns by %d rows", l.NX, l.NY)
	monitoring.Logf("initialised lattice (%s, %s, %s)", cfg.Engine.Mode, cfg.Engine.Addressing, cfg.Engine.Update)

	in, err := fsys.Open(cfg.InputPath)
	if err != nil {
		return nil, &ResourceError{Op: "open", Path: cfg.InputPath, Err: err}
	}
	defer in.Close()

	out, err := fsys.Create(cfg.OutputPath)
	if err != nil {
		return nil, &ResourceError{Op: "create", Path: cfg.OutputPath, Err: err}
	}

	sum, err := stream(eng, in, out, cfg)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = &ResourceError{Op: "close", Path: cfg.OutputPath, Err: cerr}
	}
	if err != nil {
		if rerr := fsys.Remove(cfg.OutputPath); rerr != nil {
			monitoring.Logf("remove partial output %s: %v", cfg.OutputPath, rerr)
		}
		return nil, err
	}

	sum.NX, sum.NY = l.NX, l.NY
	sum.Started = started
	sum.Elapsed = clock.Since(started)
	return &Result{Summary: sum, Engine: eng}, nil
}

func stream(eng *blockgrid.Engine, in io.Reader, out io.Writer, cfg Config) (Summary, error) {
	var sum Summary
	progress := monitoring.NewProgress(cfg.ProgressEvery)

	rd := xyzio.NewReader(in)
	for rd.Next() {
		rec := rd.Record()
		eng.Add(rec.X, rec.Y, rec.Z, rec.ZToken)
		progress.Tick()
	}
	sum.Lines = rd.Lines()
	sum.Skipped = rd.Skipped()
	if err := rd.Err(); err != nil {
		return sum, &ResourceError{Op: "read", Path: cfg.InputPath, Err: fmt.Errorf("line %d: %w", rd.Lines()+1, err)}
	}
	sum.Records = eng.Accepted() + eng.Dropped()
	sum.Dropped = eng.Dropped()
	sum.Occupied = eng.Aggregator().Occupied()
	monitoring.Logf("updated lattice with z%s", cfg.Engine.Mode)

	n, err := eng.WriteTo(out)
	sum.Bytes = n
	if err != nil {
		return sum, &ResourceError{Op: "write", Path: cfg.OutputPath, Err: err}
	}
	monitoring.Logf("write %s", cfg.OutputPath)
	return sum, nil
}

// DefaultOutputPath returns the output path used when none is given:
// the input path with ".min" or ".max" appended.
func DefaultOutputPath(input string, mode blockgrid.Mode) string {
	return input + "." + mode.String()
}
