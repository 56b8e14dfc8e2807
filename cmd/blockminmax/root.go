package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/banshee-data/blockminmax/internal/blockgrid"
	"github.com/banshee-data/blockminmax/internal/config"
	"github.com/banshee-data/blockminmax/internal/fsutil"
	"github.com/banshee-data/blockminmax/internal/monitoring"
	"github.com/banshee-data/blockminmax/internal/pipeline"
	"github.com/banshee-data/blockminmax/internal/report"
	"github.com/banshee-data/blockminmax/internal/runlog"
	"github.com/banshee-data/blockminmax/internal/timeutil"
	"github.com/banshee-data/blockminmax/internal/version"
)

// app carries the dependencies commands run against.
type app struct {
	fs     fsutil.FileSystem
	clock  timeutil.Clock
	stdout io.Writer
}

func newApp(stdout io.Writer) *app {
	return &app{fs: fsutil.OSFileSystem{}, clock: timeutil.RealClock{}, stdout: stdout}
}

// flags holds the root command's flag values.
type flags struct {
	region        string
	inc           float64
	path          string
	output        string
	max           bool
	tclround      bool
	addressing    string
	update        string
	format        string
	configPath    string
	progressEvery int
	heatmap       string
	html          string
	runsDB        string
}

func newRootCmd(a *app) *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:   "blockminmax -Rxmin/xmax/ymin/ymax [-Iinc] [-MAX] [-o out] -PATH input.xyz",
		Short: "Grid XYZ points, keeping the minimum or maximum z per cell",
		Long: `blockminmax reads whitespace-separated "x y z" points and assigns each one
to a node of the lattice spanning the region at the given increment. Each
occupied node keeps the smallest z it received (or the largest with -MAX)
and is written as one "x y z" line.

The output defaults to <input>.min or <input>.max.`,
		Version:      version.String(),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGrid(cmd.Flags(), &f, args)
		},
	}

	fl := root.Flags()
	fl.StringVarP(&f.region, "region", "R", "", "Region xmin/xmax/ymin/ymax")
	fl.Float64VarP(&f.inc, "inc", "I", 1.0, "Lattice increment")
	fl.StringVar(&f.path, "path", "", "Input XYZ file (also -PATH, or positional)")
	fl.StringVarP(&f.output, "output", "o", "", "Output file (default <input>.min or <input>.max)")
	fl.BoolVar(&f.max, "max", false, "Keep the maximum z per cell (also -MAX)")
	fl.BoolVar(&f.tclround, "tclround", false, "Round halfway points toward the lower node (same as --addressing=tielow)")
	fl.StringVar(&f.addressing, "addressing", "nearest", "Point addressing: nearest, tielow, gridline")
	fl.StringVar(&f.update, "update", "strict", "Update rule: strict, legacy")
	fl.StringVar(&f.format, "format", "compact", "Output format: compact, legacy")
	fl.StringVar(&f.configPath, "config", "", "JSON run configuration; flags override its values")
	fl.IntVar(&f.progressEvery, "progress-every", 1000000, "Records between progress lines (0 disables)")
	fl.StringVar(&f.heatmap, "heatmap", "", "Also write a PNG heatmap to this path")
	fl.StringVar(&f.html, "html", "", "Also write an HTML heatmap to this path")
	root.PersistentFlags().StringVar(&f.runsDB, "runs-db", "", "Record run metadata in this SQLite database")

	root.AddCommand(newRunsCmd(a, &f.runsDB))
	return root
}

// resolveConfig layers explicitly set flags over the config file, if any.
func resolveConfig(fs *pflag.FlagSet, f *flags) (*config.RunConfig, error) {
	cfg := config.EmptyRunConfig()
	if f.configPath != "" {
		loaded, err := config.LoadRunConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fs.Changed("region") {
		cfg.Region = config.PtrString(f.region)
	}
	if fs.Changed("inc") {
		cfg.Increment = config.PtrFloat64(f.inc)
	}
	if f.max {
		cfg.Mode = config.PtrString(blockgrid.ModeMaximum.String())
	}
	if fs.Changed("addressing") {
		cfg.Addressing = config.PtrString(f.addressing)
	}
	if f.tclround {
		if fs.Changed("addressing") {
			a, err := blockgrid.ParseAddressing(f.addressing)
			if err != nil {
				return nil, err
			}
			if a != blockgrid.AddressTieLow {
				return nil, &blockgrid.ConfigError{Field: "addressing", Reason: fmt.Sprintf("--tclround conflicts with --addressing=%s", f.addressing)}
			}
		}
		cfg.Addressing = config.PtrString(blockgrid.AddressTieLow.String())
	}
	if fs.Changed("update") {
		cfg.Update = config.PtrString(f.update)
	}
	if fs.Changed("format") {
		cfg.Format = config.PtrString(f.format)
	}
	if fs.Changed("progress-every") {
		cfg.ProgressEvery = config.PtrInt(f.progressEvery)
	}
	if fs.Changed("heatmap") {
		cfg.Heatmap = config.PtrString(f.heatmap)
	}
	if fs.Changed("html") {
		cfg.HTML = config.PtrString(f.html)
	}
	if fs.Changed("runs-db") {
		cfg.RunsDB = config.PtrString(f.runsDB)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) runGrid(fs *pflag.FlagSet, f *flags, args []string) error {
	cfg, err := resolveConfig(fs, f)
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	input := f.path
	if len(args) == 1 {
		if input != "" && input != args[0] {
			return &blockgrid.ConfigError{Field: "path", Reason: fmt.Sprintf("unexpected argument %q", args[0])}
		}
		input = args[0]
	}
	if input == "" {
		return &blockgrid.ConfigError{Field: "path", Reason: "missing input path (-PATH)"}
	}
	output := f.output
	if output == "" {
		output = pipeline.DefaultOutputPath(input, opts.Mode)
	}

	pcfg := pipeline.Config{
		Engine:        opts,
		InputPath:     input,
		OutputPath:    output,
		ProgressEvery: cfg.GetProgressEvery(),
		FS:            a.fs,
		Clock:         a.clock,
	}
	res, err := pipeline.Run(pcfg)
	if err != nil {
		return err
	}
	logSummary(res.Summary)

	if path := cfg.GetHeatmap(); path != "" {
		if err := report.SaveHeatmapPNG(a.fs, path, res.Engine, cfg.GetHeatmapMaxDim()); err != nil {
			if !errors.Is(err, report.ErrNoData) {
				return fmt.Errorf("heatmap: %w", err)
			}
			monitoring.Logf("heatmap skipped: no occupied cells")
		}
	}
	if path := cfg.GetHTML(); path != "" {
		if err := report.SaveHeatmapHTML(a.fs, path, res.Engine, cfg.GetHTMLMaxDim()); err != nil {
			if !errors.Is(err, report.ErrNoData) {
				return fmt.Errorf("html heatmap: %w", err)
			}
			monitoring.Logf("html heatmap skipped: no occupied cells")
		}
	}

	if db := cfg.GetRunsDB(); db != "" {
		store, err := runlog.Open(db)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Record(runlog.NewRun(pcfg, res.Summary))
		if err != nil {
			return err
		}
		monitoring.Logf("recorded run %s in %s", id, db)
	}
	return nil
}

func logSummary(s pipeline.Summary) {
	monitoring.Logf("%s lines, %s records, %s skipped, %s dropped, %s cells in %s",
		humanize.Comma(int64(s.Lines)),
		humanize.Comma(int64(s.Records)),
		humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.Dropped)),
		humanize.Comma(int64(s.Occupied)),
		s.Elapsed.Round(time.Millisecond),
	)
}
