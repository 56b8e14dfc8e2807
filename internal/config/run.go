// Package config loads run configuration for blockminmax from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/blockminmax/internal/blockgrid"
	"github.com/banshee-data/blockminmax/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical defaults file. The Get*
// fallbacks below must agree with it.
const DefaultConfigPath = "config/blockminmax.defaults.json"

// maxConfigSize caps the size of a config file.
const maxConfigSize = 1 * 1024 * 1024

// RunConfig is the JSON schema for a run. Every field is optional; unset
// fields fall back to the defaults returned by the Get* methods, and
// command-line flags override whatever the file sets.
type RunConfig struct {
	// Lattice
	Region    *string  `json:"region,omitempty"` // "xmin/xmax/ymin/ymax"
	Increment *float64 `json:"increment,omitempty"`

	// Policies
	Mode       *string `json:"mode,omitempty"`       // "min" | "max"
	Addressing *string `json:"addressing,omitempty"` // "nearest" | "tielow" | "gridline"
	Update     *string `json:"update,omitempty"`     // "strict" | "legacy"
	Format     *string `json:"format,omitempty"`     // "compact" | "legacy"

	// Diagnostics and reports
	ProgressEvery *int `json:"progress_every,omitempty"`
	HeatmapMaxDim *int `json:"heatmap_max_dim,omitempty"`
	HTMLMaxDim    *int `json:"html_max_dim,omitempty"`

	// Optional outputs; empty means not written.
	Heatmap *string `json:"heatmap,omitempty"` // PNG heatmap path
	HTML    *string `json:"html,omitempty"`    // HTML heatmap path
	RunsDB  *string `json:"runs_db,omitempty"` // SQLite run log path
}

// Pointer helpers for building configs in code.
func PtrFloat64(v float64) *float64 { return &v }
func PtrString(v string) *string    { return &v }
func PtrInt(v int) *int             { return &v }

// EmptyRunConfig returns a RunConfig with all fields unset.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadRunConfig loads and validates a RunConfig from a JSON file on disk.
func LoadRunConfig(path string) (*RunConfig, error) {
	return Load(fsutil.OSFileSystem{}, path)
}

// Load loads and validates a RunConfig through fsys. The file must have a
// .json extension and be at most 1 MiB.
func Load(fsys fsutil.FileSystem, path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fileError("must have .json extension, got %q", nil, ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fileError("failed to stat", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fileError("too large: %d bytes (max %d)", nil, info.Size(), maxConfigSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fileError("failed to read", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fileError("failed to parse JSON", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fileError reports a config file that cannot be used, keeping the cause.
func fileError(format string, err error, args ...any) *blockgrid.ConfigError {
	return &blockgrid.ConfigError{Field: "config file", Reason: fmt.Sprintf(format, args...), Err: err}
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *RunConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadRunConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks every field that is set.
func (c *RunConfig) Validate() error {
	if c.Region != nil {
		if _, err := blockgrid.ParseRegion(*c.Region); err != nil {
			return err
		}
	}
	if c.Increment != nil && !(*c.Increment > 0) {
		return &blockgrid.ConfigError{Field: "increment", Reason: fmt.Sprintf("must be > 0, got %g", *c.Increment)}
	}
	if _, err := blockgrid.ParseMode(c.GetMode()); err != nil {
		return err
	}
	if _, err := blockgrid.ParseAddressing(c.GetAddressing()); err != nil {
		return err
	}
	if _, err := blockgrid.ParseUpdateRule(c.GetUpdate()); err != nil {
		return err
	}
	if _, err := blockgrid.ParseFormat(c.GetFormat()); err != nil {
		return err
	}
	if c.ProgressEvery != nil && *c.ProgressEvery < 0 {
		return &blockgrid.ConfigError{Field: "progress_every", Reason: fmt.Sprintf("must be non-negative, got %d", *c.ProgressEvery)}
	}
	if c.HeatmapMaxDim != nil && *c.HeatmapMaxDim < 1 {
		return &blockgrid.ConfigError{Field: "heatmap_max_dim", Reason: fmt.Sprintf("must be at least 1, got %d", *c.HeatmapMaxDim)}
	}
	if c.HTMLMaxDim != nil && *c.HTMLMaxDim < 1 {
		return &blockgrid.ConfigError{Field: "html_max_dim", Reason: fmt.Sprintf("must be at least 1, got %d", *c.HTMLMaxDim)}
	}
	return nil
}

// EngineOptions resolves the config into engine options. The region has no
// default and must be set.
func (c *RunConfig) EngineOptions() (blockgrid.Options, error) {
	var opts blockgrid.Options
	if c.Region == nil || *c.Region == "" {
		return opts, &blockgrid.ConfigError{Field: "region", Reason: "missing; pass -Rxmin/xmax/ymin/ymax"}
	}
	region, err := blockgrid.ParseRegion(*c.Region)
	if err != nil {
		return opts, err
	}
	opts.Region = region
	opts.Inc = c.GetIncrement()

	if opts.Mode, err = blockgrid.ParseMode(c.GetMode()); err != nil {
		return opts, err
	}
	if opts.Addressing, err = blockgrid.ParseAddressing(c.GetAddressing()); err != nil {
		return opts, err
	}
	if opts.Update, err = blockgrid.ParseUpdateRule(c.GetUpdate()); err != nil {
		return opts, err
	}
	if opts.Format, err = blockgrid.ParseFormat(c.GetFormat()); err != nil {
		return opts, err
	}
	return opts, nil
}

// GetIncrement returns the grid increment or the default.
func (c *RunConfig) GetIncrement() float64 {
	if c.Increment == nil {
		return 1.0
	}
	return *c.Increment
}

// GetMode returns the aggregation mode name or the default.
func (c *RunConfig) GetMode() string {
	if c.Mode == nil {
		return "min"
	}
	return *c.Mode
}

// GetAddressing returns the addressing policy name or the default.
func (c *RunConfig) GetAddressing() string {
	if c.Addressing == nil {
		return "nearest"
	}
	return *c.Addressing
}

// GetUpdate returns the update rule name or the default.
func (c *RunConfig) GetUpdate() string {
	if c.Update == nil {
		return "strict"
	}
	return *c.Update
}

// GetFormat returns the output format name or the default.
func (c *RunConfig) GetFormat() string {
	if c.Format == nil {
		return "compact"
	}
	return *c.Format
}

// GetProgressEvery returns the progress interval or the default (1,000,000).
// Zero disables progress lines.
func (c *RunConfig) GetProgressEvery() int {
	if c.ProgressEvery == nil {
		return 1000000
	}
	return *c.ProgressEvery
}

// GetHeatmapMaxDim returns the PNG heatmap's largest side in cells.
func (c *RunConfig) GetHeatmapMaxDim() int {
	if c.HeatmapMaxDim == nil {
		return 1000
	}
	return *c.HeatmapMaxDim
}

// GetHTMLMaxDim returns the HTML heatmap's largest side in cells.
func (c *RunConfig) GetHTMLMaxDim() int {
	if c.HTMLMaxDim == nil {
		return 200
	}
	return *c.HTMLMaxDim
}

// GetHeatmap returns the PNG heatmap path, or "" when none is written.
func (c *RunConfig) GetHeatmap() string {
	if c.Heatmap == nil {
		return ""
	}
	return *c.Heatmap
}

// GetHTML returns the HTML heatmap path, or "" when none is written.
func (c *RunConfig) GetHTML() string {
	if c.HTML == nil {
		return ""
	}
	return *c.HTML
}

// GetRunsDB returns the run log database path, or "" when runs are not
// recorded.
func (c *RunConfig) GetRunsDB() string {
	if c.RunsDB == nil {
		return ""
	}
	return *c.RunsDB
}
