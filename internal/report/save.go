package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/blockminmax/internal/blockgrid"
	"github.com/banshee-data/blockminmax/internal/fsutil"
	"github.com/banshee-data/blockminmax/internal/monitoring"
)

// SaveHeatmapPNG reduces eng to at most maxDim cells per side and writes a
// PNG heatmap to path.
func SaveHeatmapPNG(fsys fsutil.FileSystem, path string, eng *blockgrid.Engine, maxDim int) error {
	g, err := NewHeatmapGrid(eng, maxDim)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("z%s %s", eng.Options().Mode, eng.Options().Region)
	return save(fsys, path, func(w io.Writer) error {
		return WriteHeatmapPNG(w, g, title)
	})
}

// SaveHeatmapHTML reduces eng to at most maxDim cells per side and writes
// an HTML heatmap to path.
func SaveHeatmapHTML(fsys fsutil.FileSystem, path string, eng *blockgrid.Engine, maxDim int) error {
	g, err := NewHeatmapGrid(eng, maxDim)
	if err != nil {
		return err
	}
	o := eng.Options()
	l := eng.Lattice()
	title := fmt.Sprintf("z%s %s", o.Mode, o.Region)
	subtitle := fmt.Sprintf("inc=%g cells=%dx%d occupied=%d block=%d", o.Inc, l.NX, l.NY, eng.Aggregator().Occupied(), g.Factor())
	return save(fsys, path, func(w io.Writer) error {
		return WriteHeatmapHTML(w, g, title, subtitle)
	})
}

func save(fsys fsutil.FileSystem, path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		fsys.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	monitoring.Logf("write %s", path)
	return nil
}
