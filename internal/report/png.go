package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// heatColors is the number of palette steps used for PNG heatmaps.
const heatColors = 64

// WriteHeatmapPNG renders g as a PNG heatmap. Empty blocks are transparent.
func WriteHeatmapPNG(w io.Writer, g *HeatmapGrid, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(g, palette.Heat(heatColors, 1))
	hm.Min = g.Min()
	hm.Max = g.Max()
	hm.NaN = color.Transparent
	p.Add(hm)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
