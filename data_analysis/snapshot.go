package data_analysis

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/kaireichart/flight-visualizer/playback"
)

var (
	rawColor      = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	cleanColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	velocityColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// RenderSnapshot writes a PNG of one playback frame: altitude (raw and
// cleaned) above vertical velocity, sharing the time axis.
func RenderSnapshot(w io.Writer, frame playback.Frame) error {
	if len(frame.TimeS) == 0 {
		return fmt.Errorf("frame has no samples")
	}

	pAlt := plot.New()
	pAlt.Title.Text = fmt.Sprintf("Altitude (sample %d of %d)", frame.Index+1, frame.Total)
	pAlt.Y.Label.Text = "Altitude (m)"

	rawLine, err := plotter.NewLine(seriesXYs(frame.TimeS, frame.AltRawM))
	if err != nil {
		return fmt.Errorf("failed to plot raw altitude: %w", err)
	}
	rawLine.Color = rawColor
	rawLine.Width = vg.Points(1)
	rawLine.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}

	cleanLine, err := plotter.NewLine(seriesXYs(frame.TimeS, frame.AltCleanM))
	if err != nil {
		return fmt.Errorf("failed to plot cleaned altitude: %w", err)
	}
	cleanLine.Color = cleanColor
	cleanLine.Width = vg.Points(1.5)

	pAlt.Add(plotter.NewGrid(), rawLine, cleanLine)
	pAlt.Legend.Add("raw", rawLine)
	pAlt.Legend.Add("cleaned", cleanLine)
	pAlt.Legend.Top = true

	pVel := plot.New()
	pVel.Title.Text = "Vertical velocity"
	if frame.Phase != "" {
		pVel.Title.Text += " (" + frame.Phase + ")"
	}
	pVel.X.Label.Text = "Time (s)"
	pVel.Y.Label.Text = "Velocity (m/s)"

	velLine, err := plotter.NewLine(seriesXYs(frame.TimeS, frame.VelCleanMPS))
	if err != nil {
		return fmt.Errorf("failed to plot velocity: %w", err)
	}
	velLine.Color = velocityColor
	velLine.Width = vg.Points(1.5)
	pVel.Add(plotter.NewGrid(), velLine)

	// Both panels share the time range of the whole dataset
	xMax := float64(frame.Total - 1)
	if xMax < 1 {
		xMax = 1
	}
	for _, p := range []*plot.Plot{pAlt, pVel} {
		p.X.Min = 0
		p.X.Max = xMax
	}

	img := vgimg.New(10*vg.Inch, 7*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(8),
	}
	plots := [][]*plot.Plot{{pAlt}, {pVel}}
	canvases := plot.Align(plots, tiles, dc)
	pAlt.Draw(canvases[0][0])
	pVel.Draw(canvases[1][0])

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	return nil
}

func seriesXYs(times []int, values []float64) plotter.XYs {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = float64(times[i])
		pts[i].Y = values[i]
	}
	return pts
}
