package data_analysis

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChartPage writes an HTML page with the altitude and velocity panels
// of a dataset, raw and cleaned altitude overlaid.
func RenderChartPage(w io.Writer, ds *Dataset) error {
	subtitle := fmt.Sprintf("%s, %d samples, median=%d mean=%d filter=%v",
		ds.Source, ds.Len(), ds.Params.MedianWindow, ds.Params.MeanWindow, ds.Params.PolynomialFilter)

	alt := charts.NewLine()
	alt.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Flight Visualizer", Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Altitude", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Altitude (m)", Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	alt.SetXAxis(ds.TimeS).
		AddSeries("raw", lineData(ds.AltRawM),
			charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0.4)}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries("cleaned", lineData(ds.AltCleanM),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	vel := charts.NewLine()
	vel.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{Title: "Vertical velocity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Velocity (m/s)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	vel.SetXAxis(ds.TimeS).
		AddSeries("velocity", lineData(ds.VelCleanMPS),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	page := components.NewPage()
	page.SetPageTitle("Flight Visualizer")
	page.AddCharts(alt, vel)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
