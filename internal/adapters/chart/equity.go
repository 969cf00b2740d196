package chart

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// Equity genera la curva de capital de una ejecución como HTML autocontenido.
type Equity struct {
	Width  string
	Height string
}

// NewEquity devuelve un generador con el tamaño por defecto.
func NewEquity() *Equity {
	return &Equity{Width: "1200px", Height: "600px"}
}

// Render escribe el gráfico en w. La curva arranca en el capital inicial
// y añade un punto por trade en orden de ejecución.
func (e *Equity) Render(w io.Writer, dataset string, s domain.Summary) error {
	xs := make([]string, 0, len(s.Trades)+1)
	ys := make([]opts.LineData, 0, len(s.Trades)+1)

	xs = append(xs, "start")
	ys = append(ys, opts.LineData{Value: round2(s.InitialCapital)})

	capital := s.InitialCapital
	for i, t := range s.Trades {
		capital += t.PnL
		xs = append(xs, fmt.Sprintf("%d %s", i+1, t.Symbol))
		ys = append(ys, opts.LineData{Value: round2(capital)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           e.width(),
			Height:          e.height(),
			Theme:           types.ThemeWesteros,
			BackgroundColor: "#FFFFFF",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Equity curve: %s", dataset),
			Subtitle: fmt.Sprintf("capital $%.2f → $%.2f (%+.2f%%), %d trades",
				s.InitialCapital, s.FinalCapital, s.TotalReturnPct*100, s.TotalTrades()),
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: "#333", FontSize: 18},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	line.SetXAxis(xs)
	line.AddSeries("capital", ys,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#5470C6", Width: 2}))
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("chart.Render: %w", err)
	}
	return nil
}

// WriteHTML renderiza el gráfico a un fichero.
func (e *Equity) WriteHTML(path, dataset string, s domain.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart.WriteHTML: create %s: %w", path, err)
	}
	defer f.Close()

	if err := e.Render(f, dataset, s); err != nil {
		return fmt.Errorf("chart.WriteHTML: %w", err)
	}
	return nil
}

// --- helpers ---

func (e *Equity) width() string {
	if e.Width == "" {
		return "1200px"
	}
	return e.Width
}

func (e *Equity) height() string {
	if e.Height == "" {
		return "600px"
	}
	return e.Height
}

// round2 recorta el valor a dos decimales para el tooltip.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
