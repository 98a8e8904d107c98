package services

import (
	"bytes"
	"fmt"
	"image/color"

	"demand-forecast-dashboard/pkg/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	historyColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	boundColor    = color.RGBA{R: 255, G: 127, B: 14, A: 120}
)

// ChartService 履歴と予測を1本の時間軸に重ねたグラフを描画する
type ChartService struct {
	width  vg.Length
	height vg.Length
}

// NewChartService は新しいChartServiceを生成します。
func NewChartService() *ChartService {
	return &ChartService{
		width:  10 * vg.Inch,
		height: 4 * vg.Inch,
	}
}

// RenderSVG ページ埋め込み用のSVGを返す
func (s *ChartService) RenderSVG(history models.MonthlySeries, forecast []models.ForecastPoint) ([]byte, error) {
	return s.render(history, forecast, "svg")
}

// RenderPNG API向けのPNG画像を返す
func (s *ChartService) RenderPNG(history models.MonthlySeries, forecast []models.ForecastPoint) ([]byte, error) {
	return s.render(history, forecast, "png")
}

func (s *ChartService) render(history models.MonthlySeries, forecast []models.ForecastPoint, format string) ([]byte, error) {
	p, err := buildDemandPlot(history, forecast)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(s.width, s.height, format)
	if err != nil {
		return nil, fmt.Errorf("グラフの描画に失敗しました: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("グラフの書き出しに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

func buildDemandPlot(history models.MonthlySeries, forecast []models.ForecastPoint) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Grafik Perkiraan Permintaan"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Y.Label.Text = "Permintaan"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if len(history) > 0 {
		pts := make(plotter.XYs, len(history))
		for i, h := range history {
			pts[i].X = float64(h.Date.Unix())
			pts[i].Y = h.Value
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("履歴系列の作成に失敗しました: %w", err)
		}
		line.Color = historyColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Data Historis", line)
	}

	if len(forecast) > 0 {
		mean := make(plotter.XYs, len(forecast))
		lower := make(plotter.XYs, len(forecast))
		upper := make(plotter.XYs, len(forecast))
		for i, f := range forecast {
			x := float64(f.Date.Unix())
			mean[i] = plotter.XY{X: x, Y: f.Mean}
			lower[i] = plotter.XY{X: x, Y: f.Lower}
			upper[i] = plotter.XY{X: x, Y: f.Upper}
		}

		meanLine, err := plotter.NewLine(mean)
		if err != nil {
			return nil, fmt.Errorf("予測系列の作成に失敗しました: %w", err)
		}
		meanLine.Color = forecastColor
		meanLine.Width = vg.Points(1.5)
		p.Add(meanLine)
		p.Legend.Add("Perkiraan Permintaan", meanLine)

		for _, bound := range []plotter.XYs{lower, upper} {
			l, err := plotter.NewLine(bound)
			if err != nil {
				return nil, fmt.Errorf("信頼区間の作成に失敗しました: %w", err)
			}
			l.Color = boundColor
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(l)
		}
	}

	return p, nil
}
