// Package chart renders the daily auto-response dashboard as a single PNG
// with four panels.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"csreport/internal/aggregate"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	panelWidth  = 900
	panelHeight = 600
)

type Titles struct {
	Counts        string
	Ratio         string
	Matched       string
	Share         string
	TotalSeries   string
	MatchedSeries string
	OtherSlice    string
}

var (
	totalColor   = drawing.Color{R: 135, G: 206, B: 235, A: 255}
	matchedColor = drawing.Color{R: 220, G: 40, B: 40, A: 255}
	ratioColor   = drawing.Color{R: 40, G: 150, B: 60, A: 255}
	countColor   = drawing.Color{R: 255, G: 165, B: 0, A: 255}
	otherColor   = drawing.Color{R: 173, G: 216, B: 230, A: 255}
)

// Render draws, left to right and top to bottom: matched vs remaining
// tickets stacked per date, the match ratio per date, matched counts per
// date, and the overall matched share.
func Render(days []aggregate.Day, t Titles) ([]byte, error) {
	if len(days) == 0 {
		return nil, errors.New("no dated rows to chart")
	}

	panels := []func([]aggregate.Day, Titles) ([]byte, error){
		countsPanel,
		ratioPanel,
		matchedPanel,
		sharePanel,
	}
	canvas := image.NewRGBA(image.Rect(0, 0, 2*panelWidth, 2*panelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, panel := range panels {
		data, err := panel(days, t)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", i+1, err)
		}
		if data == nil {
			continue
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", i+1, err)
		}
		at := image.Pt((i%2)*panelWidth, (i/2)*panelHeight)
		draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(img.Bounds().Size())}, img, img.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func countsPanel(days []aggregate.Day, t Titles) ([]byte, error) {
	bars := make([]gochart.StackedBar, 0, len(days))
	for _, d := range days {
		bars = append(bars, gochart.StackedBar{
			Name: d.Date,
			Values: []gochart.Value{
				{Label: t.MatchedSeries, Value: float64(d.Matched), Style: gochart.Style{FillColor: matchedColor, StrokeColor: matchedColor}},
				{Label: t.TotalSeries, Value: float64(d.Total - d.Matched), Style: gochart.Style{FillColor: totalColor, StrokeColor: totalColor}},
			},
		})
	}
	c := gochart.StackedBarChart{
		Title:      t.Counts,
		Width:      panelWidth,
		Height:     panelHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		BarSpacing: barSpacing(len(days)),
		Bars:       bars,
	}
	return render(c)
}

func ratioPanel(days []aggregate.Day, t Titles) ([]byte, error) {
	if len(days) == 1 {
		// a line needs two x values
		return ratioBar(days[0], t)
	}
	xs := make([]float64, len(days))
	ys := make([]float64, len(days))
	ticks := make([]gochart.Tick, len(days))
	for i, d := range days {
		xs[i] = float64(i)
		ys[i] = d.Ratio
		ticks[i] = gochart.Tick{Value: float64(i), Label: d.Date}
	}
	c := gochart.Chart{
		Title:      t.Ratio,
		Width:      panelWidth,
		Height:     panelHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(days)) - 0.5},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    t.Ratio,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: ratioColor,
					StrokeWidth: 2,
					DotColor:    ratioColor,
					DotWidth:    4,
				},
			},
		},
	}
	return render(&c)
}

func ratioBar(d aggregate.Day, t Titles) ([]byte, error) {
	c := gochart.BarChart{
		Title:      t.Ratio,
		Width:      panelWidth,
		Height:     panelHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:   barWidth(1),
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: []gochart.Value{{
			Label: d.Date,
			Value: d.Ratio,
			Style: gochart.Style{FillColor: ratioColor, StrokeColor: ratioColor},
		}},
	}
	return render(c)
}

func matchedPanel(days []aggregate.Day, t Titles) ([]byte, error) {
	bars := make([]gochart.Value, len(days))
	peak := 0
	for i, d := range days {
		bars[i] = gochart.Value{
			Label: d.Date,
			Value: float64(d.Matched),
			Style: gochart.Style{FillColor: countColor, StrokeColor: countColor},
		}
		if d.Matched > peak {
			peak = d.Matched
		}
	}
	c := gochart.BarChart{
		Title:      t.Matched,
		Width:      panelWidth,
		Height:     panelHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:   barWidth(len(days)),
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: axisMax(peak)},
		},
		Bars: bars,
	}
	return render(c)
}

// sharePanel returns nil when there is nothing to divide.
func sharePanel(days []aggregate.Day, t Titles) ([]byte, error) {
	total, matched := 0, 0
	for _, d := range days {
		total += d.Total
		matched += d.Matched
	}
	if total == 0 {
		return nil, nil
	}
	var values []gochart.Value
	if matched > 0 {
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %.1f%%", t.MatchedSeries, aggregate.Ratio(matched, total)),
			Value: float64(matched),
			Style: gochart.Style{FillColor: matchedColor},
		})
	}
	if rest := total - matched; rest > 0 {
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s %.1f%%", t.OtherSlice, aggregate.Ratio(rest, total)),
			Value: float64(rest),
			Style: gochart.Style{FillColor: otherColor},
		})
	}
	c := gochart.PieChart{
		Title:  t.Share,
		Width:  panelWidth,
		Height: panelHeight,
		Values: values,
	}
	return render(c)
}

type renderer interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

func render(c renderer) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func axisMax(peak int) float64 {
	if peak <= 0 {
		return 1
	}
	return float64(peak) * 1.1
}

func barWidth(n int) int {
	w := (panelWidth - 120) / (2 * n)
	switch {
	case w > 60:
		return 60
	case w < 4:
		return 4
	}
	return w
}

func barSpacing(n int) int {
	s := (panelWidth - 120) / (3 * n)
	switch {
	case s > 40:
		return 40
	case s < 2:
		return 2
	}
	return s
}
