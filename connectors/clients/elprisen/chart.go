package elprisen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/nexthour/core/model"
)

// PriceChartHTML renders series as a standalone HTML line chart. Hours are
// labelled in loc, or UTC when loc is nil.
func PriceChartHTML(series model.Series, title string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: Credits}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price (DKK/kWh)"}),
	)

	xAxis := make([]string, 0, len(series))
	yAxis := make([]opts.LineData, 0, len(series))
	for _, p := range series {
		xAxis = append(xAxis, p.ValidFrom.In(loc).Format("2006-01-02 15:04"))
		yAxis = append(yAxis, opts.LineData{Value: p.Price})
	}
	line.SetXAxis(xAxis).AddSeries("Total price", yAxis)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return buf.String(), nil
}
