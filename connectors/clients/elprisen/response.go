package elprisen

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

// Response is the body returned by the elpris endpoint. Grid company
// metadata is carried next to the records and ignored.
type Response struct {
	GridCompany *GridCompany `json:"gridCompany,omitempty"`
	Records     []Record     `json:"records"`
}

// GridCompany describes the grid operator a GLN number belongs to.
type GridCompany struct {
	ChargeTypeCode    string `json:"chargeTypeCode"`
	GLNNumber         string `json:"gln_Number"`
	GridCompanyNumber string `json:"gridCompanyNumber"`
	Name              string `json:"name"`
	PriceArea         string `json:"priceArea"`
}

// Record is the price of one hour. Total is the consumer price including
// tariffs and taxes.
type Record struct {
	HourUTC    string  `json:"HourUTC"`
	HourDK     string  `json:"HourDK"`
	HourEndUTC string  `json:"HourEndUTC,omitempty"`
	SpotPrice  float64 `json:"SpotPrice"`
	Total      float64 `json:"Total"`
}

var hourLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseHour(s string) (time.Time, error) {
	for _, l := range hourLayouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable hour %q", s)
}

// Series converts the records into an ascending series without duplicate
// start times.
func (r *Response) Series() (model.Series, error) {
	out := make(model.Series, 0, len(r.Records))
	for _, rec := range r.Records {
		from, err := parseHour(rec.HourUTC)
		if err != nil {
			return nil, err
		}
		p := model.NewHourlyPoint(from, rec.Total)
		if rec.HourEndUTC != "" {
			to, err := parseHour(rec.HourEndUTC)
			if err != nil {
				return nil, err
			}
			p.ValidTo = to
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ValidFrom.Before(out[j].ValidFrom) })
	dedup := out[:0]
	for i, p := range out {
		if i > 0 && p.ValidFrom.Equal(dedup[len(dedup)-1].ValidFrom) {
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup, nil
}
