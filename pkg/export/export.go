// Package export writes price series in file formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

// WriteJSON writes the series to w in JSON format.
func WriteJSON(w io.Writer, series model.Series) error {
	enc := json.NewEncoder(w)
	return enc.Encode(series)
}

// WriteCSV writes the series to w in CSV format with a header row.
// Timestamps are RFC 3339 in UTC.
func WriteCSV(w io.Writer, series model.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"valid_from", "valid_to", "price"}); err != nil {
		return err
	}
	for _, p := range series {
		rec := []string{
			p.ValidFrom.UTC().Format(time.RFC3339),
			p.ValidTo.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
