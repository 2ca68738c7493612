package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	start := time.Now().UTC().Truncate(24 * time.Hour)
	var recs []string
	for i := 0; i < 48; i++ {
		h := start.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04:05")
		recs = append(recs, fmt.Sprintf(`{"HourUTC":%q,"HourDK":%q,"Total":%.1f}`, h, h, 1+float64(i%3)))
	}
	prices := filepath.Join(dir, "prices.json")
	require.NoError(t, os.WriteFile(prices, []byte(`{"records":[`+strings.Join(recs, ",")+`]}`), 0o644))

	cfg := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("prices:\n  source: static\n  static_path: %s\n  location: UTC\nquerylog:\n  backend: none\n", prices)
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	return cfg
}

func TestWindowCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"window", "--config", writeConfig(t), "--duration", "1h0m", "--gln", "5790000611003"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	var resp struct {
		Price struct {
			From time.Time `json:"fromTs"`
			To   time.Time `json:"toTs"`
		} `json:"price"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, time.Hour, resp.Price.To.Sub(resp.Price.From))
	assert.Contains(t, errOut.String(), "start ")
}
