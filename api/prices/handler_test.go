package prices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/nexthour/api/respond"
	"github.com/kilianp07/nexthour/core/events"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/core/pricing"
	"github.com/kilianp07/nexthour/infra/querylog"
	"github.com/kilianp07/nexthour/internal/eventbus"
	"github.com/kilianp07/nexthour/pkg/clock"
)

const gln = "5790000611003"

var (
	h0  = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	now = time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
)

type fakeSource struct {
	series model.Series
}

func (f *fakeSource) Future(context.Context, string) (model.Series, error) {
	return f.series, nil
}

type memStore struct {
	mu   sync.Mutex
	recs []querylog.Record
}

func (m *memStore) Append(_ context.Context, r querylog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(context.Context, querylog.Query) ([]querylog.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]querylog.Record(nil), m.recs...), nil
}

func (m *memStore) Close() error { return nil }

func sample() model.Series {
	return model.Series{
		model.NewHourlyPoint(h0, 0.5),
		model.NewHourlyPoint(h0.Add(time.Hour), 0.3),
		model.NewHourlyPoint(h0.Add(2*time.Hour), 0.7),
		model.NewHourlyPoint(h0.Add(3*time.Hour), 0.4),
	}
}

type fixture struct {
	router http.Handler
	store  *memStore
	bus    *eventbus.Bus
}

func newFixture(t *testing.T, defaultGLN string) fixture {
	t.Helper()
	src := &fakeSource{series: sample()}
	engine := pricing.NewEngine(src, clock.NewMock(now), nil)
	store := &memStore{}
	bus := eventbus.New()
	t.Cleanup(bus.Close)
	h := NewHandler(engine, src, Config{DefaultPartition: defaultGLN}, WithQueryLog(store), WithEventBus(bus))
	r := chi.NewRouter()
	h.Mount(r)
	return fixture{router: r, store: store, bus: bus}
}

func (f fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decodeWindow(t *testing.T, rr *httptest.ResponseRecorder) WindowResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out WindowResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Detail
}

func windowPath(duration, glnNumber, maxStart string) string {
	v := url.Values{}
	v.Set("numHoursToForecast", duration)
	if glnNumber != "" {
		v.Set("glnNumber", glnNumber)
	}
	if maxStart != "" {
		v.Set("max_start_time", maxStart)
	}
	return "/api/next-optimal-hour?" + v.Encode()
}

func TestNextOptimalHour_FullHours(t *testing.T) {
	f := newFixture(t, "")
	out := decodeWindow(t, f.get(t, windowPath("2h0m", gln, "")))

	assert.Equal(t, h0, out.Price.From)
	assert.Equal(t, 7200.0, out.Price.Duration().Seconds())
	assert.InDelta(t, 0.4, out.Price.Price, 1e-9)
	// starting now costs 0.5 + 0.3 for 120 min against 0.4/h
	assert.InDelta(t, 1.0, out.Price.SuboptimalPriceMultiplier, 1e-9)
	assert.Contains(t, out.Credits, "elprisen.somjson.dk")
}

func TestNextOptimalHour_TimestampsAreUTC(t *testing.T) {
	f := newFixture(t, "")
	rr := f.get(t, windowPath("1h0m", gln, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	var raw struct {
		Price map[string]any `json:"price"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, "2024-01-15T13:00:00Z", raw.Price["fromTs"])
	assert.Equal(t, "2024-01-15T14:00:00Z", raw.Price["toTs"])
}

func TestNextOptimalHour_Durations(t *testing.T) {
	f := newFixture(t, "")
	cases := map[string]float64{
		"1h30m": 5400,
		"0h30m": 1800,
		"3h0m":  10800,
	}
	for in, seconds := range cases {
		out := decodeWindow(t, f.get(t, windowPath(in, gln, "")))
		assert.Equal(t, seconds, out.Price.Duration().Seconds(), in)
		assert.Greater(t, out.Price.Price, 0.0, in)
		assert.Less(t, out.Price.Price, 2.0, in)
	}
}

func TestNextOptimalHour_MissingGLN(t *testing.T) {
	f := newFixture(t, "")
	rr := f.get(t, windowPath("1h0m", "", ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decodeDetail(t, rr), "INVALID GLNNUMBER")
}

func TestNextOptimalHour_DefaultGLN(t *testing.T) {
	f := newFixture(t, gln)
	out := decodeWindow(t, f.get(t, windowPath("1h0m", "", "")))
	assert.Equal(t, 3600.0, out.Price.Duration().Seconds())
	assert.InDelta(t, 0.3, out.Price.Price, 1e-9)
}

func TestNextOptimalHour_MalformedDuration(t *testing.T) {
	f := newFixture(t, "")
	for _, in := range []string{"", "2h", "1h60m", "0h0m"} {
		rr := f.get(t, windowPath(in, gln, ""))
		assert.Equal(t, http.StatusBadRequest, rr.Code, in)
	}
}

func TestNextOptimalHour_MaxStart(t *testing.T) {
	f := newFixture(t, "")

	out := decodeWindow(t, f.get(t, windowPath("1h0m", gln, "2024-01-15T13:00:00Z")))
	assert.Equal(t, time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC), out.Price.From)

	deadline := time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC)
	out = decodeWindow(t, f.get(t, windowPath("1h30m", gln, deadline.Format(time.RFC3339))))
	assert.False(t, out.Price.From.After(deadline))
}

func TestNextOptimalHour_MaxStartErrors(t *testing.T) {
	f := newFixture(t, "")
	cases := []struct {
		duration string
		maxStart string
		detail   string
	}{
		{"2h0m", "2024-01-15T11:30:00Z", "Not enough available prices"},
		{"1h0m", "2024-01-15T10:00:00Z", "must be in the future"},
		{"1h0m", "invalid-date", "Invalid max_start_time format"},
	}
	for _, c := range cases {
		rr := f.get(t, windowPath(c.duration, gln, c.maxStart))
		assert.Equal(t, http.StatusBadRequest, rr.Code, c.maxStart)
		assert.Contains(t, decodeDetail(t, rr), c.detail, c.maxStart)
	}
}

func TestNextOptimalHour_RecordsAndPublishes(t *testing.T) {
	f := newFixture(t, "")
	sub := f.bus.Subscribe()

	decodeWindow(t, f.get(t, windowPath("2h0m", gln, "2024-01-15T14:00:00Z")))
	rr := f.get(t, windowPath("2h", gln, ""))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	recs, err := f.store.Query(context.Background(), querylog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, http.StatusOK, recs[0].Status)
	assert.Equal(t, gln, recs[0].Partition)
	assert.Equal(t, "2h0m", recs[0].Duration)
	assert.Equal(t, h0, recs[0].From)
	require.NotNil(t, recs[0].MaxStart)
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, http.StatusBadRequest, recs[1].Status)
	assert.NotEmpty(t, recs[1].Error)

	select {
	case ev := <-sub:
		we, ok := ev.(events.WindowEvent)
		require.True(t, ok)
		assert.Equal(t, gln, we.Partition)
		assert.Equal(t, model.TaskDuration{Hours: 2}, we.Duration)
		assert.Equal(t, h0, we.Window.From)
	case <-time.After(time.Second):
		t.Fatal("no window event")
	}
}

func TestListPrices(t *testing.T) {
	f := newFixture(t, gln)
	rr := f.get(t, "/api/prices")
	require.Equal(t, http.StatusOK, rr.Code)
	var out SeriesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, gln, out.Partition)
	assert.Equal(t, []float64{0.5, 0.3, 0.7, 0.4}, out.Prices.Prices())
}

func TestListPrices_MissingGLN(t *testing.T) {
	f := newFixture(t, "")
	rr := f.get(t, "/api/prices")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestChart(t *testing.T) {
	f := newFixture(t, "")
	rr := f.get(t, "/api/prices/chart?glnNumber="+gln)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Prices for "+gln)
}

func TestListPrices_CSV(t *testing.T) {
	f := newFixture(t, gln)
	rr := f.get(t, "/api/prices?format=csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "valid_from,valid_to,price", lines[0])
	assert.Equal(t, "2024-01-15T12:00:00Z,2024-01-15T13:00:00Z,0.5", lines[1])
}
