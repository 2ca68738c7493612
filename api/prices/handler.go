// Package prices serves the optimal window and price listing endpoints.
package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kilianp07/nexthour/api/respond"
	"github.com/kilianp07/nexthour/connectors/clients/elprisen"
	"github.com/kilianp07/nexthour/core/events"
	"github.com/kilianp07/nexthour/core/logger"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/core/pricing"
	"github.com/kilianp07/nexthour/infra/querylog"
	"github.com/kilianp07/nexthour/internal/eventbus"
	"github.com/kilianp07/nexthour/pkg/export"
)

// Engine answers optimal window requests.
type Engine interface {
	NextOptimalWindow(ctx context.Context, req pricing.Request) (model.OptimalWindow, error)
	ParseDeadline(raw string) (time.Time, error)
	Now() time.Time
}

// Config holds request defaults.
type Config struct {
	// DefaultPartition is used when a request has no glnNumber.
	DefaultPartition string
	// Location is used to label chart hours.
	Location *time.Location
	// Credits is attached to every window answer.
	Credits string
}

// WindowResponse is the body of a successful optimal window request.
type WindowResponse struct {
	Price   model.OptimalWindow `json:"price"`
	Credits string              `json:"credits"`
}

// SeriesResponse lists the upcoming prices of a partition.
type SeriesResponse struct {
	Partition string       `json:"glnNumber"`
	Prices    model.Series `json:"prices"`
	Credits   string       `json:"credits"`
}

// Handler serves /api/next-optimal-hour and /api/prices.
type Handler struct {
	engine Engine
	prices pricing.FutureSource
	cfg    Config
	store  querylog.Store
	bus    eventbus.EventBus
	log    logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithQueryLog records every answered request in store.
func WithQueryLog(store querylog.Store) Option { return func(h *Handler) { h.store = store } }

// WithEventBus publishes a WindowEvent per answered request.
func WithEventBus(bus eventbus.EventBus) Option { return func(h *Handler) { h.bus = bus } }

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option { return func(h *Handler) { h.log = l } }

// NewHandler creates a Handler reading windows from engine and raw prices
// from prices.
func NewHandler(engine Engine, prices pricing.FutureSource, cfg Config, opts ...Option) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Credits == "" {
		cfg.Credits = elprisen.Credits
	}
	h := &Handler{
		engine: engine,
		prices: prices,
		cfg:    cfg,
		store:  querylog.NopStore{},
		log:    logger.Nop{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Mount registers the price routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/api/next-optimal-hour", h.NextOptimalHour)
	r.Get("/api/prices", h.ListPrices)
	r.Get("/api/prices/chart", h.Chart)
}

// NextOptimalHour handles GET /api/next-optimal-hour.
func (h *Handler) NextOptimalHour(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rec := querylog.Record{
		ID:        uuid.NewString(),
		Timestamp: h.engine.Now().UTC(),
		Partition: h.partition(r),
		Duration:  q.Get("numHoursToForecast"),
	}

	win, dur, err := h.answer(r.Context(), rec.Partition, rec.Duration, q.Get("max_start_time"), &rec)
	if err != nil {
		status := statusFor(err)
		rec.Status = status
		rec.Error = err.Error()
		h.record(r.Context(), rec)
		h.log.Warnf("optimal window for %q: %v", rec.Partition, err)
		respond.Error(w, h.log, status, err.Error())
		return
	}

	win.From = win.From.UTC()
	win.To = win.To.UTC()
	rec.Status = http.StatusOK
	rec.From, rec.To = win.From, win.To
	rec.Price, rec.Multiplier = win.Price, win.SuboptimalPriceMultiplier
	h.record(r.Context(), rec)
	if h.bus != nil {
		h.bus.Publish(events.WindowEvent{
			Partition: rec.Partition,
			Duration:  dur,
			Window:    win,
			Time:      rec.Timestamp,
		})
	}
	respond.JSON(w, h.log, http.StatusOK, WindowResponse{Price: win, Credits: h.cfg.Credits})
}

func (h *Handler) answer(ctx context.Context, partition, rawDuration, rawDeadline string, rec *querylog.Record) (model.OptimalWindow, model.TaskDuration, error) {
	dur, err := model.ParseTaskDuration(rawDuration)
	if err != nil {
		return model.OptimalWindow{}, dur, err
	}
	rec.Duration = dur.String()
	if partition == "" {
		return model.OptimalWindow{}, dur, pricing.ErrMissingPartitionKey
	}
	req := pricing.Request{Partition: partition, Duration: dur}
	if rawDeadline != "" {
		deadline, err := h.engine.ParseDeadline(rawDeadline)
		if err != nil {
			return model.OptimalWindow{}, dur, err
		}
		req.MaxStart = deadline
		utc := deadline.UTC()
		rec.MaxStart = &utc
	}
	win, err := h.engine.NextOptimalWindow(ctx, req)
	return win, dur, err
}

// ListPrices handles GET /api/prices. format=csv returns a CSV file.
func (h *Handler) ListPrices(w http.ResponseWriter, r *http.Request) {
	partition := h.partition(r)
	series, err := h.future(r.Context(), partition)
	if err != nil {
		respond.Error(w, h.log, statusFor(err), err.Error())
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "prices-"+partition+".csv"))
		if err := export.WriteCSV(w, series); err != nil {
			h.log.Errorf("write csv: %v", err)
		}
		return
	}
	respond.JSON(w, h.log, http.StatusOK, SeriesResponse{Partition: partition, Prices: series, Credits: h.cfg.Credits})
}

// Chart handles GET /api/prices/chart.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	partition := h.partition(r)
	series, err := h.future(r.Context(), partition)
	if err != nil {
		respond.Error(w, h.log, statusFor(err), err.Error())
		return
	}
	html, err := elprisen.PriceChartHTML(series, "Prices for "+partition, h.cfg.Location)
	if err != nil {
		respond.Error(w, h.log, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		h.log.Errorf("write chart: %v", err)
	}
}

func (h *Handler) future(ctx context.Context, partition string) (model.Series, error) {
	if partition == "" {
		return nil, pricing.ErrMissingPartitionKey
	}
	series, err := h.prices.Future(ctx, partition)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = model.Series{}
	}
	return series, nil
}

func (h *Handler) partition(r *http.Request) string {
	if p := strings.TrimSpace(r.URL.Query().Get("glnNumber")); p != "" {
		return p
	}
	return h.cfg.DefaultPartition
}

func (h *Handler) record(ctx context.Context, rec querylog.Record) {
	if err := h.store.Append(context.WithoutCancel(ctx), rec); err != nil {
		h.log.Warnf("query log append: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrMissingPartitionKey):
		return http.StatusInternalServerError
	case errors.Is(err, model.ErrMalformedDuration),
		errors.Is(err, pricing.ErrInvalidDeadline),
		errors.Is(err, pricing.ErrDeadlineInPast),
		errors.Is(err, pricing.ErrDeadlineViolated),
		errors.Is(err, pricing.ErrInsufficientData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
