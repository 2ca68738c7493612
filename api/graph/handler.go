// Package graph serves the reachability endpoints.
package graph

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/nexthour/api/respond"
	coregraph "github.com/kilianp07/nexthour/core/graph"
	"github.com/kilianp07/nexthour/core/logger"
)

// Reacher answers traversal queries.
type Reacher interface {
	Reach(start string, kind coregraph.Kind) []string
	Reachable(start string) map[coregraph.Kind][]string
}

// Handler serves /api/descendants, /api/ancestors, /api/related and
// /api/reachable.
type Handler struct {
	svc Reacher
	log logger.Logger
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc Reacher, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{svc: svc, log: log}
}

// Mount registers the graph routes on r.
func (h *Handler) Mount(r chi.Router) {
	for _, k := range coregraph.Kinds {
		r.Get("/api/"+string(k), h.kindHandler(k))
	}
	r.Get("/api/reachable", h.Reachable)
}

func (h *Handler) kindHandler(kind coregraph.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, ok := h.startNode(w, r)
		if !ok {
			return
		}
		respond.JSON(w, h.log, http.StatusOK, map[string]any{
			"startnode":  start,
			string(kind): h.svc.Reach(start, kind),
		})
	}
}

// Reachable handles GET /api/reachable by merging every traversal.
func (h *Handler) Reachable(w http.ResponseWriter, r *http.Request) {
	start, ok := h.startNode(w, r)
	if !ok {
		return
	}
	body := map[string]any{"startnode": start}
	for k, nodes := range h.svc.Reachable(start) {
		body[string(k)] = nodes
	}
	respond.JSON(w, h.log, http.StatusOK, body)
}

func (h *Handler) startNode(w http.ResponseWriter, r *http.Request) (string, bool) {
	start := strings.TrimSpace(r.URL.Query().Get("startnode"))
	if start == "" {
		respond.Error(w, h.log, http.StatusUnprocessableEntity, "startnode is required")
		return "", false
	}
	return start, true
}
