// Package queries exposes the optimal window query log.
package queries

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/nexthour/api/respond"
	"github.com/kilianp07/nexthour/core/logger"
	"github.com/kilianp07/nexthour/infra/querylog"
)

// NewHandler returns an HTTP handler exposing the query log via GET /api/queries.
// Supported filters: start and end (RFC 3339), glnNumber and limit.
func NewHandler(store querylog.Store, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		q := querylog.Query{Partition: params.Get("glnNumber")}
		if s := params.Get("start"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				respond.Error(w, log, http.StatusBadRequest, "invalid start: "+err.Error())
				return
			}
			q.Start = t
		}
		if s := params.Get("end"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				respond.Error(w, log, http.StatusBadRequest, "invalid end: "+err.Error())
				return
			}
			q.End = t
		}
		if s := params.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				respond.Error(w, log, http.StatusBadRequest, "invalid limit")
				return
			}
			q.Limit = n
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			respond.Error(w, log, http.StatusInternalServerError, err.Error())
			return
		}
		if records == nil {
			records = []querylog.Record{}
		}
		respond.JSON(w, log, http.StatusOK, records)
	})
}

// Routes mounts the query log handler.
type Routes struct {
	Store querylog.Store
	Log   logger.Logger
}

// Mount registers GET /api/queries on r.
func (rt Routes) Mount(r chi.Router) {
	r.Method(http.MethodGet, "/api/queries", NewHandler(rt.Store, rt.Log))
}
