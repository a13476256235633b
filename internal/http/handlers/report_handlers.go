package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
)

// GetReportSnapshotHandler godoc
// @Summary Dashboard report snapshot
// @Description Composes sales series, rankings, segments, stock and KPIs for the range. Without start and end the trailing default window is used.
// @Tags reports
// @Produce json
// @Param start query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param end query string false "End date (YYYY-MM-DD or RFC3339)"
// @Success 200 {object} analytics.Snapshot
// @Failure 400 {string} string "Invalid range"
// @Failure 500 {string} string "Internal error"
// @Router /reports/snapshot [get]
// @Security BearerAuth
func GetReportSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := reportSvc.Snapshot(r.Context(), dr)
	if err != nil {
		writeError(w, err, "build report")
		return
	}
	respond(w, http.StatusOK, snap)
}

// GetSalesSeriesHandler godoc
// @Summary Sales series by day or month
// @Tags reports
// @Produce json
// @Param granularity query string false "day (default) or month"
// @Param start query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param end query string false "End date (YYYY-MM-DD or RFC3339)"
// @Success 200 {array} analytics.Bucket
// @Failure 400 {string} string "Invalid query"
// @Failure 500 {string} string "Internal error"
// @Router /reports/series [get]
// @Security BearerAuth
func GetSalesSeriesHandler(w http.ResponseWriter, r *http.Request) {
	g, err := analytics.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dr, err := parseDateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buckets, err := reportSvc.Series(r.Context(), g, dr)
	if err != nil {
		writeError(w, err, "build series")
		return
	}
	respond(w, http.StatusOK, buckets)
}

// GetEntityStatsHandler godoc
// @Summary Aggregate statistics of one entity
// @Tags reports
// @Produce json
// @Param entity path string true "customers|inventory|suppliers|invoices|sales"
// @Success 200 {object} map[string]any
// @Failure 404 {string} string "Unknown entity"
// @Failure 500 {string} string "Internal error"
// @Router /stats/{entity} [get]
// @Security BearerAuth
func GetEntityStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := reportSvc.Stats(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		writeError(w, err, "build stats")
		return
	}
	respond(w, http.StatusOK, stats)
}
