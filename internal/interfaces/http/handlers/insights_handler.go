package handlers

import (
	"net/http"

	"github.com/wealthdesk/wealthdesk/internal/application/insights"
)

// InsightsHandler serves the book-level metric routes.
type InsightsHandler struct {
	service insights.Service
}

// NewInsightsHandler creates an InsightsHandler.
func NewInsightsHandler(service insights.Service) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// Book handles GET /insights/book.
func (h *InsightsHandler) Book(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Book(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Drilldown handles GET /insights/drilldown?metric=&group_by=&from=&to=.
func (h *InsightsHandler) Drilldown(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	result, err := h.service.Drilldown(r.Context(),
		r.URL.Query().Get("metric"), r.URL.Query().Get("group_by"), rng)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
