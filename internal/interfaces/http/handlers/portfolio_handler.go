package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appportfolio "github.com/wealthdesk/wealthdesk/internal/application/portfolio"
)

// PortfolioHandler serves the ledger and portfolio-analytics routes.
type PortfolioHandler struct {
	service appportfolio.Service
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(service appportfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// RecordTransaction handles POST /clients/{clientID}/transactions.
func (h *PortfolioHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var input appportfolio.RecordInput
	if err := decodeBody(r, &input); err != nil {
		writeAppError(w, err)
		return
	}
	input.ClientID = chi.URLParam(r, "clientID")

	txn, err := h.service.RecordTransaction(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// ListTransactions handles GET /clients/{clientID}/transactions.
func (h *PortfolioHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	page, pageSize := parsePagination(r)

	result, err := h.service.ListTransactions(r.Context(), appportfolio.ListInput{
		ClientID: chi.URLParam(r, "clientID"),
		Range:    rng,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteTransaction handles DELETE /clients/{clientID}/transactions/{transactionID}.
func (h *PortfolioHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteTransaction(r.Context(),
		chi.URLParam(r, "clientID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /clients/{clientID}/portfolio.
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// TransactionSummary handles
// GET /clients/{clientID}/portfolio/transactions?group_by=&from=&to=.
func (h *PortfolioHandler) TransactionSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = "month"
	}

	buckets, err := h.service.GetTransactionSummary(r.Context(), chi.URLParam(r, "clientID"), groupBy, rng)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// Performance handles GET /clients/{clientID}/portfolio/performance.
func (h *PortfolioHandler) Performance(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.GetPerformance(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}
