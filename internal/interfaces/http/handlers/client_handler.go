package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wealthdesk/wealthdesk/internal/application/crm"
)

// ClientHandler serves the client and prospect routes.
type ClientHandler struct {
	service crm.Service
}

// NewClientHandler creates a ClientHandler.
func NewClientHandler(service crm.Service) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create handles POST /clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input crm.CreateInput
	if err := decodeBody(r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	client, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// Get handles GET /clients/{clientID}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.GetByID(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Update handles PUT /clients/{clientID}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input crm.UpdateInput
	if err := decodeBody(r, &input); err != nil {
		writeAppError(w, err)
		return
	}
	input.ID = chi.URLParam(r, "clientID")

	client, err := h.service.Update(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Convert handles POST /clients/{clientID}/convert.
func (h *ClientHandler) Convert(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.Convert(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// ChangeStatus handles PUT /clients/{clientID}/status.
func (h *ClientHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeAppError(w, err)
		return
	}

	client, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "clientID"), body.Status)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Delete handles DELETE /clients/{clientID}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "clientID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	result, err := h.service.List(r.Context(), crm.ListInput{
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
