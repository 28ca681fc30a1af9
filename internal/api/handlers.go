/**
 * @description
 * This file contains the HTTP handler functions for the entitlement-service.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate business logic in the service layer, and mapping the error
 * taxonomy onto HTTP status codes while keeping the `{"error": ...}` body
 * shape existing clients expect.
 */
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/streamvibe/entitlement-service/internal/app"
)

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service *app.Service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// handleCheckSubscription returns whether the caller's subscription currently
// grants access, along with the full snapshot.
func (h *Handler) handleCheckSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	state, err := h.service.CheckSubscription(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

// handleEntitlements computes the full access decision for an optional piece
// of content.
func (h *Handler) handleEntitlements(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Both ids are optional; an empty body is a valid subscription-only check.
	var req struct {
		VideoID   string `json:"videoId"`
		ContentID string `json:"contentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	decision, err := h.service.Decide(r.Context(), userID, req.VideoID, req.ContentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, decision)
}

// handleCreateSubscriptionOrder creates a gateway order for a plan.
func (h *Handler) handleCreateSubscriptionOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		PlanID string `json:"planId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.CreateSubscriptionOrder(r.Context(), userID, req.PlanID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

// handleCreatePayPerViewOrder creates a gateway order for a content item.
func (h *Handler) handleCreatePayPerViewOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		ContentID string `json:"contentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.CreatePayPerViewOrder(r.Context(), userID, req.ContentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

// handleVerifySubscriptionPayment runs the verification workflow for a
// subscription checkout callback.
func (h *Handler) handleVerifySubscriptionPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req app.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.service.VerifySubscriptionPayment(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"subscription": sub,
	})
}

// handleVerifyPayPerViewPayment runs the verification workflow for a
// pay-per-view checkout callback.
func (h *Handler) handleVerifyPayPerViewPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req app.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	purchase, err := h.service.VerifyPayPerViewPayment(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"purchase": purchase,
	})
}

// respondWithServiceError maps the error taxonomy onto status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var validationErr *app.ValidationError
	var persistenceErr *app.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, app.ErrInvalidSignature):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrRecordNotFound), errors.Is(err, app.ErrReferenceNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &persistenceErr):
		respondWithError(w, http.StatusInternalServerError, persistenceErr.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes the `{"error": ...}` body all clients expect.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
