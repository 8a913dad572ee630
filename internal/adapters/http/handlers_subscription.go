package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gradlink/accounts-service/internal/application"
)

func (h *Handler) activateSubscription(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "activate_subscription")
		return
	}

	var req application.ActivateSubscriptionRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "activate_subscription", err)
		return
	}
	// The caller activates its own subscription; the body cannot override
	// the authenticated user.
	req.UserID = claims.UserID

	res, err := h.service.ActivateSubscription(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "activate_subscription", err)
		return
	}
	status := http.StatusCreated
	if res.AlreadyExists {
		status = http.StatusOK
	}
	writeSuccess(w, status, res)
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "cancel_subscription")
		return
	}

	subscriptionID, err := uuid.Parse(chi.URLParam(r, "subscription_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "cancel_subscription", err)
		return
	}

	if err := h.service.CancelSubscription(r.Context(), claims.UserID, subscriptionID); err != nil {
		writeMappedError(r.Context(), w, "cancel_subscription", err)
		return
	}
	writeMessage(w, http.StatusOK, "subscription cancelled")
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "list_subscriptions")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	items, err := h.service.ListSubscriptions(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_subscriptions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"subscriptions": items})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "list_payments")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	items, err := h.service.ListPayments(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_payments", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"payments": items})
}
