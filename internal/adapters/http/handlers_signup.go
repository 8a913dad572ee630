package http

import (
	"net/http"

	"github.com/gradlink/accounts-service/internal/application"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "signup", err)
		return
	}

	res, err := h.service.SignupUser(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) adminSignup(w http.ResponseWriter, r *http.Request) {
	var req application.AdminSignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_signup", err)
		return
	}

	res, err := h.service.SignupOrganizationAdmin(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "admin_signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) eventSignup(w http.ResponseWriter, r *http.Request) {
	var req application.EventSignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "event_signup", err)
		return
	}

	res, err := h.service.RegisterEventAttendee(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "event_signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
