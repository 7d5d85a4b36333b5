package http

import (
	"encoding/json"
	"net/http"

	"prioritizacion/internal/dto"
	"prioritizacion/internal/httpx"
	"prioritizacion/internal/jwtsigner"
	"prioritizacion/internal/netutil"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/service"
)

type authHandlers struct {
	verifier service.CredentialVerifier
	admin    service.AdminAuthenticator
	sessions *Sessions
}

func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad request")
		return
	}
	log := logging.FromContext(r.Context()).With(
		"ip", netutil.ClientIP(r),
		"user_agent", netutil.TruncateUserAgent(r.UserAgent()),
	)

	id, err := h.verifier.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		log.Info("applicant login failed", "reason", err.Error())
		writeError(w, r, err)
		return
	}
	if err := h.sessions.issue(w, ApplicantCookie, id.String(), jwtsigner.ScopeApplicant, h.sessions.ApplicantTTL); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		OK:          true,
		ApplicantID: id.String(),
		ExpiresIn:   int64(h.sessions.ApplicantTTL.Seconds()),
	})
}

func (h *authHandlers) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.clear(w, ApplicantCookie)
	httpx.WriteJSON(w, http.StatusOK, dto.OperationResponse{OK: true, SessionEnded: true})
}

func (h *authHandlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.admin.Authenticate(req.Password); err != nil {
		logging.FromContext(r.Context()).Warn("admin login failed", "ip", netutil.ClientIP(r), "reason", err.Error())
		writeError(w, r, err)
		return
	}
	if err := h.sessions.issue(w, AdminCookie, "admin", jwtsigner.ScopeAdmin, h.sessions.AdminTTL); err != nil {
		writeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("admin logged in", "ip", netutil.ClientIP(r))
	httpx.WriteJSON(w, http.StatusOK, dto.OperationResponse{OK: true})
}

func (h *authHandlers) adminLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.clear(w, AdminCookie)
	httpx.WriteJSON(w, http.StatusOK, dto.OperationResponse{OK: true, SessionEnded: true})
}
