package http

import (
	"errors"
	"net/http"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"
	"prioritizacion/internal/httpx"
	"prioritizacion/internal/observability/logging"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCodeLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrLoginRejected),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAdminWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSaveClosed),
		errors.Is(err, domain.ErrResetClosed),
		errors.Is(err, domain.ErrSubmitClosed),
		errors.Is(err, domain.ErrAdminNotConfigured):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCampaignCodeTaken),
		errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// writeError turns rejections into their status with the reason, and hides
// faults behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if rej, ok := domain.AsRejection(err); ok {
		writeFailure(w, statusFor(err), rej.Reason)
		return
	}
	logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	writeFailure(w, http.StatusInternalServerError, "internal error")
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, dto.ErrorResponse{OK: false, Error: msg})
}
