package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"prioritizacion/internal/jwtsigner"
	"prioritizacion/internal/observability/logging"

	"github.com/google/uuid"
)

const (
	ApplicantCookie = "prioritizacion_session"
	AdminCookie     = "prioritizacion_admin"
)

// Sessions issues and resolves the signed session cookies.
type Sessions struct {
	Signer       *jwtsigner.Signer
	ApplicantTTL time.Duration
	AdminTTL     time.Duration
	Secure       bool
}

type applicantKey struct{}

// ApplicantFrom returns the applicant resolved by RequireApplicant.
func ApplicantFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(applicantKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// ResolveApplicant maps the request's credentials to an applicant id. Any
// failure resolves to nothing.
func (s *Sessions) ResolveApplicant(r *http.Request) (uuid.UUID, bool) {
	raw := credential(r, ApplicantCookie)
	if raw == "" {
		return uuid.Nil, false
	}
	claims, err := s.Signer.Verify(raw, jwtsigner.ScopeApplicant)
	if err != nil {
		logging.FromContext(r.Context()).Debug("applicant session rejected", "error", err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Sessions) resolveAdmin(r *http.Request) bool {
	raw := credential(r, AdminCookie)
	if raw == "" {
		return false
	}
	_, err := s.Signer.Verify(raw, jwtsigner.ScopeAdmin)
	if err != nil {
		logging.FromContext(r.Context()).Debug("admin session rejected", "error", err)
	}
	return err == nil
}

// credential prefers the cookie and falls back to a bearer token.
func credential(r *http.Request, cookie string) string {
	if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
		return c.Value
	}
	raw := r.Header.Get("Authorization")
	if len(raw) > len("bearer ") && strings.EqualFold(raw[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(raw[len("bearer "):])
	}
	return ""
}

func (s *Sessions) RequireApplicant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.ResolveApplicant(r)
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), applicantKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Sessions) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.resolveAdmin(r) {
			writeFailure(w, http.StatusUnauthorized, "admin authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Sessions) issue(w http.ResponseWriter, name, sub, scope string, ttl time.Duration) error {
	tok, err := s.Signer.Sign(sub, scope, ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
