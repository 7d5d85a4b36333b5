package impl

import (
	"context"
	"strings"
	"time"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/observability/metrics"
	"prioritizacion/internal/store"

	"github.com/google/uuid"
)

const (
	DefaultTokenTTL      = 15 * 24 * time.Hour
	defaultTokenAttempts = 5
	accessCodePrefix     = "AUTO-"
)

// TokenIssuer gives applicants without an active access code a fresh one.
type TokenIssuer struct {
	TTL      time.Duration
	Attempts int
	NewCode  func() string
	Now      func() time.Time
}

func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		TTL:      ttl,
		Attempts: defaultTokenAttempts,
		NewCode:  GenerateAccessCode,
		Now:      utcNow,
	}
}

// GenerateAccessCode returns AUTO- followed by 8 upper-case hex digits.
func GenerateAccessCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return accessCodePrefix + raw[:8]
}

// Ensure issues a code unless the applicant already holds a non-revoked one.
// Code collisions are retried; running out of attempts is logged and reported
// as "not created" without failing the caller.
func (ti *TokenIssuer) Ensure(ctx context.Context, tx *store.Store, applicantID uuid.UUID) (bool, error) {
	has, err := tx.Tokens().HasActive(ctx, applicantID)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	for i := 0; i < ti.Attempts; i++ {
		t := &domain.AccessToken{
			ID:          uuid.New(),
			ApplicantID: applicantID,
			Code:        ti.NewCode(),
			ExpiresAt:   ti.Now().Add(ti.TTL),
			CreatedAt:   ti.Now(),
		}
		inserted, err := tx.Tokens().InsertIfCodeFree(ctx, t)
		if err != nil {
			metrics.TokensIssuedTotal.WithLabelValues(metrics.ResultError).Inc()
			return false, err
		}
		if inserted {
			metrics.TokensIssuedTotal.WithLabelValues(metrics.ResultOK).Inc()
			return true, nil
		}
	}

	metrics.TokensIssuedTotal.WithLabelValues(metrics.ResultExhausted).Inc()
	logging.FromContext(ctx).Warn("could not generate a unique access code",
		"applicant_id", applicantID, "attempts", ti.Attempts)
	return false, nil
}
