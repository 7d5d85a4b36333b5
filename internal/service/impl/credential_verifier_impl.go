package impl

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/observability/metrics"
	"prioritizacion/internal/store"

	"github.com/google/uuid"
)

type CredentialVerifierImpl struct {
	Store *store.Store
	Now   func() time.Time
}

func NewCredentialVerifier(st *store.Store) *CredentialVerifierImpl {
	return &CredentialVerifierImpl{Store: st, Now: utcNow}
}

// Verify runs each step as its own statement; attempt counters tolerate
// concurrent failures without a surrounding transaction.
func (v *CredentialVerifierImpl) Verify(ctx context.Context, email, code string) (uuid.UUID, error) {
	id, err := v.verify(ctx, email, code)
	result := metrics.ResultOK
	switch {
	case errors.Is(err, domain.ErrCodeLocked):
		result = metrics.ResultLocked
	case err != nil && domain.IsRejection(err):
		result = metrics.ResultRejected
	case err != nil:
		result = metrics.ResultError
	}
	metrics.LoginsTotal.WithLabelValues(result).Inc()
	return id, err
}

func (v *CredentialVerifierImpl) verify(ctx context.Context, email, code string) (uuid.UUID, error) {
	if v.Store == nil {
		return uuid.Nil, ErrNilStore
	}
	log := logging.FromContext(ctx)

	// 1) normalize and check shape
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return uuid.Nil, domain.ErrCredentialsRequired
	}
	if utf8.RuneCountInString(email) > maxEmailLength || utf8.RuneCountInString(code) > maxCodeLength {
		return uuid.Nil, domain.ErrInvalidCredentials
	}
	if !validEmail(email) {
		return uuid.Nil, domain.ErrInvalidEmail
	}

	tokens := v.Store.Tokens()

	// 2) lockout wins over everything else, even a correct pair
	attempts, found, err := tokens.FailedAttempts(ctx, code)
	if err != nil {
		return uuid.Nil, err
	}
	if found && attempts >= domain.MaxFailedAttempts {
		log.Warn("login rejected: code locked", "attempts", attempts)
		return uuid.Nil, domain.ErrCodeLocked
	}

	// 3) token, applicant and campaign must all agree
	applicantID, ok, err := v.match(ctx, email, code)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		if found {
			if err := tokens.IncrementFailures(ctx, code); err != nil {
				return uuid.Nil, err
			}
		}
		log.Info("login rejected", "known_code", found)
		return uuid.Nil, domain.ErrLoginRejected
	}

	// 4) success resets the counter
	if err := tokens.MarkSuccess(ctx, code, v.Now()); err != nil {
		return uuid.Nil, err
	}
	log.Info("applicant logged in", "applicant_id", applicantID)
	return applicantID, nil
}

func (v *CredentialVerifierImpl) match(ctx context.Context, email, code string) (uuid.UUID, bool, error) {
	now := v.Now()

	tok, err := v.Store.Tokens().GetByCode(ctx, code)
	if errors.Is(err, store.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	if !tok.UsableAt(now) {
		return uuid.Nil, false, nil
	}

	a, err := v.Store.Applicants().Get(ctx, tok.ApplicantID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	if a.Submitted() || strings.ToLower(a.Email) != email {
		return uuid.Nil, false, nil
	}

	c, err := v.Store.Campaigns().Get(ctx, a.CampaignID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	if !c.IsOpenAt(now) {
		return uuid.Nil, false, nil
	}
	return a.ID, true, nil
}
