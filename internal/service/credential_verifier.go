package service

import (
	"context"

	"github.com/google/uuid"
)

// CredentialVerifier resolves an (email, code) pair to the applicant it
// belongs to. Expected failures are *domain.Rejection values.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, code string) (uuid.UUID, error)
}
