package impl

import (
	"errors"
	"testing"

	"prioritizacion/internal/domain"
)

func TestAdminAuthenticator(t *testing.T) {
	a, err := NewAdminAuthenticator("s3cret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// keep the test fast
	a.params.Memory = 1024
	a.hash = a.derive("s3cret")

	if !a.Enabled() {
		t.Fatalf("expected enabled")
	}
	if err := a.Authenticate("s3cret"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := a.Authenticate("nope"); !errors.Is(err, domain.ErrAdminWrongPassword) {
		t.Fatalf("expected wrong password, got %v", err)
	}
	if err := a.Authenticate(""); !errors.Is(err, domain.ErrAdminWrongPassword) {
		t.Fatalf("expected wrong password for empty input, got %v", err)
	}

	disabled, _ := NewAdminAuthenticator("")
	if err := disabled.Authenticate("anything"); !errors.Is(err, domain.ErrAdminNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}
