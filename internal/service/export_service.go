package service

import (
	"context"

	"github.com/google/uuid"
)

type ExportService interface {
	// Export renders a campaign's rankings and active codes as .xlsx.
	Export(ctx context.Context, campaignID uuid.UUID) ([]byte, error)
}
