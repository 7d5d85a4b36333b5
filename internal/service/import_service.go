package service

import (
	"context"

	"prioritizacion/internal/dto"
)

// ImportService reconciles a workbook into campaigns, applicants, positions,
// links and access tokens in a single transaction. Validation outcomes are
// reported through ImportResult; the error is reserved for faults and
// cancellation.
type ImportService interface {
	Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResult, error)
}
