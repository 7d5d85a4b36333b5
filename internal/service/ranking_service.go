package service

import (
	"context"

	"prioritizacion/internal/dto"

	"github.com/google/uuid"
)

// RankingService drives one applicant's preference list. Save, Reset and
// Submit re-check that the campaign is open inside their own transaction.
type RankingService interface {
	List(ctx context.Context, applicantID uuid.UUID) ([]dto.RankingItem, error)
	Save(ctx context.Context, applicantID uuid.UUID, positionIDs []uuid.UUID) error
	Reset(ctx context.Context, applicantID uuid.UUID) error
	Submit(ctx context.Context, applicantID uuid.UUID) error
}
