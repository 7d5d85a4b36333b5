package service

import (
	"context"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"

	"github.com/google/uuid"
)

type CampaignService interface {
	List(ctx context.Context) ([]domain.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	Create(ctx context.Context, in dto.CampaignInput) (*domain.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, in dto.CampaignInput) (*domain.Campaign, error)
	// Delete removes the campaign and everything imported into it, returning
	// per-table row counts. A missing campaign yields domain.ErrCampaignNotFound.
	Delete(ctx context.Context, id uuid.UUID) (map[string]int64, error)
}
