package store

import (
	"context"
	"time"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CampaignStore struct{ db *gorm.DB }

func (s *Store) Campaigns() *CampaignStore { return &CampaignStore{db: s.DB} }

func (cs *CampaignStore) List(ctx context.Context) ([]domain.Campaign, error) {
	var out []domain.Campaign
	if err := cs.db.WithContext(ctx).Order("creado_en DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *CampaignStore) Get(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	var c domain.Campaign
	if err := cs.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (cs *CampaignStore) Create(ctx context.Context, c *domain.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return translate(cs.db.WithContext(ctx).Create(c).Error)
}

// Update overwrites every editable column, including clearing optional dates.
func (cs *CampaignStore) Update(ctx context.Context, c *domain.Campaign) error {
	tx := cs.db.WithContext(ctx).
		Model(&domain.Campaign{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"codigo":       c.Code,
			"nombre":       c.Name,
			"fecha_inicio": c.StartDate,
			"fecha_fin":    c.EndDate,
			"activa":       c.Active,
			"acceso_desde": c.AccessFrom,
			"acceso_hasta": c.AccessTo,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
