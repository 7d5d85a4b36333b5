package store

import (
	"context"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteCampaign removes a campaign and everything imported into it, and
// returns counts of affected rows captured before deletion. Call it inside
// WithTx so the cascade is all-or-nothing.
func (s *Store) DeleteCampaign(ctx context.Context, campaignID uuid.UUID) (map[string]int64, error) {
	db := s.DB.WithContext(ctx)
	deleted := map[string]int64{}

	count := func(label string, query *gorm.DB) error {
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		deleted[label] = total
		return nil
	}

	if err := count("campaigns", db.Model(&domain.Campaign{}).Where("id = ?", campaignID)); err != nil {
		return nil, err
	}
	if deleted["campaigns"] == 0 {
		return deleted, ErrRecordNotFound
	}

	applicants := func() *gorm.DB {
		return db.Model(&domain.Applicant{}).Select("id").Where("convocatoria_id = ?", campaignID)
	}
	positions := func() *gorm.DB {
		return db.Model(&domain.Position{}).Select("id").Where("convocatoria_id = ?", campaignID)
	}

	if err := count("tokens", db.Model(&domain.AccessToken{}).Where("aspirante_id IN (?)", applicants())); err != nil {
		return nil, err
	}
	if err := count("links", db.Model(&domain.Link{}).Where("aspirante_id IN (?) OR plaza_id IN (?)", applicants(), positions())); err != nil {
		return nil, err
	}
	if err := count("applicants", db.Model(&domain.Applicant{}).Where("convocatoria_id = ?", campaignID)); err != nil {
		return nil, err
	}
	if err := count("positions", db.Model(&domain.Position{}).Where("convocatoria_id = ?", campaignID)); err != nil {
		return nil, err
	}

	if err := db.Where("aspirante_id IN (?)", applicants()).Delete(&domain.AccessToken{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("aspirante_id IN (?) OR plaza_id IN (?)", applicants(), positions()).Delete(&domain.Link{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("convocatoria_id = ?", campaignID).Delete(&domain.Applicant{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("convocatoria_id = ?", campaignID).Delete(&domain.Position{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id = ?", campaignID).Delete(&domain.Campaign{}).Error; err != nil {
		return nil, err
	}
	return deleted, nil
}
