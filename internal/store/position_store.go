package store

import (
	"context"
	"time"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PositionStore struct{ db *gorm.DB }

func (s *Store) Positions() *PositionStore { return &PositionStore{db: s.DB} }

// Upsert inserts the position or merges its descriptive fields into the
// existing row with the same (campaign, base, position). p.ID is replaced by
// the stored id and created tells whether this call inserted the row. Both
// are read back after the statement, so a concurrent import that inserted the
// row first is reported as an update.
func (ps *PositionStore) Upsert(ctx context.Context, p *domain.Position) (created bool, err error) {
	db := ps.db.WithContext(ctx)

	candidate := uuid.New()
	p.ID = candidate
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "convocatoria_id"}, {Name: "base"}, {Name: "posicion"}},
		DoUpdates: clause.Assignments(map[string]any{
			"hores":           keepExisting("plaza", "hores"),
			"torn_x":          keepExisting("plaza", "torn_x"),
			"gfh_adjudicacio": keepExisting("plaza", "gfh_adjudicacio"),
			"centro":          keepExisting("plaza", "centro"),
			"descripcion":     keepExisting("plaza", "descripcion"),
		}),
	}).Create(p).Error
	if err != nil {
		return false, translate(err)
	}

	var stored domain.Position
	err = db.Select("id").
		Where("convocatoria_id = ? AND base = ? AND posicion = ?", p.CampaignID, p.Base, p.Code).
		Take(&stored).Error
	if err != nil {
		return false, translate(err)
	}
	p.ID = stored.ID
	return stored.ID == candidate, nil
}

// ListByCampaign returns positions in canonical order: position code, then
// base, then id.
func (ps *PositionStore) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Position, error) {
	var out []domain.Position
	err := ps.db.WithContext(ctx).
		Where("convocatoria_id = ?", campaignID).
		Order("posicion ASC, base ASC, id ASC").
		Find(&out).Error
	return out, err
}
