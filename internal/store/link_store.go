package store

import (
	"context"
	"time"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LinkStore struct{ db *gorm.DB }

func (s *Store) Links() *LinkStore { return &LinkStore{db: s.DB} }

// RankedLink is a visible link joined with its position.
type RankedLink struct {
	PositionID     uuid.UUID
	Base           string
	Code           string
	Centre         *string
	Description    *string
	EffectiveOrder int
}

// CampaignRankingRow is one visible choice of one applicant, for exports.
type CampaignRankingRow struct {
	ApplicantID    uuid.UUID
	NationalID     *string
	Email          string
	Name           *string
	SubmittedAt    *time.Time
	Base           string
	Code           string
	Centre         *string
	EffectiveOrder int
}

// Upsert applies an imported link. On conflict the default order is replaced,
// score fields are merged (NULL keeps the stored value) and a user order that
// is already set is preserved. As with positions, l.ID and created are read
// back from the stored row.
func (ls *LinkStore) Upsert(ctx context.Context, l *domain.Link) (created bool, err error) {
	db := ls.db.WithContext(ctx)

	now := time.Now().UTC()
	candidate := uuid.New()
	l.ID = candidate
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "aspirante_id"}, {Name: "plaza_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"orden_defecto":      gorm.Expr("excluded.orden_defecto"),
			"experiencia":        keepExisting("aspirante_plaza", "experiencia"),
			"barem_personal":     keepExisting("aspirante_plaza", "barem_personal"),
			"qualificacio":       keepExisting("aspirante_plaza", "qualificacio"),
			"total":              keepExisting("aspirante_plaza", "total"),
			"ficher_aspirant":    keepExisting("aspirante_plaza", "ficher_aspirant"),
			"pond_exp":           keepExisting("aspirante_plaza", "pond_exp"),
			"pond_barem":         keepExisting("aspirante_plaza", "pond_barem"),
			"prova_competencial": keepExisting("aspirante_plaza", "prova_competencial"),
			"pond_prova":         keepExisting("aspirante_plaza", "pond_prova"),
			"orden_usuario":      gorm.Expr("COALESCE(aspirante_plaza.orden_usuario, excluded.orden_usuario)"),
			"modificado_en":      gorm.Expr("excluded.modificado_en"),
		}),
	}).Create(l).Error
	if err != nil {
		return false, translate(err)
	}

	var stored domain.Link
	err = db.Select("id").
		Where("aspirante_id = ? AND plaza_id = ?", l.ApplicantID, l.PositionID).
		Take(&stored).Error
	if err != nil {
		return false, translate(err)
	}
	l.ID = stored.ID
	return stored.ID == candidate, nil
}

// ResetDefault makes the link visible with the given default order and no user
// order, inserting it when it does not exist yet.
func (ls *LinkStore) ResetDefault(ctx context.Context, applicantID, positionID uuid.UUID, order int) error {
	now := time.Now().UTC()
	l := domain.Link{
		ID:           uuid.New(),
		ApplicantID:  applicantID,
		PositionID:   positionID,
		DefaultOrder: order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return ls.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "aspirante_id"}, {Name: "plaza_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"orden_defecto": gorm.Expr("excluded.orden_defecto"),
			"orden_usuario": nil,
			"bloqueada":     false,
			"modificado_en": gorm.Expr("excluded.modificado_en"),
		}),
	}).Create(&l).Error
}

func (ls *LinkStore) ListVisible(ctx context.Context, applicantID uuid.UUID) ([]RankedLink, error) {
	var out []RankedLink
	err := ls.db.WithContext(ctx).
		Table("aspirante_plaza AS ap").
		Select("ap.plaza_id AS position_id, p.base AS base, p.posicion AS code, p.centro AS centre, "+
			"p.descripcion AS description, COALESCE(ap.orden_usuario, ap.orden_defecto) AS effective_order").
		Joins("JOIN plaza p ON p.id = ap.plaza_id").
		Where("ap.aspirante_id = ? AND ap.bloqueada = ?", applicantID, false).
		Order("effective_order ASC, p.posicion ASC, p.base ASC").
		Scan(&out).Error
	return out, err
}

func (ls *LinkStore) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.Link, error) {
	var out []domain.Link
	err := ls.db.WithContext(ctx).
		Where("aspirante_id = ?", applicantID).
		Order("orden_defecto ASC, id ASC").
		Find(&out).Error
	return out, err
}

// BlockAllExcept hides every link of the applicant whose position is not in
// keep and drops its user order.
func (ls *LinkStore) BlockAllExcept(ctx context.Context, applicantID uuid.UUID, keep []uuid.UUID) (int64, error) {
	q := ls.db.WithContext(ctx).
		Model(&domain.Link{}).
		Where("aspirante_id = ?", applicantID)
	if len(keep) > 0 {
		q = q.Where("plaza_id NOT IN ?", keep)
	}
	tx := q.Updates(map[string]any{
		"bloqueada":     true,
		"orden_usuario": nil,
		"modificado_en": time.Now().UTC(),
	})
	return tx.RowsAffected, tx.Error
}

func (ls *LinkStore) SetUserOrder(ctx context.Context, applicantID, positionID uuid.UUID, order int) (int64, error) {
	tx := ls.db.WithContext(ctx).
		Model(&domain.Link{}).
		Where("aspirante_id = ? AND plaza_id = ?", applicantID, positionID).
		Updates(map[string]any{
			"orden_usuario": order,
			"bloqueada":     false,
			"modificado_en": time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}

func (ls *LinkStore) ClearUserOrders(ctx context.Context, applicantID uuid.UUID) (int64, error) {
	tx := ls.db.WithContext(ctx).
		Model(&domain.Link{}).
		Where("aspirante_id = ?", applicantID).
		Updates(map[string]any{
			"orden_usuario": nil,
			"bloqueada":     false,
			"modificado_en": time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}

func (ls *LinkStore) ListCampaignRanking(ctx context.Context, campaignID uuid.UUID) ([]CampaignRankingRow, error) {
	var out []CampaignRankingRow
	err := ls.db.WithContext(ctx).
		Table("aspirante_plaza AS ap").
		Select("a.id AS applicant_id, a.dni_nie AS national_id, a.email AS email, a.nombre AS name, "+
			"a.enviado_en AS submitted_at, p.base AS base, p.posicion AS code, p.centro AS centre, "+
			"COALESCE(ap.orden_usuario, ap.orden_defecto) AS effective_order").
		Joins("JOIN aspirante a ON a.id = ap.aspirante_id").
		Joins("JOIN plaza p ON p.id = ap.plaza_id").
		Where("a.convocatoria_id = ? AND ap.bloqueada = ?", campaignID, false).
		Order("a.email ASC, a.id ASC, effective_order ASC, p.posicion ASC, p.base ASC").
		Scan(&out).Error
	return out, err
}
