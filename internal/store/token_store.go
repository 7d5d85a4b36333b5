package store

import (
	"context"
	"errors"
	"time"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenStore struct{ db *gorm.DB }

func (s *Store) Tokens() *TokenStore { return &TokenStore{db: s.DB} }

func (ts *TokenStore) GetByCode(ctx context.Context, code string) (*domain.AccessToken, error) {
	var t domain.AccessToken
	if err := ts.db.WithContext(ctx).Take(&t, "codigo = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FailedAttempts returns the counter for code; found is false when no token
// carries that code.
func (ts *TokenStore) FailedAttempts(ctx context.Context, code string) (attempts int, found bool, err error) {
	var t domain.AccessToken
	err = ts.db.WithContext(ctx).Select("intentos_fallidos").Take(&t, "codigo = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return t.FailedAttempts, true, nil
}

func (ts *TokenStore) IncrementFailures(ctx context.Context, code string) error {
	return ts.db.WithContext(ctx).
		Model(&domain.AccessToken{}).
		Where("codigo = ?", code).
		Update("intentos_fallidos", gorm.Expr("intentos_fallidos + 1")).Error
}

func (ts *TokenStore) MarkSuccess(ctx context.Context, code string, at time.Time) error {
	return ts.db.WithContext(ctx).
		Model(&domain.AccessToken{}).
		Where("codigo = ?", code).
		Updates(map[string]any{
			"intentos_fallidos": 0,
			"ultimo_acceso_en":  at,
		}).Error
}

func (ts *TokenStore) HasActive(ctx context.Context, applicantID uuid.UUID) (bool, error) {
	var n int64
	err := ts.db.WithContext(ctx).
		Model(&domain.AccessToken{}).
		Where("aspirante_id = ? AND revocado_en IS NULL", applicantID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// InsertIfCodeFree inserts t unless its code is already taken. It reports
// whether the row was written.
func (ts *TokenStore) InsertIfCodeFree(ctx context.Context, t *domain.AccessToken) (bool, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	tx := ts.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "codigo"}},
			DoNothing: true,
		}).
		Create(t)
	return tx.RowsAffected > 0, tx.Error
}

func (ts *TokenStore) RevokeAllForApplicant(ctx context.Context, applicantID uuid.UUID, at time.Time) (int64, error) {
	tx := ts.db.WithContext(ctx).
		Model(&domain.AccessToken{}).
		Where("aspirante_id = ? AND revocado_en IS NULL", applicantID).
		Update("revocado_en", at)
	return tx.RowsAffected, tx.Error
}

// ListActiveByCampaign returns the non-revoked tokens of a campaign's
// applicants.
func (ts *TokenStore) ListActiveByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.AccessToken, error) {
	var out []domain.AccessToken
	err := ts.db.WithContext(ctx).
		Where("revocado_en IS NULL AND aspirante_id IN (?)",
			ts.db.WithContext(ctx).Model(&domain.Applicant{}).Select("id").Where("convocatoria_id = ?", campaignID)).
		Order("creado_en ASC, id ASC").
		Find(&out).Error
	return out, err
}
