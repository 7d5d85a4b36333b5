package store

import (
	"context"
	"time"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicantStore struct{ db *gorm.DB }

func (s *Store) Applicants() *ApplicantStore { return &ApplicantStore{db: s.DB} }

// ApplicantPatch carries imported values. Nil fields leave the stored value
// untouched.
type ApplicantPatch struct {
	Email            *string
	Name             *string
	NationalID       *string
	EmployeeNumber   *int
	MaskedNationalID *string
	FirstSurname     *string
	SecondSurname    *string
	GivenName        *string
}

func (p ApplicantPatch) assignments() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("email", p.Email)
	set("nombre", p.Name)
	set("dni_nie", p.NationalID)
	set("dni_nie_emmascarat", p.MaskedNationalID)
	set("primer_cognom", p.FirstSurname)
	set("segon_cognom", p.SecondSurname)
	set("nom", p.GivenName)
	if p.EmployeeNumber != nil {
		out["num_empleat"] = *p.EmployeeNumber
	}
	return out
}

func (as *ApplicantStore) Get(ctx context.Context, id uuid.UUID) (*domain.Applicant, error) {
	var a domain.Applicant
	if err := as.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// GetForUpdate locks the applicant row for the rest of the transaction so
// concurrent ranking operations on the same applicant serialize.
func (as *ApplicantStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Applicant, error) {
	var a domain.Applicant
	err := as.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (as *ApplicantStore) FindByNationalID(ctx context.Context, campaignID uuid.UUID, nationalID string) (*domain.Applicant, error) {
	var a domain.Applicant
	err := as.db.WithContext(ctx).
		Where("convocatoria_id = ? AND dni_nie = ?", campaignID, nationalID).
		Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (as *ApplicantStore) FindByEmail(ctx context.Context, campaignID uuid.UUID, email string) (*domain.Applicant, error) {
	var a domain.Applicant
	err := as.db.WithContext(ctx).
		Where("convocatoria_id = ? AND lower(email) = ?", campaignID, email).
		Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (as *ApplicantStore) Create(ctx context.Context, a *domain.Applicant) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return translate(as.db.WithContext(ctx).Create(a).Error)
}

func (as *ApplicantStore) Backfill(ctx context.Context, id uuid.UUID, patch ApplicantPatch) error {
	values := patch.assignments()
	if len(values) == 0 {
		return nil
	}
	return as.db.WithContext(ctx).
		Model(&domain.Applicant{}).
		Where("id = ?", id).
		Updates(values).Error
}

// MarkSubmitted stamps the submission time only if it was still empty. Zero
// affected rows means someone else submitted first.
func (as *ApplicantStore) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	tx := as.db.WithContext(ctx).
		Model(&domain.Applicant{}).
		Where("id = ? AND enviado_en IS NULL", id).
		Update("enviado_en", at)
	return tx.RowsAffected, tx.Error
}

func (as *ApplicantStore) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Applicant, error) {
	var out []domain.Applicant
	err := as.db.WithContext(ctx).
		Where("convocatoria_id = ?", campaignID).
		Order("email ASC, id ASC").
		Find(&out).Error
	return out, err
}
