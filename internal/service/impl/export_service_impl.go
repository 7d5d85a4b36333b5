package impl

import (
	"context"
	"errors"
	"time"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/spreadsheet"
	"prioritizacion/internal/store"

	"github.com/google/uuid"
)

const (
	SheetPrioritization = "Prioritization"
	SheetTokens         = "Tokens"
	exportTimeLayout    = "2006-01-02 15:04:05"
)

type ExportServiceImpl struct {
	Store *store.Store
}

func NewExportService(st *store.Store) *ExportServiceImpl {
	return &ExportServiceImpl{Store: st}
}

func (s *ExportServiceImpl) Export(ctx context.Context, campaignID uuid.UUID) ([]byte, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	c, err := s.Store.Campaigns().Get(ctx, campaignID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}

	ranking, err := s.Store.Links().ListCampaignRanking(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	applicants, err := s.Store.Applicants().ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.Store.Tokens().ListActiveByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	// rankings are renumbered 1..N per applicant, as applicants see them
	rankRows := make([][]any, 0, len(ranking))
	var (
		current uuid.UUID
		order   int
	)
	for _, r := range ranking {
		if r.ApplicantID != current {
			current, order = r.ApplicantID, 0
		}
		order++
		rankRows = append(rankRows, []any{
			c.Code, deref(r.NationalID), r.Email, deref(r.Name),
			r.Base, r.Code, deref(r.Centre), order, formatTime(r.SubmittedAt),
		})
	}

	byID := make(map[uuid.UUID]domain.Applicant, len(applicants))
	for _, a := range applicants {
		byID[a.ID] = a
	}
	tokenRows := make([][]any, 0, len(tokens))
	for _, t := range tokens {
		a := byID[t.ApplicantID]
		tokenRows = append(tokenRows, []any{
			a.Email, deref(a.NationalID), t.Code, formatTime(&t.ExpiresAt), t.FailedAttempts,
		})
	}

	w := spreadsheet.NewWriter()
	if err := w.AddSheet(SheetPrioritization,
		[]string{"convocatoria", "dni_nie", "email", "nombre_completo", "base", "posicion", "centro", "orden", "enviado_en"},
		rankRows); err != nil {
		return nil, err
	}
	if err := w.AddSheet(SheetTokens,
		[]string{"email", "dni_nie", "codigo", "expira_en", "intentos_fallidos"},
		tokenRows); err != nil {
		return nil, err
	}
	out, err := w.Bytes()
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("campaign exported", "campaign_id", campaignID,
		"ranking_rows", len(rankRows), "tokens", len(tokenRows))
	return out, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}
