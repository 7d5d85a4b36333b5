package impl

import (
	"context"
	"errors"
	"time"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/observability/metrics"
	"prioritizacion/internal/store"

	"github.com/google/uuid"
)

type RankingServiceImpl struct {
	Store *store.Store
	Now   func() time.Time
}

func NewRankingService(st *store.Store) *RankingServiceImpl {
	return &RankingServiceImpl{Store: st, Now: utcNow}
}

func (s *RankingServiceImpl) List(ctx context.Context, applicantID uuid.UUID) ([]dto.RankingItem, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	links, err := s.Store.Links().ListVisible(ctx, applicantID)
	s.observe(ctx, "list", applicantID, err)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RankingItem, len(links))
	for i, l := range links {
		p := domain.Position{Base: l.Base, Code: l.Code}
		items[i] = dto.RankingItem{
			PositionID:  l.PositionID,
			Base:        l.Base,
			Position:    l.Code,
			Centre:      l.Centre,
			Description: l.Description,
			Title:       p.Title(),
			Order:       i + 1,
		}
	}
	return items, nil
}

// Save blocks every link missing from positionIDs, then ranks the listed ones
// 1..N in the given order. Repeated ids keep their first position.
func (s *RankingServiceImpl) Save(ctx context.Context, applicantID uuid.UUID, positionIDs []uuid.UUID) error {
	err := s.save(ctx, applicantID, positionIDs)
	s.observe(ctx, "save", applicantID, err)
	return err
}

func (s *RankingServiceImpl) save(ctx context.Context, applicantID uuid.UUID, positionIDs []uuid.UUID) error {
	if s.Store == nil {
		return ErrNilStore
	}
	ids := dedupe(positionIDs)
	if len(ids) == 0 {
		return domain.ErrNothingToSave
	}

	return s.Store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := s.requireOpen(ctx, tx, applicantID, domain.ErrSaveClosed); err != nil {
			return err
		}
		links := tx.Links()
		if _, err := links.BlockAllExcept(ctx, applicantID, ids); err != nil {
			return err
		}
		for i, id := range ids {
			if _, err := links.SetUserOrder(ctx, applicantID, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset drops the applicant's choices and re-ranks every position of the
// campaign canonically, creating links that are missing.
func (s *RankingServiceImpl) Reset(ctx context.Context, applicantID uuid.UUID) error {
	err := s.reset(ctx, applicantID)
	s.observe(ctx, "reset", applicantID, err)
	return err
}

func (s *RankingServiceImpl) reset(ctx context.Context, applicantID uuid.UUID) error {
	if s.Store == nil {
		return ErrNilStore
	}
	return s.Store.WithTx(ctx, func(tx *store.Store) error {
		a, err := s.requireOpen(ctx, tx, applicantID, domain.ErrResetClosed)
		if err != nil {
			return err
		}
		if _, err := tx.Links().ClearUserOrders(ctx, applicantID); err != nil {
			return err
		}
		positions, err := tx.Positions().ListByCampaign(ctx, a.CampaignID)
		if err != nil {
			return err
		}
		for i, p := range positions {
			if err := tx.Links().ResetDefault(ctx, applicantID, p.ID, i+1); err != nil {
				return err
			}
		}
		return nil
	})
}

// Submit is terminal: it stamps the submission once and revokes every code.
func (s *RankingServiceImpl) Submit(ctx context.Context, applicantID uuid.UUID) error {
	err := s.submit(ctx, applicantID)
	s.observe(ctx, "submit", applicantID, err)
	return err
}

func (s *RankingServiceImpl) submit(ctx context.Context, applicantID uuid.UUID) error {
	if s.Store == nil {
		return ErrNilStore
	}
	return s.Store.WithTx(ctx, func(tx *store.Store) error {
		if _, err := s.requireOpen(ctx, tx, applicantID, domain.ErrSubmitClosed); err != nil {
			return err
		}
		now := s.Now()
		n, err := tx.Applicants().MarkSubmitted(ctx, applicantID, now)
		if err != nil {
			return err
		}
		if n != 1 {
			return domain.ErrDuplicateSubmission
		}
		revoked, err := tx.Tokens().RevokeAllForApplicant(ctx, applicantID, now)
		if err != nil {
			return err
		}
		logging.FromContext(ctx).Info("ranking submitted", "applicant_id", applicantID, "tokens_revoked", revoked)
		return nil
	})
}

// requireOpen locks the applicant row and checks that it has not submitted
// and that its campaign is open now. Any miss is reported as closed.
func (s *RankingServiceImpl) requireOpen(ctx context.Context, tx *store.Store, applicantID uuid.UUID, closed error) (*domain.Applicant, error) {
	a, err := tx.Applicants().GetForUpdate(ctx, applicantID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, closed
	}
	if err != nil {
		return nil, err
	}
	if a.Submitted() {
		return nil, closed
	}
	c, err := tx.Campaigns().Get(ctx, a.CampaignID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, closed
	}
	if err != nil {
		return nil, err
	}
	if !c.IsOpenAt(s.Now()) {
		return nil, closed
	}
	return a, nil
}

func (s *RankingServiceImpl) observe(ctx context.Context, op string, applicantID uuid.UUID, err error) {
	log := logging.FromContext(ctx)
	result := metrics.ResultOK
	switch {
	case err == nil:
	case domain.IsRejection(err):
		result = metrics.ResultRejected
		log.Info("ranking operation rejected", "operation", op, "applicant_id", applicantID, "reason", err.Error())
	default:
		result = metrics.ResultError
		log.Error("ranking operation failed", "operation", op, "applicant_id", applicantID, "error", err)
	}
	metrics.RankingOperationsTotal.WithLabelValues(op, result).Inc()
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
