package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/store"

	"github.com/google/uuid"
)

const autoCodeAttempts = 3

type CampaignServiceImpl struct {
	Store *store.Store
	Now   func() time.Time
	// NewCode generates codes in auto-code mode.
	NewCode func(now time.Time) string
}

func NewCampaignService(st *store.Store) *CampaignServiceImpl {
	return &CampaignServiceImpl{Store: st, Now: utcNow, NewCode: generateCampaignCode}
}

// generateCampaignCode returns CONV-<yyyymmddhhmmss>-<4 hex>.
func generateCampaignCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("CONV-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

func (s *CampaignServiceImpl) List(ctx context.Context) ([]domain.Campaign, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	return s.Store.Campaigns().List(ctx)
}

func (s *CampaignServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	c, err := s.Store.Campaigns().Get(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrCampaignNotFound
	}
	return c, err
}

func (s *CampaignServiceImpl) Create(ctx context.Context, in dto.CampaignInput) (*domain.Campaign, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	attempts := 1
	if in.AutoCode {
		attempts = autoCodeAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		var c *domain.Campaign
		c, err = s.build(in, "")
		if err != nil {
			return nil, err
		}
		err = s.Store.Campaigns().Create(ctx, c)
		if err == nil {
			logging.FromContext(ctx).Info("campaign created", "campaign_id", c.ID, "code", c.Code, "auto_code", in.AutoCode)
			return c, nil
		}
		if !store.IsDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, domain.ErrCampaignCodeTaken
}

// Update overwrites every editable field. In auto-code mode the stored code
// is kept.
func (s *CampaignServiceImpl) Update(ctx context.Context, id uuid.UUID, in dto.CampaignInput) (*domain.Campaign, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	current, err := s.Store.Campaigns().Get(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}

	c, err := s.build(in, current.Code)
	if err != nil {
		return nil, err
	}
	c.ID = current.ID
	c.CreatedAt = current.CreatedAt

	err = s.Store.Campaigns().Update(ctx, c)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return nil, domain.ErrCampaignNotFound
	case store.IsDuplicateKey(err):
		return nil, domain.ErrCampaignCodeTaken
	case err != nil:
		return nil, err
	}
	logging.FromContext(ctx).Info("campaign updated", "campaign_id", c.ID, "code", c.Code)
	return c, nil
}

func (s *CampaignServiceImpl) Delete(ctx context.Context, id uuid.UUID) (map[string]int64, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	var counts map[string]int64
	err := s.Store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		counts, err = tx.DeleteCampaign(ctx, id)
		return err
	})
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("campaign deleted", "campaign_id", id,
		"tokens", counts["tokens"], "links", counts["links"],
		"applicants", counts["applicants"], "positions", counts["positions"])
	return counts, nil
}

// build validates in and turns it into a campaign. existingCode is used
// instead of a generated one when editing in auto-code mode.
func (s *CampaignServiceImpl) build(in dto.CampaignInput, existingCode string) (*domain.Campaign, error) {
	c := &domain.Campaign{
		Code:       strings.TrimSpace(in.Code),
		Name:       strings.TrimSpace(in.Name),
		StartDate:  utcPtr(in.StartDate),
		EndDate:    utcPtr(in.EndDate),
		Active:     in.Active,
		AccessFrom: utcPtr(in.AccessFrom),
		AccessTo:   utcPtr(in.AccessTo),
	}
	if in.AutoCode {
		c.Code = existingCode
		if c.Code == "" {
			c.Code = s.NewCode(s.Now())
		}
		c.Active = true
		c.AccessFrom = c.StartDate
		c.AccessTo = c.EndDate
	}

	if c.Code == "" {
		return nil, domain.ErrCampaignCodeRequired
	}
	if c.Name == "" {
		return nil, domain.ErrCampaignNameRequired
	}
	if err := validate.Struct(in); err != nil {
		return nil, &domain.Rejection{Reason: "invalid campaign: " + err.Error()}
	}
	if c.AccessFrom != nil && c.AccessTo != nil && c.AccessTo.Before(*c.AccessFrom) {
		return nil, domain.ErrInvalidAccessWindow
	}
	return c, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
