package impl

import (
	"context"
	"testing"
	"time"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/store"
	pkgdb "prioritizacion/pkg/db"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fixedNow is the clock every service test runs at.
var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), pkgdb.GormConfig(pkgdb.Config{}))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := pkgdb.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return store.New(db)
}

func ptr[T any](v T) *T { return &v }

func seedCampaign(t *testing.T, st *store.Store, mutate func(c *domain.Campaign)) *domain.Campaign {
	t.Helper()
	c := &domain.Campaign{
		Code:       "C-" + uuid.NewString()[:8],
		Name:       "Test campaign",
		Active:     true,
		AccessFrom: ptr(fixedNow.Add(-24 * time.Hour)),
		AccessTo:   ptr(fixedNow.Add(24 * time.Hour)),
	}
	if mutate != nil {
		mutate(c)
	}
	if err := st.Campaigns().Create(context.Background(), c); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return c
}

func seedApplicant(t *testing.T, st *store.Store, campaignID uuid.UUID, email string) *domain.Applicant {
	t.Helper()
	a := &domain.Applicant{CampaignID: campaignID, Email: email}
	if err := st.Applicants().Create(context.Background(), a); err != nil {
		t.Fatalf("create applicant: %v", err)
	}
	return a
}

func seedPosition(t *testing.T, st *store.Store, campaignID uuid.UUID, base, code string) *domain.Position {
	t.Helper()
	p := &domain.Position{CampaignID: campaignID, Base: base, Code: code}
	if _, err := st.Positions().Upsert(context.Background(), p); err != nil {
		t.Fatalf("upsert position: %v", err)
	}
	return p
}

func seedLink(t *testing.T, st *store.Store, applicantID, positionID uuid.UUID, order int) {
	t.Helper()
	l := &domain.Link{ApplicantID: applicantID, PositionID: positionID, DefaultOrder: order}
	if _, err := st.Links().Upsert(context.Background(), l); err != nil {
		t.Fatalf("upsert link: %v", err)
	}
}

func seedToken(t *testing.T, st *store.Store, applicantID uuid.UUID, code string, mutate func(tok *domain.AccessToken)) *domain.AccessToken {
	t.Helper()
	tok := &domain.AccessToken{
		ApplicantID: applicantID,
		Code:        code,
		ExpiresAt:   fixedNow.Add(24 * time.Hour),
	}
	if mutate != nil {
		mutate(tok)
	}
	ok, err := st.Tokens().InsertIfCodeFree(context.Background(), tok)
	if err != nil || !ok {
		t.Fatalf("insert token: ok=%v err=%v", ok, err)
	}
	return tok
}

func linksByPosition(t *testing.T, st *store.Store, applicantID uuid.UUID) map[uuid.UUID]domain.Link {
	t.Helper()
	links, err := st.Links().ListByApplicant(context.Background(), applicantID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	out := make(map[uuid.UUID]domain.Link, len(links))
	for _, l := range links {
		out[l.PositionID] = l
	}
	return out
}

func count(t *testing.T, st *store.Store, model any) int64 {
	t.Helper()
	var n int64
	if err := st.DB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
