package impl

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"prioritizacion/internal/domain"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func TestExportCampaign(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	camp := seedCampaign(t, st, func(c *domain.Campaign) { c.Code = "CONV-EXPORT" })
	ana := seedApplicant(t, st, camp.ID, "ana@example.com")
	joan := seedApplicant(t, st, camp.ID, "joan@example.com")
	p1 := seedPosition(t, st, camp.ID, "B1", "P1")
	p2 := seedPosition(t, st, camp.ID, "B1", "P2")
	p3 := seedPosition(t, st, camp.ID, "B1", "P3")
	for i, p := range []*domain.Position{p1, p2, p3} {
		seedLink(t, st, ana.ID, p.ID, i+1)
	}
	seedLink(t, st, joan.ID, p1.ID, 1)
	seedToken(t, st, ana.ID, "AUTO-AAAAAAAA", nil)
	seedToken(t, st, joan.ID, "AUTO-BBBBBBBB", func(tok *domain.AccessToken) { tok.RevokedAt = ptr(fixedNow) })

	ranking := &RankingServiceImpl{Store: st, Now: clock}
	if err := ranking.Save(ctx, ana.ID, []uuid.UUID{p3.ID, p1.ID}); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := NewExportService(st).Export(ctx, camp.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != SheetPrioritization || sheets[1] != SheetTokens {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(SheetPrioritization)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// header + ana's two visible choices + joan's one
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "convocatoria" || rows[0][7] != "orden" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "CONV-EXPORT" || rows[1][2] != "ana@example.com" || rows[1][5] != "P3" || rows[1][7] != "1" {
		t.Fatalf("unexpected first ranking row %v", rows[1])
	}
	if rows[2][5] != "P1" || rows[2][7] != "2" {
		t.Fatalf("unexpected second ranking row %v", rows[2])
	}
	if rows[3][2] != "joan@example.com" || rows[3][7] != "1" {
		t.Fatalf("unexpected joan row %v", rows[3])
	}

	tokens, err := f.GetRows(SheetTokens)
	if err != nil {
		t.Fatalf("token rows: %v", err)
	}
	if len(tokens) != 2 || tokens[1][0] != "ana@example.com" || tokens[1][2] != "AUTO-AAAAAAAA" {
		t.Fatalf("expected only the active token, got %v", tokens)
	}
}

func TestExportUnknownCampaign(t *testing.T) {
	st := setupStore(t)
	if _, err := NewExportService(st).Export(context.Background(), uuid.New()); !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}
