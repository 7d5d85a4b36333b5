package impl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/observability/metrics"
	"prioritizacion/internal/spreadsheet"
	"prioritizacion/internal/store"

	"github.com/google/uuid"
)

// MaxImportRows caps the non-blank data rows of one workbook.
const MaxImportRows = 5000

type ImportServiceImpl struct {
	Store   *store.Store
	Tokens  *TokenIssuer
	MaxRows int
}

func NewImportService(st *store.Store, tokens *TokenIssuer) *ImportServiceImpl {
	if tokens == nil {
		tokens = NewTokenIssuer(DefaultTokenTTL)
	}
	return &ImportServiceImpl{Store: st, Tokens: tokens, MaxRows: MaxImportRows}
}

func (s *ImportServiceImpl) Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResult, error) {
	log := logging.FromContext(ctx).With("file", req.FileName)

	res, err := s.run(ctx, req)
	switch {
	case err != nil:
		metrics.ImportsTotal.WithLabelValues(metrics.ResultError).Inc()
		if ctx.Err() != nil {
			log.Warn("import cancelled", "error", err)
		} else {
			log.Error("import failed", "error", err)
		}
		return nil, err
	case !res.Success:
		metrics.ImportsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		log.Info("import rejected", "reason", res.Message)
	default:
		metrics.ImportsTotal.WithLabelValues(metrics.ResultOK).Inc()
		metrics.ImportRowsTotal.WithLabelValues().Add(float64(res.Rows))
		log.Info("import finished",
			"rows", res.Rows,
			"new_applicants", res.NewApplicants,
			"new_positions", res.NewPositions,
			"links_created", res.LinksCreated,
			"links_updated", res.LinksUpdated,
			"tokens_created", res.TokensCreated,
		)
	}
	return res, nil
}

func (s *ImportServiceImpl) run(ctx context.Context, req dto.ImportRequest) (*dto.ImportResult, error) {
	if s.Store == nil {
		return nil, ErrNilStore
	}
	maxRows := s.MaxRows
	if maxRows <= 0 {
		maxRows = MaxImportRows
	}
	tokens := s.Tokens
	if tokens == nil {
		tokens = NewTokenIssuer(DefaultTokenTTL)
	}

	// 1) structural checks, before touching the database
	if len(req.Data) == 0 {
		return rejected("select a valid Excel file"), nil
	}
	if !spreadsheet.IsSpreadsheetContentType(req.ContentType) || !spreadsheet.HasSpreadsheetExtension(req.FileName) {
		return rejected("the file must be a valid Excel workbook"), nil
	}
	sheet, err := spreadsheet.ReadFirstSheet(bytes.NewReader(req.Data))
	switch {
	case errors.Is(err, spreadsheet.ErrNoSheet):
		return rejected("no sheet found in the workbook"), nil
	case errors.Is(err, spreadsheet.ErrInvalidWorkbook):
		return rejected("the file must be a valid Excel workbook"), nil
	case err != nil:
		return nil, err
	}

	var defaultCampaign *uuid.UUID
	if req.DefaultCampaignID != nil && *req.DefaultCampaignID != uuid.Nil {
		defaultCampaign = req.DefaultCampaignID
	}

	// 2) header mapping
	cols := spreadsheet.MapHeaders(sheet.Header())
	if missing := cols.Missing(defaultCampaign != nil); len(missing) > 0 {
		return rejected(fmt.Sprintf("missing required columns in the workbook: %s.", strings.Join(missing, ", "))), nil
	}

	// 3) rows, all or nothing
	var res dto.ImportResult
	err = s.Store.WithTx(ctx, func(tx *store.Store) error {
		r := &reconciler{
			tx:              tx,
			tokens:          tokens,
			maxRows:         maxRows,
			defaultCampaign: defaultCampaign,
			campaigns:       map[uuid.UUID]bool{},
			applicants:      map[string]uuid.UUID{},
			positions:       map[string]uuid.UUID{},
			tokenChecked:    map[uuid.UUID]struct{}{},
			res:             &res,
		}
		for _, row := range sheet.DataRows(cols) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.apply(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if rej, ok := domain.AsRejection(err); ok {
		return rejected(rej.Reason), nil
	}
	if err != nil {
		return nil, err
	}

	res.Success = true
	res.Message = fmt.Sprintf("Imported %d rows. New applicants: %d. New positions: %d. Links created: %d, updated: %d. Tokens created: %d.",
		res.Rows, res.NewApplicants, res.NewPositions, res.LinksCreated, res.LinksUpdated, res.TokensCreated)
	return &res, nil
}

func rejected(msg string) *dto.ImportResult {
	return &dto.ImportResult{Success: false, Message: msg}
}

func rowRejection(row spreadsheet.Row, format string) error {
	return &domain.Rejection{Reason: fmt.Sprintf(format, row.Number)}
}

// reconciler carries the lookup caches of a single import call.
type reconciler struct {
	tx              *store.Store
	tokens          *TokenIssuer
	maxRows         int
	defaultCampaign *uuid.UUID

	campaigns    map[uuid.UUID]bool
	applicants   map[string]uuid.UUID
	positions    map[string]uuid.UUID
	tokenChecked map[uuid.UUID]struct{}

	res *dto.ImportResult
}

func (r *reconciler) apply(ctx context.Context, row spreadsheet.Row) error {
	if row.Blank() {
		return nil
	}
	r.res.Rows++
	if r.res.Rows > r.maxRows {
		return &domain.Rejection{Reason: fmt.Sprintf("the workbook exceeds the limit of %d rows", r.maxRows)}
	}

	// a row's own campaign column wins over the caller's default
	campaignID := row.UUID(spreadsheet.ColCampaignID)
	if campaignID == nil {
		campaignID = r.defaultCampaign
	}
	if campaignID == nil {
		return &domain.Rejection{Reason: "no campaign found in the workbook and none was selected"}
	}
	if err := r.requireCampaign(ctx, *campaignID); err != nil {
		return err
	}

	nationalID := row.String(spreadsheet.ColNationalID)
	email := row.String(spreadsheet.ColEmail)
	if email != nil {
		lower := strings.ToLower(*email)
		email = &lower
	}
	if nationalID == nil && email == nil {
		return rowRejection(row, "row %d has neither DNI/NIE nor email")
	}
	if nationalID != nil && !validNationalID(*nationalID) {
		return rowRejection(row, "row %d has an invalid DNI/NIE")
	}
	if email != nil && !validEmail(*email) {
		return rowRejection(row, "row %d has an invalid email")
	}

	base := row.String(spreadsheet.ColBase)
	code := row.String(spreadsheet.ColPosition)
	if base == nil || code == nil {
		return rowRejection(row, "row %d has no base or position")
	}

	applicantID, err := r.applicant(ctx, *campaignID, nationalID, email, row)
	if err != nil {
		return err
	}
	positionID, err := r.position(ctx, *campaignID, *base, *code, row)
	if err != nil {
		return err
	}

	order := r.res.Rows
	if n := row.Int(spreadsheet.ColOrder); n != nil {
		order = *n
	}
	link := &domain.Link{
		ApplicantID:        applicantID,
		PositionID:         positionID,
		DefaultOrder:       order,
		Experience:         row.Decimal(spreadsheet.ColExperience),
		PersonalScale:      row.Decimal(spreadsheet.ColPersonalScale),
		Qualification:      row.Decimal(spreadsheet.ColQualification),
		Total:              row.Decimal(spreadsheet.ColTotal),
		ApplicantFile:      row.String(spreadsheet.ColApplicantFile),
		WeightedExperience: row.Decimal(spreadsheet.ColWeightedExp),
		WeightedScale:      row.Decimal(spreadsheet.ColWeightedScale),
		CompetencyTest:     row.Decimal(spreadsheet.ColCompetencyTest),
		WeightedTest:       row.Decimal(spreadsheet.ColWeightedTest),
	}
	created, err := r.tx.Links().Upsert(ctx, link)
	if err != nil {
		return err
	}
	if created {
		r.res.LinksCreated++
	} else {
		r.res.LinksUpdated++
	}

	if _, done := r.tokenChecked[applicantID]; !done {
		r.tokenChecked[applicantID] = struct{}{}
		issued, err := r.tokens.Ensure(ctx, r.tx, applicantID)
		if err != nil {
			return err
		}
		if issued {
			r.res.TokensCreated++
		}
	}
	return nil
}

func (r *reconciler) requireCampaign(ctx context.Context, id uuid.UUID) error {
	if ok, seen := r.campaigns[id]; seen {
		if !ok {
			return &domain.Rejection{Reason: fmt.Sprintf("campaign %s does not exist", id)}
		}
		return nil
	}
	_, err := r.tx.Campaigns().Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		r.campaigns[id] = false
		return &domain.Rejection{Reason: fmt.Sprintf("campaign %s does not exist", id)}
	case err != nil:
		return err
	}
	r.campaigns[id] = true
	return nil
}

// applicant finds the applicant by national id, else by email, backfilling
// any non-empty fields of row; a miss creates it. Only the first row of a
// given applicant in the file touches the database.
func (r *reconciler) applicant(ctx context.Context, campaignID uuid.UUID, nationalID, email *string, row spreadsheet.Row) (uuid.UUID, error) {
	key := campaignID.String() + "|"
	if nationalID != nil {
		key += strings.ToUpper(*nationalID)
	} else {
		key += *email
	}
	if id, ok := r.applicants[key]; ok {
		return id, nil
	}

	var (
		existing *domain.Applicant
		err      error
	)
	if nationalID != nil {
		existing, err = r.tx.Applicants().FindByNationalID(ctx, campaignID, *nationalID)
	} else {
		existing, err = r.tx.Applicants().FindByEmail(ctx, campaignID, *email)
	}
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	patch := store.ApplicantPatch{
		Email:            email,
		Name:             fullName(row),
		NationalID:       nationalID,
		EmployeeNumber:   row.Int(spreadsheet.ColEmployeeNumber),
		MaskedNationalID: row.String(spreadsheet.ColMaskedNationalID),
		FirstSurname:     row.String(spreadsheet.ColFirstSurname),
		SecondSurname:    row.String(spreadsheet.ColSecondSurname),
		GivenName:        row.String(spreadsheet.ColGivenName),
	}

	if existing != nil {
		if err := r.tx.Applicants().Backfill(ctx, existing.ID, patch); err != nil {
			return uuid.Nil, err
		}
		r.applicants[key] = existing.ID
		return existing.ID, nil
	}

	a := &domain.Applicant{
		ID:               uuid.New(),
		CampaignID:       campaignID,
		Email:            deref(email),
		Name:             patch.Name,
		NationalID:       nationalID,
		EmployeeNumber:   patch.EmployeeNumber,
		MaskedNationalID: patch.MaskedNationalID,
		FirstSurname:     patch.FirstSurname,
		SecondSurname:    patch.SecondSurname,
		GivenName:        patch.GivenName,
	}
	if err := r.tx.Applicants().Create(ctx, a); err != nil {
		return uuid.Nil, err
	}
	r.res.NewApplicants++
	r.applicants[key] = a.ID
	return a.ID, nil
}

func (r *reconciler) position(ctx context.Context, campaignID uuid.UUID, base, code string, row spreadsheet.Row) (uuid.UUID, error) {
	key := campaignID.String() + "|" + base + "|" + code
	if id, ok := r.positions[key]; ok {
		return id, nil
	}
	p := &domain.Position{
		CampaignID:     campaignID,
		Base:           base,
		Code:           code,
		Hours:          row.String(spreadsheet.ColHours),
		Shift:          row.String(spreadsheet.ColShift),
		AllocationCode: row.String(spreadsheet.ColAllocationCode),
		Centre:         row.String(spreadsheet.ColCentre),
		Description:    row.String(spreadsheet.ColDescription),
	}
	created, err := r.tx.Positions().Upsert(ctx, p)
	if err != nil {
		return uuid.Nil, err
	}
	if created {
		r.res.NewPositions++
	}
	r.positions[key] = p.ID
	return p.ID, nil
}

// fullName joins given name and surnames, skipping blanks.
func fullName(row spreadsheet.Row) *string {
	var parts []string
	for _, key := range []string{spreadsheet.ColGivenName, spreadsheet.ColFirstSurname, spreadsheet.ColSecondSurname} {
		if v := row.String(key); v != nil {
			parts = append(parts, *v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " ")
	return &name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
