package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"prioritizacion/internal/domain"
	"prioritizacion/internal/dto"
	"prioritizacion/internal/jwtsigner"
	"prioritizacion/internal/spreadsheet"

	"github.com/google/uuid"
)

type fakeVerifier struct {
	id  uuid.UUID
	err error
}

func (f *fakeVerifier) Verify(context.Context, string, string) (uuid.UUID, error) {
	return f.id, f.err
}

type fakeRanking struct {
	items     []dto.RankingItem
	saveErr   error
	submitErr error
	calls     []string
	saved     []uuid.UUID
	applicant uuid.UUID
}

func (f *fakeRanking) List(_ context.Context, id uuid.UUID) ([]dto.RankingItem, error) {
	f.applicant = id
	f.calls = append(f.calls, "list")
	return f.items, nil
}

func (f *fakeRanking) Save(_ context.Context, id uuid.UUID, ids []uuid.UUID) error {
	f.calls = append(f.calls, "save")
	f.saved = ids
	return f.saveErr
}

func (f *fakeRanking) Reset(context.Context, uuid.UUID) error {
	f.calls = append(f.calls, "reset")
	return nil
}

func (f *fakeRanking) Submit(context.Context, uuid.UUID) error {
	f.calls = append(f.calls, "submit")
	return f.submitErr
}

type fakeCampaigns struct {
	listErr  error
	deadline time.Time
}

func (f *fakeCampaigns) List(ctx context.Context) ([]domain.Campaign, error) {
	f.deadline, _ = ctx.Deadline()
	return []domain.Campaign{{ID: uuid.New(), Code: "C1", Name: "one"}}, f.listErr
}

func (f *fakeCampaigns) Get(context.Context, uuid.UUID) (*domain.Campaign, error) {
	return nil, domain.ErrCampaignNotFound
}

func (f *fakeCampaigns) Create(_ context.Context, in dto.CampaignInput) (*domain.Campaign, error) {
	if in.Code == "DUP" {
		return nil, domain.ErrCampaignCodeTaken
	}
	return &domain.Campaign{ID: uuid.New(), Code: in.Code, Name: in.Name}, nil
}

func (f *fakeCampaigns) Update(_ context.Context, id uuid.UUID, in dto.CampaignInput) (*domain.Campaign, error) {
	return &domain.Campaign{ID: id, Code: in.Code, Name: in.Name}, nil
}

func (f *fakeCampaigns) Delete(context.Context, uuid.UUID) (map[string]int64, error) {
	return nil, domain.ErrCampaignNotFound
}

type fakeImports struct {
	got      dto.ImportRequest
	deadline time.Time
}

func (f *fakeImports) Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResult, error) {
	f.got = req
	f.deadline, _ = ctx.Deadline()
	if len(req.Data) == 0 {
		return &dto.ImportResult{Message: "select a valid Excel file"}, nil
	}
	return &dto.ImportResult{Success: true, Message: "ok", Rows: 1}, nil
}

type fakeExports struct{}

func (fakeExports) Export(_ context.Context, id uuid.UUID) ([]byte, error) {
	return []byte("xlsx-bytes"), nil
}

type fakeAdmin struct{ password string }

func (f fakeAdmin) Enabled() bool { return f.password != "" }

func (f fakeAdmin) Authenticate(p string) error {
	switch {
	case !f.Enabled():
		return domain.ErrAdminNotConfigured
	case p != f.password:
		return domain.ErrAdminWrongPassword
	}
	return nil
}

type harness struct {
	handler   http.Handler
	sessions  *Sessions
	verifier  *fakeVerifier
	ranking   *fakeRanking
	campaigns *fakeCampaigns
	imports   *fakeImports
	applicant uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	signer, err := jwtsigner.New("test-secret", "prioritizacion")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	h := &harness{
		sessions:  &Sessions{Signer: signer, ApplicantTTL: time.Hour, AdminTTL: time.Hour},
		applicant: uuid.New(),
		ranking:   &fakeRanking{},
		campaigns: &fakeCampaigns{},
		imports:   &fakeImports{},
	}
	h.verifier = &fakeVerifier{id: h.applicant}
	h.handler = NewRouter(Deps{
		Credentials: h.verifier,
		Ranking:     h.ranking,
		Campaigns:   h.campaigns,
		Imports:     h.imports,
		Exports:     fakeExports{},
		Admin:       fakeAdmin{password: "s3cret"},
		Sessions:    h.sessions,
	})
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.OK {
		t.Fatalf("error body reported ok")
	}
	return body.Error
}

func (h *harness) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/v1/auth/login", `{"email":"ana@example.com","code":"AUTO-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec, ApplicantCookie)
}

func TestHealthzCarriesSecurityHeaders(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rec.Code, rec.Body.String())
	}
	for _, hdr := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "X-Request-ID"} {
		if rec.Header().Get(hdr) == "" {
			t.Fatalf("missing header %s", hdr)
		}
	}
}

func TestRankingRequiresSession(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/v1/ranking", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(h.ranking.calls) != 0 {
		t.Fatalf("ranking must not be reached without identity: %v", h.ranking.calls)
	}

	bogus := &http.Cookie{Name: ApplicantCookie, Value: "not-a-token"}
	if rec := h.do(t, http.MethodGet, "/v1/ranking", "", bogus); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bogus cookie, got %d", rec.Code)
	}
}

func TestLoginThenList(t *testing.T) {
	h := newHarness(t)
	h.ranking.items = []dto.RankingItem{{PositionID: uuid.New(), Base: "B1", Position: "P1", Title: "B1-P1", Order: 1}}

	cookie := h.login(t)
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie flags %+v", cookie)
	}

	rec := h.do(t, http.MethodGet, "/v1/ranking", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("authenticated responses must not be cached")
	}
	var body dto.RankingResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || len(body.Items) != 1 || body.Items[0].Title != "B1-P1" {
		t.Fatalf("unexpected body %+v", body)
	}
	if h.ranking.applicant != h.applicant {
		t.Fatalf("session resolved to %s, want %s", h.ranking.applicant, h.applicant)
	}
}

func TestBearerTokenResolvesApplicant(t *testing.T) {
	h := newHarness(t)
	tok, err := h.sessions.Signer.Sign(h.applicant.String(), jwtsigner.ScopeApplicant, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/ranking", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", rec.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrCodeLocked, http.StatusLocked},
		{domain.ErrLoginRejected, http.StatusUnauthorized},
		{domain.ErrCredentialsRequired, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := newHarness(t)
		h.verifier.err = tc.err
		rec := h.do(t, http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","code":"x"}`)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		msg := decodeError(t, rec)
		if rej, ok := domain.AsRejection(tc.err); ok && msg != rej.Reason {
			t.Fatalf("expected reason %q, got %q", rej.Reason, msg)
		}
		if tc.status == http.StatusInternalServerError && msg != "internal error" {
			t.Fatalf("faults must not leak, got %q", msg)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("failed login must not set a cookie")
		}
	}
}

func TestSaveClosedIsForbidden(t *testing.T) {
	h := newHarness(t)
	h.ranking.saveErr = domain.ErrSaveClosed
	cookie := h.login(t)

	rec := h.do(t, http.MethodPut, "/v1/ranking", `{"positionIds":["`+uuid.NewString()+`"]}`, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != domain.ErrSaveClosed.Reason {
		t.Fatalf("unexpected reason %q", msg)
	}
}

func TestSubmitSavesThenEndsSession(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	payload, _ := json.Marshal(dto.SaveRankingRequest{PositionIDs: ids})

	rec := h.do(t, http.MethodPost, "/v1/ranking/submit", string(payload), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d %s", rec.Code, rec.Body.String())
	}
	if strings.Join(h.ranking.calls, ",") != "save,submit" || len(h.ranking.saved) != 2 {
		t.Fatalf("unexpected calls %v saved %v", h.ranking.calls, h.ranking.saved)
	}
	var body dto.OperationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || !body.SessionEnded {
		t.Fatalf("unexpected body %+v", body)
	}
	if c := sessionCookie(t, rec, ApplicantCookie); c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("session cookie should be cleared, got %+v", c)
	}
}

func TestSubmitWithoutBody(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)
	rec := h.do(t, http.MethodPost, "/v1/ranking/submit", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d", rec.Code)
	}
	if strings.Join(h.ranking.calls, ",") != "submit" {
		t.Fatalf("unexpected calls %v", h.ranking.calls)
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	h := newHarness(t)
	h.ranking.submitErr = domain.ErrDuplicateSubmission
	cookie := h.login(t)
	rec := h.do(t, http.MethodPost, "/v1/ranking/submit", "", cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == ApplicantCookie {
			t.Fatalf("failed submit must keep the session")
		}
	}
}

func (h *harness) adminLogin(t *testing.T) *http.Cookie {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/v1/admin/login", `{"password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: status %d", rec.Code)
	}
	return sessionCookie(t, rec, AdminCookie)
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(t, http.MethodGet, "/v1/admin/campaigns", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	// an applicant token carries the wrong scope
	applicant := h.login(t)
	forged := &http.Cookie{Name: AdminCookie, Value: applicant.Value}
	if rec := h.do(t, http.MethodGet, "/v1/admin/campaigns", "", forged); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for applicant scope, got %d", rec.Code)
	}

	if rec := h.do(t, http.MethodPost, "/v1/admin/login", `{"password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	admin := h.adminLogin(t)
	rec := h.do(t, http.MethodGet, "/v1/admin/campaigns", "", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("list campaigns: status %d", rec.Code)
	}
	var body dto.CampaignListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || len(body.Items) != 1 {
		t.Fatalf("unexpected list %+v err=%v", body, err)
	}
	if left := time.Until(h.campaigns.deadline); left <= 0 || left > time.Minute {
		t.Fatalf("campaign routes should carry the request timeout, %v left", left)
	}
}

func TestAdminCampaignErrors(t *testing.T) {
	h := newHarness(t)
	admin := h.adminLogin(t)

	if rec := h.do(t, http.MethodPost, "/v1/admin/campaigns", `{"code":"DUP","name":"x"}`, admin); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if rec := h.do(t, http.MethodPost, "/v1/admin/campaigns", `{"code":"NEW","name":"x"}`, admin); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := h.do(t, http.MethodDelete, "/v1/admin/campaigns/"+uuid.NewString(), "", admin); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := h.do(t, http.MethodPut, "/v1/admin/campaigns/not-a-uuid", `{}`, admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminImportUpload(t *testing.T) {
	h := newHarness(t)
	admin := h.adminLogin(t)
	campaign := uuid.New()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("campaignId", campaign.String()); err != nil {
		t.Fatalf("field: %v", err)
	}
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="plazas.xlsx"`},
		"Content-Type":        {spreadsheet.MIMEXLSX},
	})
	if err != nil {
		t.Fatalf("part: %v", err)
	}
	_, _ = part.Write([]byte("workbook"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(admin)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("import: status %d %s", rec.Code, rec.Body.String())
	}
	got := h.imports.got
	if got.FileName != "plazas.xlsx" || got.ContentType != spreadsheet.MIMEXLSX || string(got.Data) != "workbook" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.DefaultCampaignID == nil || *got.DefaultCampaignID != campaign {
		t.Fatalf("campaign id not forwarded: %v", got.DefaultCampaignID)
	}
	if left := time.Until(h.imports.deadline); left <= time.Minute {
		t.Fatalf("import should outlive the request timeout, %v left", left)
	}
}

func TestAdminImportWithoutFile(t *testing.T) {
	h := newHarness(t)
	admin := h.adminLogin(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("campaignId", "")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(admin)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var res dto.ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil || res.Message != "select a valid Excel file" {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}
}

func TestAdminExportDownload(t *testing.T) {
	h := newHarness(t)
	admin := h.adminLogin(t)
	rec := h.do(t, http.MethodGet, "/v1/admin/campaigns/"+uuid.NewString()+"/export", "", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != spreadsheet.MIMEXLSX {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Fatalf("expected attachment disposition")
	}
	if rec.Body.String() != "xlsx-bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestReadyzReportsStoreFailure(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready without a check, got %d", rec.Code)
	}

	signer, _ := jwtsigner.New("test-secret", "prioritizacion")
	handler := NewRouter(Deps{
		Sessions: &Sessions{Signer: signer},
		Ready:    func(context.Context) error { return errors.New("connection refused") },
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
