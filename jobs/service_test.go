package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/validation"
)

type fakeStore struct {
	mu        sync.Mutex
	jobs      map[int64]*Job
	nextID    int64
	lastPatch JobPatch
	lastQuery SearchFilter
}

func newFakeStore() *fakeStore {
	f := &fakeStore{jobs: map[int64]*Job{}, nextID: 100}
	f.jobs[7] = &Job{ID: 7, CompanyID: 99, PositionName: "Backend Engineer", Description: "Build services in Go.",
		IndustryLevel1ID: 1, CityID: 1, PositionCount: 1, Status: StatusPublished, SalaryMin: ptr(10000.0), SalaryMax: ptr(20000.0)}
	f.jobs[8] = &Job{ID: 8, CompanyID: 42, PositionName: "Draft Role", Description: "Not public yet.",
		IndustryLevel1ID: 1, CityID: 1, PositionCount: 1, Status: StatusDraft}
	return f
}

func (f *fakeStore) Search(_ context.Context, filter SearchFilter) ([]Job, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = filter
	var out []Job
	for _, j := range f.jobs {
		if j.Status == StatusPublished {
			out = append(out, *j)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ListByCompany(_ context.Context, companyID int64, status Status) ([]Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Job
	for _, j := range f.jobs {
		if j.CompanyID == companyID && (status == "" || j.Status == status) {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, job NewJob) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now()
	f.jobs[f.nextID] = &Job{
		ID: f.nextID, CompanyID: job.CompanyID, PositionName: job.PositionName, Description: job.Description,
		IndustryLevel1ID: job.IndustryLevel1ID, CityID: job.CityID, SalaryMin: job.SalaryMin, SalaryMax: job.SalaryMax,
		PositionCount: job.PositionCount, Status: StatusPublished, PublishedAt: &now,
	}
	return f.nextID, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, patch JobPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	f.lastPatch = patch
	if patch.PositionName.HasValue() {
		j.PositionName = patch.PositionName.Value
	}
	if patch.SalaryMin.Set {
		j.SalaryMin = patch.SalaryMin.Ptr()
	}
	if patch.SalaryMax.Set {
		j.SalaryMax = patch.SalaryMax.Ptr()
	}
	if patch.Status.HasValue() {
		j.Status = Status(patch.Status.Value)
	}
	if patch.Publish && j.PublishedAt == nil {
		now := time.Now()
		j.PublishedAt = &now
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.jobs, id)
	return nil
}

// staticPrincipals resolves every identity to the principal registered for its user id.
type staticPrincipals map[int64]guard.Principal

func (s staticPrincipals) Principal(_ context.Context, id *auth.Identity) (guard.Principal, error) {
	if p, ok := s[id.UserID]; ok {
		return p, nil
	}
	return guard.Principal{}, apperror.NewNotFoundError("company profile not found", nil)
}

var (
	company42 = guard.Principal{UserID: 2, Role: auth.RoleCompany, CompanyID: 42}
	talent10  = guard.Principal{UserID: 1, Role: auth.RoleTalent, TalentID: 10}
)

func ptr[T any](v T) *T { return &v }

func decodeUpdate(t *testing.T, body string) UpdateJobRequest {
	t.Helper()
	var req UpdateJobRequest
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	if err := validation.Decode(httptest.NewRecorder(), r, &req); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return req
}

func TestForeignCompanyCannotTouchJob(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	ctx := context.Background()

	if _, err := svc.Update(ctx, company42, 7, decodeUpdate(t, `{"positionName":"Mine now"}`)); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("update foreign job: err = %v, want 403", err)
	}
	if err := svc.Delete(ctx, company42, 7); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("delete foreign job: err = %v, want 403", err)
	}
	if _, ok := store.jobs[7]; !ok || store.jobs[7].PositionName != "Backend Engineer" {
		t.Fatal("foreign job was modified")
	}
	if _, err := svc.GetOwn(ctx, talent10, 7); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("talent reading dashboard job: err = %v, want 403", err)
	}
}

func TestGetPublishedHidesOtherStatuses(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()

	if _, err := svc.GetPublished(ctx, 8); !apperror.IsNotFound(err) {
		t.Fatalf("draft job: err = %v, want 404", err)
	}
	if _, err := svc.GetPublished(ctx, 404); !apperror.IsNotFound(err) {
		t.Fatalf("missing job: err = %v, want 404", err)
	}
	job, err := svc.GetPublished(ctx, 7)
	if err != nil || job.ID != 7 {
		t.Fatalf("published job = %+v, err %v", job, err)
	}
	// the owner still sees its draft on the dashboard
	if _, err := svc.GetOwn(ctx, company42, 8); err != nil {
		t.Fatalf("owner reading draft: %v", err)
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()
	req := CreateJobRequest{
		PositionName: "SRE", Description: "Keep the lights on.", IndustryLevel1ID: 1, CityID: 2,
		SalaryMin: ptr(8000.0), SalaryMax: ptr(12000.0),
	}

	job, err := svc.Create(ctx, company42, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.CompanyID != 42 || job.Status != StatusPublished || job.PositionCount != 1 || job.PublishedAt == nil {
		t.Fatalf("created job = %+v", job)
	}

	if _, err := svc.Create(ctx, talent10, req); !apperror.IsUnauthorizedError(err) {
		t.Errorf("talent creating job: err = %v, want 403", err)
	}

	inverted := req
	inverted.SalaryMin, inverted.SalaryMax = ptr(12000.0), ptr(8000.0)
	if _, err := svc.Create(ctx, company42, inverted); !apperror.IsValidationError(err) {
		t.Errorf("inverted salary: err = %v, want validation error", err)
	}

	past := req
	past.ExpiredAt = ptr(time.Now().Add(-time.Hour))
	if _, err := svc.Create(ctx, company42, past); !apperror.IsValidationError(err) {
		t.Errorf("expiredAt in the past: err = %v, want validation error", err)
	}
}

func TestUpdateChecksEffectiveSalaryRange(t *testing.T) {
	store := newFakeStore()
	store.jobs[7].CompanyID = 42
	svc := NewService(store, time.Second)

	// stored range is 10000..20000, lowering only the max below the min must fail
	_, err := svc.Update(context.Background(), company42, 7, decodeUpdate(t, `{"salaryMax":5000}`))
	if !apperror.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	job, err := svc.Update(context.Background(), company42, 7, decodeUpdate(t, `{"salaryMin":null,"salaryMax":5000}`))
	if err != nil {
		t.Fatalf("clearing min: %v", err)
	}
	if job.SalaryMin != nil || *job.SalaryMax != 5000 {
		t.Fatalf("salary after update = %v..%v", job.SalaryMin, job.SalaryMax)
	}
}

func TestUpdatePublishFlag(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	ctx := context.Background()

	job, err := svc.Update(ctx, company42, 8, decodeUpdate(t, `{"status":"published"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !store.lastPatch.Publish || job.Status != StatusPublished || job.PublishedAt == nil {
		t.Fatalf("publish: patch %+v job %+v", store.lastPatch, job)
	}
	if _, err := svc.Update(ctx, company42, 8, decodeUpdate(t, `{"status":"closed"}`)); err != nil {
		t.Fatal(err)
	}
	if store.lastPatch.Publish {
		t.Fatal("closing a job asked for a publish stamp")
	}
}

func TestUpdateRejectsClearingRequiredFields(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	for _, body := range []string{`{"positionName":null}`, `{"cityId":null}`, `{"status":null}`, `{"industryLevel1Id":null}`} {
		_, err := svc.Update(context.Background(), company42, 8, decodeUpdate(t, body))
		if !apperror.IsValidationError(err) {
			t.Errorf("%s: err = %v, want validation error", body, err)
		}
	}
}

func TestSearchRejectsInvertedSalaryFilter(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	_, err := svc.Search(context.Background(), SearchFilter{SalaryMin: ptr(5000.0), SalaryMax: ptr(1000.0)})
	if !apperror.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestHandleSearchParsesFilters(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(NewService(store, time.Second), staticPrincipals{})

	rec := httptest.NewRecorder()
	h.HandleSearch()(rec, httptest.NewRequest(http.MethodGet,
		"/api/jobs?provinceId=3&salaryMin=5000&workExperience=2&education=bachelor&keyword=go&page=2&limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	f := store.lastQuery
	if f.ProvinceID != 3 || f.SalaryMin == nil || *f.SalaryMin != 5000 || f.SalaryMax != nil ||
		f.WorkExperience == nil || *f.WorkExperience != 2 || f.Education != "bachelor" || f.Keyword != "go" ||
		f.Page.Page != 2 || f.Page.Limit != 5 {
		t.Fatalf("filter = %+v", f)
	}
	var res SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.Total != 1 || res.Page != 2 {
		t.Fatalf("result %s err %v", rec.Body.String(), err)
	}

	for _, q := range []string{"cityId=abc", "education=wizard", "limit=1000"} {
		rec := httptest.NewRecorder()
		h.HandleSearch()(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", q, rec.Code)
		}
	}
}

func TestHandleDeleteOwnJob(t *testing.T) {
	store := newFakeStore()
	h := NewHandlers(NewService(store, time.Second), staticPrincipals{2: company42})

	r := httptest.NewRequest(http.MethodDelete, "/api/dashboard/jobs/8", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "8")
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = auth.NewContextWithIdentity(ctx, &auth.Identity{UserID: 2, Role: auth.RoleCompany})
	rec := httptest.NewRecorder()
	h.HandleDelete()(rec, r.WithContext(ctx))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if _, ok := store.jobs[8]; ok {
		t.Fatal("job 8 still stored")
	}

	rec = httptest.NewRecorder()
	h.HandleDelete()(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard/jobs/8", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous delete: status %d, want 401", rec.Code)
	}
}
