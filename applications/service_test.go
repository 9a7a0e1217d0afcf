package applications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/users"
)

type fakeStore struct {
	mu     sync.Mutex
	jobs   map[int64]guard.JobFacts
	apps   map[int64]*Application
	nextID int64
	// hideExisting makes Find miss existing rows, as when two requests race.
	hideExisting bool
	lastChange   StatusChange
	// beforeUpdate runs inside UpdateStatus, standing in for a concurrent writer.
	beforeUpdate func(a *Application)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs: map[int64]guard.JobFacts{
			10: {ID: 10, CompanyID: 42, Published: true},
			11: {ID: 11, CompanyID: 42, Published: false},
			12: {ID: 12, CompanyID: 99, Published: true},
		},
		apps: map[int64]*Application{},
	}
}

func (f *fakeStore) JobFacts(_ context.Context, jobID int64) (guard.JobFacts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[jobID]; ok {
		return j, nil
	}
	return guard.JobFacts{}, pgx.ErrNoRows
}

func (f *fakeStore) Find(_ context.Context, talentID, jobID int64) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideExisting {
		return nil, pgx.ErrNoRows
	}
	for _, a := range f.apps {
		if a.Talent.ID == talentID && a.JobID == jobID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) Create(_ context.Context, talentID, jobID int64, coverLetter *string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.Talent.ID == talentID && a.JobID == jobID {
			return 0, &pgconn.PgError{Code: "23505", ConstraintName: uniqueApplication}
		}
	}
	f.nextID++
	f.apps[f.nextID] = &Application{
		ID: f.nextID, JobID: jobID, CompanyID: f.jobs[jobID].CompanyID, Status: guard.StatusPending,
		CoverLetter: coverLetter, AppliedAt: time.Now(), Talent: TalentSummary{ID: talentID},
	}
	return f.nextID, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ListByTalent(_ context.Context, talentID int64, status guard.ApplicationStatus) ([]Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Application
	for _, a := range f.apps {
		if a.Talent.ID == talentID && (status == "" || a.Status == status) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByCompany(_ context.Context, companyID int64, filter ResumeFilter) ([]Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Application
	for _, a := range f.apps {
		if a.CompanyID == companyID && (filter.Status == "" || a.Status == filter.Status) &&
			(filter.JobID == 0 || a.JobID == filter.JobID) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, change StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if f.beforeUpdate != nil {
		f.beforeUpdate(a)
	}
	if a.Status != change.From {
		return ErrStatusChanged
	}
	f.lastChange = change
	now := time.Now()
	switch change.Status {
	case guard.StatusReviewed, guard.StatusAccepted, guard.StatusRejected:
		if a.Status != change.Status {
			a.ReviewedAt = &now
		}
	}
	a.Status = change.Status
	if change.Reply != nil {
		a.CompanyReply = change.Reply
		a.ReplyAt = &now
	}
	return nil
}

func (f *fakeStore) Talent(_ context.Context, talentID int64) (*users.TalentProfile, error) {
	return &users.TalentProfile{ID: talentID, RealName: "Han Meimei"}, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.apps)
}

var (
	talent5   = guard.Principal{UserID: 105, Role: auth.RoleTalent, TalentID: 5}
	talent6   = guard.Principal{UserID: 106, Role: auth.RoleTalent, TalentID: 6}
	company42 = guard.Principal{UserID: 142, Role: auth.RoleCompany, CompanyID: 42}
	company99 = guard.Principal{UserID: 199, Role: auth.RoleCompany, CompanyID: 99}
)

func apply(t *testing.T, svc *Service, p guard.Principal, jobID int64) int64 {
	t.Helper()
	res, err := svc.Apply(context.Background(), p, ApplyRequest{JobID: jobID})
	if err != nil {
		t.Fatalf("Apply(%d): %v", jobID, err)
	}
	return res.ApplicationID
}

func TestApplyOnceThenConflict(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)

	res, err := svc.Apply(context.Background(), talent5, ApplyRequest{JobID: 10})
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if res.ApplicationID == 0 || res.Status != guard.StatusPending {
		t.Fatalf("response = %+v", res)
	}

	_, err = svc.Apply(context.Background(), talent5, ApplyRequest{JobID: 10})
	if !apperror.IsConflictError(err) {
		t.Fatalf("second apply: err = %v, want 409", err)
	}
	if store.count() != 1 {
		t.Fatalf("%d applications stored, want 1", store.count())
	}
}

func TestApplyRaceIsConflict(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	apply(t, svc, talent5, 10)

	store.hideExisting = true
	_, err := svc.Apply(context.Background(), talent5, ApplyRequest{JobID: 10})
	appErr, ok := apperror.FromError(err)
	if !ok || appErr.StatusCode() != http.StatusConflict || appErr.Message != "already applied" {
		t.Fatalf("racing apply: err = %v, want 409 already applied", err)
	}
	if store.count() != 1 {
		t.Fatalf("%d applications stored, want 1", store.count())
	}
}

func TestApplyRejections(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()

	cases := []struct {
		name string
		p    guard.Principal
		job  int64
		want int
	}{
		{"missing job", talent5, 404, http.StatusNotFound},
		{"unpublished job", talent5, 11, http.StatusBadRequest},
		{"company applying", company42, 10, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Apply(ctx, tc.p, ApplyRequest{JobID: tc.job})
			appErr, ok := apperror.FromError(err)
			if !ok || appErr.StatusCode() != tc.want {
				t.Fatalf("err = %v, want status %d", err, tc.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()
	apply(t, svc, talent5, 10)

	for name, p := range map[string]*guard.Principal{"anonymous": nil, "company": &company42, "other talent": &talent6} {
		res, err := svc.Check(ctx, p, 10)
		if err != nil || res.HasApplied || res.Status != nil {
			t.Errorf("%s: %+v, err %v", name, res, err)
		}
	}
	res, err := svc.Check(ctx, &talent5, 10)
	if err != nil || !res.HasApplied || res.Status == nil || *res.Status != guard.StatusPending {
		t.Fatalf("applicant: %+v, err %v", res, err)
	}
}

func TestTalentCannotReadOthersApplication(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	id := apply(t, svc, talent5, 10)

	if _, err := svc.GetOwn(context.Background(), talent6, id); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("err = %v, want 403", err)
	}
	if _, err := svc.Withdraw(context.Background(), talent6, id); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("withdraw: err = %v, want 403", err)
	}
}

func TestWithdraw(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()
	id := apply(t, svc, talent5, 10)

	app, err := svc.Withdraw(ctx, talent5, id)
	if err != nil || app.Status != guard.StatusWithdrawn {
		t.Fatalf("withdraw: %+v, err %v", app, err)
	}
	if _, err := svc.Withdraw(ctx, talent5, id); !apperror.IsValidationError(err) {
		t.Fatalf("second withdraw: err = %v, want 400", err)
	}
	if _, err := svc.UpdateStatus(ctx, company42, id, UpdateStatusRequest{Status: "accepted"}); !apperror.IsValidationError(err) {
		t.Fatalf("reviewing a withdrawn application: err = %v, want 400", err)
	}
}

func TestReviewFlow(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	ctx := context.Background()
	id := apply(t, svc, talent5, 10)

	if _, err := svc.UpdateStatus(ctx, company99, id, UpdateStatusRequest{Status: "reviewed"}); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("foreign company: err = %v, want 403", err)
	}
	if _, err := svc.GetResume(ctx, company99, id); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("foreign company resume: err = %v, want 403", err)
	}

	app, err := svc.UpdateStatus(ctx, company42, id, UpdateStatusRequest{Status: "reviewed"})
	if err != nil || app.Status != guard.StatusReviewed || app.ReviewedAt == nil || app.ReplyAt != nil {
		t.Fatalf("reviewed: %+v, err %v", app, err)
	}

	if _, err := svc.UpdateStatus(ctx, company42, id, UpdateStatusRequest{Status: "pending"}); !apperror.IsValidationError(err) {
		t.Fatalf("back to pending: err = %v, want 400", err)
	}

	reply := "See you Monday."
	app, err = svc.UpdateStatus(ctx, company42, id, UpdateStatusRequest{Status: "accepted", CompanyReply: &reply})
	if err != nil || app.Status != guard.StatusAccepted || app.CompanyReply == nil || *app.CompanyReply != reply || app.ReplyAt == nil {
		t.Fatalf("accepted: %+v, err %v", app, err)
	}
	if store.lastChange.Reply == nil {
		t.Fatal("reply not passed to the store with the status change")
	}

	resume, err := svc.GetResume(ctx, company42, id)
	if err != nil || resume.TalentProfile == nil || resume.TalentProfile.ID != 5 {
		t.Fatalf("resume: %+v, err %v", resume, err)
	}
}

func TestReviewLosesToConcurrentWithdraw(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Second)
	ctx := context.Background()
	id := apply(t, svc, talent5, 10)

	store.beforeUpdate = func(a *Application) { a.Status = guard.StatusWithdrawn }
	_, err := svc.UpdateStatus(ctx, company42, id, UpdateStatusRequest{Status: "accepted"})
	if !apperror.IsConflictError(err) {
		t.Fatalf("err = %v, want 409", err)
	}
	store.beforeUpdate = nil

	app, err := svc.GetOwn(ctx, talent5, id)
	if err != nil || app.Status != guard.StatusWithdrawn || app.ReviewedAt != nil {
		t.Fatalf("application after the race: %+v, err %v", app, err)
	}
}

// blockingStore never answers before the caller's deadline.
type blockingStore struct {
	*fakeStore
}

func (b blockingStore) JobFacts(ctx context.Context, _ int64) (guard.JobFacts, error) {
	<-ctx.Done()
	return guard.JobFacts{}, ctx.Err()
}

func TestApplyTimeoutIsRetryable(t *testing.T) {
	store := blockingStore{newFakeStore()}
	h := NewHandlers(NewService(store, 20*time.Millisecond), staticPrincipals{105: talent5})

	_, err := h.service.Apply(context.Background(), talent5, ApplyRequest{JobID: 10})
	appErr, ok := apperror.FromError(err)
	if !ok || appErr.StatusCode() != http.StatusInternalServerError || !appErr.Retryable() {
		t.Fatalf("err = %v, want a retryable 500", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(`{"jobId":10}`))
	req = req.WithContext(auth.NewContextWithIdentity(req.Context(), &auth.Identity{UserID: 105, Role: auth.RoleTalent}))
	h.HandleApply()(rec, req)
	var body apperror.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || !body.Retryable {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if store.count() != 0 {
		t.Fatalf("%d applications stored after a timeout", store.count())
	}
}

func TestListsAreScopedToTheCaller(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()
	apply(t, svc, talent5, 10)
	apply(t, svc, talent5, 12)
	apply(t, svc, talent6, 10)

	own, err := svc.ListOwn(ctx, talent5, "")
	if err != nil || len(own) != 2 {
		t.Fatalf("talent 5 sees %d applications, err %v", len(own), err)
	}
	resumes, err := svc.ListResumes(ctx, company42, ResumeFilter{})
	if err != nil || len(resumes) != 2 {
		t.Fatalf("company 42 sees %d resumes, err %v", len(resumes), err)
	}
	empty, err := svc.ListResumes(ctx, company42, ResumeFilter{Status: guard.StatusAccepted})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("filtered resumes = %v, err %v", empty, err)
	}
	if _, err := svc.ListResumes(ctx, talent5, ResumeFilter{}); !apperror.IsUnauthorizedError(err) {
		t.Fatalf("talent listing resumes: err = %v, want 403", err)
	}
}

type staticPrincipals map[int64]guard.Principal

func (s staticPrincipals) Principal(_ context.Context, id *auth.Identity) (guard.Principal, error) {
	if p, ok := s[id.UserID]; ok {
		return p, nil
	}
	return guard.Principal{}, apperror.NewNotFoundError("talent profile not found", nil)
}

func TestHandleApplyAndCheck(t *testing.T) {
	h := NewHandlers(NewService(newFakeStore(), time.Second), staticPrincipals{105: talent5})
	asTalent := func(r *http.Request) *http.Request {
		return r.WithContext(auth.NewContextWithIdentity(r.Context(), &auth.Identity{UserID: 105, Role: auth.RoleTalent}))
	}

	rec := httptest.NewRecorder()
	h.HandleApply()(rec, asTalent(httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(`{"jobId":10}`))))
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply: status %d body %s", rec.Code, rec.Body.String())
	}
	var created ApplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.ApplicationID == 0 || created.Status != guard.StatusPending {
		t.Fatalf("apply body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleApply()(rec, asTalent(httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(`{"jobId":10}`))))
	if rec.Code != http.StatusConflict {
		t.Fatalf("re-apply: status %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleCheck()(rec, httptest.NewRequest(http.MethodGet, "/api/applications/check?jobId=10", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"hasApplied":false}` {
		t.Fatalf("anonymous check: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleCheck()(rec, asTalent(httptest.NewRequest(http.MethodGet, "/api/applications/check?jobId=10", nil)))
	if strings.TrimSpace(rec.Body.String()) != `{"hasApplied":true,"status":"pending"}` {
		t.Fatalf("applicant check: body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleCheck()(rec, httptest.NewRequest(http.MethodGet, "/api/applications/check", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("check without jobId: status %d, want 400", rec.Code)
	}
}
