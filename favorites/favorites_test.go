package favorites

import (
	"context"
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
	"github.com/user/talenthub/jobs"
)

type key struct{ talent, job int64 }

type fakeStore struct {
	mu   sync.Mutex
	jobs map[int64]jobs.Job
	favs map[key]time.Time
	// raceOnAdd simulates another request inserting the row between Remove and Add.
	raceOnAdd bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs: map[int64]jobs.Job{
			10: {ID: 10, Status: jobs.StatusPublished},
			11: {ID: 11, Status: jobs.StatusClosed},
		},
		favs: map[key]time.Time{},
	}
}

func (f *fakeStore) JobExists(_ context.Context, jobID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[jobID]; !ok {
		return pgx.ErrNoRows
	}
	return nil
}

func (f *fakeStore) IsFavorite(_ context.Context, talentID, jobID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favs[key{talentID, jobID}]
	return ok, nil
}

func (f *fakeStore) Add(_ context.Context, talentID, jobID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{talentID, jobID}
	if f.raceOnAdd {
		f.favs[k] = time.Now()
	}
	if _, ok := f.favs[k]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "job_favorites_pkey"}
	}
	f.favs[k] = time.Now()
	return nil
}

func (f *fakeStore) Remove(_ context.Context, talentID, jobID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{talentID, jobID}
	if _, ok := f.favs[k]; !ok {
		return false, nil
	}
	delete(f.favs, k)
	return true, nil
}

func (f *fakeStore) List(_ context.Context, talentID int64) ([]FavoriteJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FavoriteJob
	for k, at := range f.favs {
		if j := f.jobs[k.job]; k.talent == talentID && j.Status == jobs.StatusPublished {
			out = append(out, FavoriteJob{Job: j, FavoritedAt: at})
		}
	}
	return out, nil
}

var (
	talent5   = guard.Principal{UserID: 105, Role: auth.RoleTalent, TalentID: 5}
	company42 = guard.Principal{UserID: 142, Role: auth.RoleCompany, CompanyID: 42}
)

func TestDoubleToggleRestoresState(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()

	before, err := svc.Check(ctx, &talent5, 10)
	if err != nil || before.IsFavorite {
		t.Fatalf("initial state: %+v, err %v", before, err)
	}
	first, err := svc.Toggle(ctx, talent5, 10)
	if err != nil || !first.Success || !first.IsFavorite {
		t.Fatalf("first toggle: %+v, err %v", first, err)
	}
	second, err := svc.Toggle(ctx, talent5, 10)
	if err != nil || !second.Success || second.IsFavorite {
		t.Fatalf("second toggle: %+v, err %v", second, err)
	}
	after, _ := svc.Check(ctx, &talent5, 10)
	if after.IsFavorite != before.IsFavorite {
		t.Fatal("double toggle changed the state")
	}
}

func TestToggleInsertRaceReportsFavorite(t *testing.T) {
	store := newFakeStore()
	store.raceOnAdd = true
	res, err := NewService(store, time.Second).Toggle(context.Background(), talent5, 10)
	if err != nil || !res.IsFavorite {
		t.Fatalf("toggle: %+v, err %v", res, err)
	}
}

func TestToggleRejections(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	if _, err := svc.Toggle(context.Background(), talent5, 404); !apperror.IsNotFound(err) {
		t.Errorf("missing job: err = %v, want 404", err)
	}
	if _, err := svc.Toggle(context.Background(), company42, 10); !apperror.IsUnauthorizedError(err) {
		t.Errorf("company: err = %v, want 403", err)
	}
}

func TestListSkipsUnpublished(t *testing.T) {
	svc := NewService(newFakeStore(), time.Second)
	ctx := context.Background()
	for _, id := range []int64{10, 11} {
		if _, err := svc.Toggle(ctx, talent5, id); err != nil {
			t.Fatal(err)
		}
	}
	favs, err := svc.List(ctx, talent5)
	if err != nil || len(favs) != 1 || favs[0].ID != 10 {
		t.Fatalf("favorites = %+v, err %v", favs, err)
	}
}

type staticPrincipals map[int64]guard.Principal

func (s staticPrincipals) Principal(_ context.Context, id *auth.Identity) (guard.Principal, error) {
	if p, ok := s[id.UserID]; ok {
		return p, nil
	}
	return guard.Principal{}, apperror.NewNotFoundError("talent profile not found", nil)
}

func TestHandleCheckAnonymousAndCompany(t *testing.T) {
	h := NewHandlers(NewService(newFakeStore(), time.Second), staticPrincipals{142: company42})

	rec := httptest.NewRecorder()
	h.HandleCheck()(rec, httptest.NewRequest(http.MethodGet, "/api/favorites?jobId=10", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"isFavorite":false}` {
		t.Fatalf("anonymous: status %d body %s", rec.Code, rec.Body.String())
	}

	r := httptest.NewRequest(http.MethodGet, "/api/favorites?jobId=10", nil)
	r = r.WithContext(auth.NewContextWithIdentity(r.Context(), &auth.Identity{UserID: 142, Role: auth.RoleCompany}))
	rec = httptest.NewRecorder()
	h.HandleCheck()(rec, r)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"isFavorite":false}` {
		t.Fatalf("company: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleToggle(t *testing.T) {
	h := NewHandlers(NewService(newFakeStore(), time.Second), staticPrincipals{105: talent5})
	r := httptest.NewRequest(http.MethodPost, "/api/favorites/toggle", strings.NewReader(`{"jobId":10}`))
	r = r.WithContext(auth.NewContextWithIdentity(r.Context(), &auth.Identity{UserID: 105, Role: auth.RoleTalent}))
	rec := httptest.NewRecorder()
	h.HandleToggle()(rec, r)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"success":true,"isFavorite":true}` {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}
