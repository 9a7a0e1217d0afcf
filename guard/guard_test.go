package guard

import (
	"context"
	"net/http"
	"testing"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
)

var (
	company42 = Principal{UserID: 1042, Role: auth.RoleCompany, CompanyID: 42}
	company99 = Principal{UserID: 1099, Role: auth.RoleCompany, CompanyID: 99}
	talent5   = Principal{UserID: 2005, Role: auth.RoleTalent, TalentID: 5}
	talent6   = Principal{UserID: 2006, Role: auth.RoleTalent, TalentID: 6}
)

func status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr, ok := apperror.FromError(err)
	if !ok {
		return -1
	}
	return appErr.StatusCode()
}

func TestJobPolicies(t *testing.T) {
	job7 := JobFacts{ID: 7, CompanyID: 99, Published: true}
	ownJob := JobFacts{ID: 8, CompanyID: 42, Published: true}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"company creates", CanCreateJob(company42), http.StatusOK},
		{"talent creates", CanCreateJob(talent5), http.StatusForbidden},
		{"company without profile creates", CanCreateJob(Principal{UserID: 1, Role: auth.RoleCompany}), http.StatusForbidden},
		{"company 42 modifies job owned by 99", CanModifyJob(company42, job7), http.StatusForbidden},
		{"company 99 modifies own job", CanModifyJob(company99, job7), http.StatusOK},
		{"company 42 modifies own job", CanModifyJob(company42, ownJob), http.StatusOK},
		{"talent modifies job", CanModifyJob(talent5, job7), http.StatusForbidden},
	}
	for _, tc := range cases {
		if got := status(tc.err); got != tc.want {
			t.Errorf("%s: status %d, want %d (%v)", tc.name, got, tc.want, tc.err)
		}
	}
}

func TestCanApply(t *testing.T) {
	published := JobFacts{ID: 10, CompanyID: 99, Published: true}
	closed := JobFacts{ID: 11, CompanyID: 99, Published: false}

	if err := CanApply(talent5, published); err != nil {
		t.Errorf("talent applying to published job: %v", err)
	}
	if got := status(CanApply(talent5, closed)); got != http.StatusBadRequest {
		t.Errorf("non-published job: status %d, want 400", got)
	}
	if got := status(CanApply(company42, published)); got != http.StatusForbidden {
		t.Errorf("company applying: status %d, want 403", got)
	}
}

func TestApplicationPolicies(t *testing.T) {
	app := ApplicationFacts{ID: 1, TalentID: 5, JobCompanyID: 42, Status: StatusPending}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"owning company reviews", CanReviewApplication(company42, app), http.StatusOK},
		{"other company reviews", CanReviewApplication(company99, app), http.StatusForbidden},
		{"talent reviews", CanReviewApplication(talent5, app), http.StatusForbidden},
		{"own talent reads", CanReadOwnApplication(talent5, app), http.StatusOK},
		{"other talent reads", CanReadOwnApplication(talent6, app), http.StatusForbidden},
		{"company reads as talent", CanReadOwnApplication(company42, app), http.StatusForbidden},
	}
	for _, tc := range cases {
		if got := status(tc.err); got != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestCanUseFavorites(t *testing.T) {
	if err := CanUseFavorites(talent5); err != nil {
		t.Errorf("talent: %v", err)
	}
	if got := status(CanUseFavorites(company42)); got != http.StatusForbidden {
		t.Errorf("company: status %d, want 403", got)
	}
}

func TestCanUpdateProfile(t *testing.T) {
	if err := CanUpdateProfile(talent5, talent5.UserID, auth.RoleTalent); err != nil {
		t.Errorf("own talent profile: %v", err)
	}
	if got := status(CanUpdateProfile(talent5, talent6.UserID, auth.RoleTalent)); got != http.StatusForbidden {
		t.Errorf("other user's profile: status %d, want 403", got)
	}
	if got := status(CanUpdateProfile(talent5, talent5.UserID, auth.RoleCompany)); got != http.StatusForbidden {
		t.Errorf("wrong profile kind: status %d, want 403", got)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		actor    auth.Role
		want     int
	}{
		{StatusPending, StatusReviewed, auth.RoleCompany, http.StatusOK},
		{StatusPending, StatusAccepted, auth.RoleCompany, http.StatusOK},
		{StatusPending, StatusRejected, auth.RoleCompany, http.StatusOK},
		{StatusReviewed, StatusAccepted, auth.RoleCompany, http.StatusOK},
		{StatusReviewed, StatusRejected, auth.RoleCompany, http.StatusOK},
		{StatusPending, StatusPending, auth.RoleCompany, http.StatusOK},
		{StatusAccepted, StatusAccepted, auth.RoleCompany, http.StatusOK},
		{StatusReviewed, StatusPending, auth.RoleCompany, http.StatusBadRequest},
		{StatusAccepted, StatusRejected, auth.RoleCompany, http.StatusBadRequest},
		{StatusRejected, StatusReviewed, auth.RoleCompany, http.StatusBadRequest},
		{StatusWithdrawn, StatusReviewed, auth.RoleCompany, http.StatusBadRequest},
		{StatusPending, StatusWithdrawn, auth.RoleCompany, http.StatusForbidden},
		{StatusPending, StatusWithdrawn, auth.RoleTalent, http.StatusOK},
		{StatusAccepted, StatusWithdrawn, auth.RoleTalent, http.StatusOK},
		{StatusWithdrawn, StatusWithdrawn, auth.RoleTalent, http.StatusBadRequest},
		{StatusPending, StatusAccepted, auth.RoleTalent, http.StatusForbidden},
		{StatusPending, ApplicationStatus("hired"), auth.RoleCompany, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := status(CanTransition(tc.from, tc.to, tc.actor)); got != tc.want {
			t.Errorf("%s: %s -> %s: status %d, want %d", tc.actor, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestListPolicies(t *testing.T) {
	if status(CanListApplications(talent5)) != http.StatusOK || status(CanListApplications(company42)) != http.StatusForbidden {
		t.Error("CanListApplications must admit talents only")
	}
	if status(CanListResumes(company42)) != http.StatusOK || status(CanListResumes(talent5)) != http.StatusForbidden {
		t.Error("CanListResumes must admit companies only")
	}
}

type loaderFunc func(ctx context.Context, id *auth.Identity) (Principal, error)

func (f loaderFunc) Principal(ctx context.Context, id *auth.Identity) (Principal, error) { return f(ctx, id) }

func TestResolveOptional(t *testing.T) {
	found := loaderFunc(func(context.Context, *auth.Identity) (Principal, error) { return talent5, nil })
	missing := loaderFunc(func(context.Context, *auth.Identity) (Principal, error) {
		return Principal{}, apperror.NewNotFoundError("talent profile not found", nil)
	})
	broken := loaderFunc(func(context.Context, *auth.Identity) (Principal, error) {
		return Principal{}, apperror.NewDatabaseError("user query failed", nil)
	})
	withIdentity := auth.NewContextWithIdentity(context.Background(), &auth.Identity{UserID: 2005, Role: auth.RoleTalent})

	if p, err := ResolveOptional(context.Background(), found); p != nil || err != nil {
		t.Errorf("anonymous: %v, %v", p, err)
	}
	if p, err := ResolveOptional(withIdentity, found); err != nil || p == nil || p.TalentID != 5 {
		t.Errorf("found: %v, %v", p, err)
	}
	if p, err := ResolveOptional(withIdentity, missing); p != nil || err != nil {
		t.Errorf("missing profile: %v, %v", p, err)
	}
	if _, err := ResolveOptional(withIdentity, broken); status(err) != http.StatusInternalServerError {
		t.Errorf("store failure: err = %v, want 500", err)
	}
	if _, err := Resolve(context.Background(), found); status(err) != http.StatusUnauthorized {
		t.Errorf("Resolve without identity: err = %v, want 401", err)
	}
}
