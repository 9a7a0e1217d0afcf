// Package guard holds talenthub's authorization policy: given who is asking and
// the facts of the resource being touched, may the operation proceed?
//
// The functions here do no I/O. Services load the facts they need from their
// stores, call the matching Can* function, and only then mutate anything. A nil
// result means allowed; otherwise the error is an *apperror.AppError ready to be
// rendered (403 for role or ownership mismatches, 400 for state violations).
package guard

import (
	"context"
	"fmt"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
)

// Principal is an authenticated identity with its profile resolved.
// Exactly one of TalentID and CompanyID is non-zero, matching Role.
type Principal struct {
	UserID    int64
	Role      auth.Role
	TalentID  int64
	CompanyID int64
}

// IsTalent reports whether p acts as a talent with a resolved profile.
func (p Principal) IsTalent() bool { return p.Role == auth.RoleTalent && p.TalentID > 0 }

// IsCompany reports whether p acts as a company with a resolved profile.
func (p Principal) IsCompany() bool { return p.Role == auth.RoleCompany && p.CompanyID > 0 }

// PrincipalLoader resolves an authenticated identity into a Principal.
type PrincipalLoader interface {
	Principal(ctx context.Context, id *auth.Identity) (Principal, error)
}

// JobFacts is what the policy needs to know about a job posting.
type JobFacts struct {
	ID        int64
	CompanyID int64
	Published bool
}

// ApplicationFacts is what the policy needs to know about an application.
type ApplicationFacts struct {
	ID           int64
	TalentID     int64
	JobCompanyID int64 // company owning the applied-to posting
	Status       ApplicationStatus
}

var (
	errTalentOnly  = apperror.NewUnauthorizedError("this action requires a talent account", nil)
	errCompanyOnly = apperror.NewUnauthorizedError("this action requires a company account", nil)
)

// CanCreateJob allows companies only. The new posting belongs to p.CompanyID.
func CanCreateJob(p Principal) error {
	if !p.IsCompany() {
		return errCompanyOnly
	}
	return nil
}

// CanModifyJob allows the owning company to update or delete a posting.
func CanModifyJob(p Principal, job JobFacts) error {
	if !p.IsCompany() {
		return errCompanyOnly
	}
	if job.CompanyID != p.CompanyID {
		return apperror.NewUnauthorizedError("you can only manage your own job postings", nil)
	}
	return nil
}

// CanApply allows talents to apply to published postings.
func CanApply(p Principal, job JobFacts) error {
	if !p.IsTalent() {
		return errTalentOnly
	}
	if !job.Published {
		return apperror.NewValidationError("job is not accepting applications", nil)
	}
	return nil
}

// CanReviewApplication allows the company owning the applied-to posting.
func CanReviewApplication(p Principal, app ApplicationFacts) error {
	if !p.IsCompany() {
		return errCompanyOnly
	}
	if app.JobCompanyID != p.CompanyID {
		return apperror.NewUnauthorizedError("this application was not sent to your company", nil)
	}
	return nil
}

// CanReadOwnApplication allows the talent who submitted the application.
func CanReadOwnApplication(p Principal, app ApplicationFacts) error {
	if !p.IsTalent() {
		return errTalentOnly
	}
	if app.TalentID != p.TalentID {
		return apperror.NewUnauthorizedError("you can only access your own applications", nil)
	}
	return nil
}

// CanListApplications allows talents to list what they applied to.
func CanListApplications(p Principal) error {
	if !p.IsTalent() {
		return errTalentOnly
	}
	return nil
}

// CanListResumes allows companies to list applications to their postings.
func CanListResumes(p Principal) error {
	if !p.IsCompany() {
		return errCompanyOnly
	}
	return nil
}

// CanUseFavorites allows talents. Favorites are always keyed by p.TalentID.
func CanUseFavorites(p Principal) error {
	if !p.IsTalent() {
		return errTalentOnly
	}
	return nil
}

// CanUpdateProfile allows a user to update the profile they own, of their own kind.
func CanUpdateProfile(p Principal, ownerUserID int64, profileRole auth.Role) error {
	if p.Role != profileRole {
		return apperror.NewUnauthorizedError(fmt.Sprintf("this action requires a %s account", profileRole), nil)
	}
	if p.UserID != ownerUserID {
		return apperror.NewUnauthorizedError("you can only update your own profile", nil)
	}
	return nil
}

// Resolve loads the principal for the identity attached to ctx by the session
// middleware. Without one it answers with the generic 401.
func Resolve(ctx context.Context, loader PrincipalLoader) (Principal, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return Principal{}, apperror.NewUnauthenticated()
	}
	return loader.Principal(ctx, id)
}

// ResolveOptional is Resolve for endpoints that also serve anonymous callers.
// It returns nil when there is no identity or the identity has no profile yet.
func ResolveOptional(ctx context.Context, loader PrincipalLoader) (*Principal, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, nil
	}
	p, err := loader.Principal(ctx, id)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
