// Package applications implements job applications: talents apply, follow and
// withdraw them; companies review the ones sent to their postings.
package applications

import (
	"time"

	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/users"
)

// TalentSummary is the applicant as shown in application lists.
type TalentSummary struct {
	ID                  int64   `json:"id"`
	RealName            string  `json:"realName"`
	Education           *string `json:"education"`
	WorkExperienceYears *int    `json:"workExperienceYears"`
	AvatarURL           *string `json:"avatarUrl"`
}

// Application is an application joined with its posting, company and applicant.
type Application struct {
	ID             int64                   `json:"id"`
	JobID          int64                   `json:"jobId"`
	PositionName   string                  `json:"positionName"`
	CompanyID      int64                   `json:"companyId"`
	CompanyName    string                  `json:"companyName"`
	CompanyLogoURL *string                 `json:"companyLogoUrl"`
	Status         guard.ApplicationStatus `json:"status"`
	CoverLetter    *string                 `json:"coverLetter"`
	AppliedAt      time.Time               `json:"appliedAt"`
	ReviewedAt     *time.Time              `json:"reviewedAt"`
	CompanyReply   *string                 `json:"companyReply"`
	ReplyAt        *time.Time              `json:"replyAt"`
	Talent         TalentSummary           `json:"talent"`
}

// Facts extracts what the guard needs from an application.
func (a *Application) Facts() guard.ApplicationFacts {
	return guard.ApplicationFacts{ID: a.ID, TalentID: a.Talent.ID, JobCompanyID: a.CompanyID, Status: a.Status}
}

// Resume is an application as seen by the reviewing company, with the full profile.
type Resume struct {
	Application
	TalentProfile *users.TalentProfile `json:"talentProfile"`
}

// ApplyRequest is the body of POST /api/applications.
type ApplyRequest struct {
	JobID       int64   `json:"jobId" validate:"required,gt=0"`
	CoverLetter *string `json:"coverLetter,omitempty" validate:"omitempty,max=2000"`
}

// ApplyResponse acknowledges a new application.
type ApplyResponse struct {
	ApplicationID int64                   `json:"applicationId"`
	Status        guard.ApplicationStatus `json:"status"`
}

// CheckResponse tells a job page whether the caller already applied.
type CheckResponse struct {
	HasApplied bool                     `json:"hasApplied"`
	Status     *guard.ApplicationStatus `json:"status,omitempty"`
}

// UpdateStatusRequest is the body of PUT /api/dashboard/resumes/{id}/status.
type UpdateStatusRequest struct {
	Status       string  `json:"status" validate:"required,oneof=pending reviewed accepted rejected"`
	CompanyReply *string `json:"companyReply,omitempty" validate:"omitempty,max=2000"`
}

// ResumeFilter narrows the company's resume list. Zero values mean "any".
type ResumeFilter struct {
	Status guard.ApplicationStatus
	JobID  int64
}

// StatusChange is a validated status update for the store.
type StatusChange struct {
	// From is the status the change was validated against. The store only
	// applies the change while the row still holds it.
	From   guard.ApplicationStatus
	Status guard.ApplicationStatus
	Reply  *string
}
