// Package jobs implements job postings: the public search and detail pages
// and the company dashboard that creates, edits and removes postings.
package jobs

import (
	"time"

	"github.com/user/talenthub/lookups"
	"github.com/user/talenthub/validation"
)

// Status mirrors the job_status enum.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusExpired   Status = "expired"
)

// Job is a job posting as returned by every endpoint.
type Job struct {
	ID                     int64           `json:"id"`
	CompanyID              int64           `json:"companyId"`
	CompanyName            string          `json:"companyName"`
	CompanyLogoURL         *string         `json:"companyLogoUrl"`
	PositionName           string          `json:"positionName"`
	Description            string          `json:"description"`
	IndustryLevel1ID       int64           `json:"industryLevel1Id"`
	IndustryLevel2ID       *int64          `json:"industryLevel2Id"`
	SalaryMin              *float64        `json:"salaryMin"`
	SalaryMax              *float64        `json:"salaryMax"`
	CityID                 int64           `json:"cityId"`
	CityName               string          `json:"cityName"`
	WorkExperienceRequired *int            `json:"workExperienceRequired"`
	EducationRequired      *string         `json:"educationRequired"`
	PositionCount          int             `json:"positionCount"`
	Status                 Status          `json:"status"`
	PublishedAt            *time.Time      `json:"publishedAt"`
	ExpiredAt              *time.Time      `json:"expiredAt"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
	Skills                 []lookups.Skill `json:"skills,omitempty"`
	ApplicationCount       *int64          `json:"applicationCount,omitempty"`
}

// SearchFilter narrows the public search. Zero values mean "any".
type SearchFilter struct {
	CityID           int64
	ProvinceID       int64
	IndustryLevel1ID int64
	IndustryLevel2ID int64
	SalaryMin        *float64 // salary_min >= SalaryMin
	SalaryMax        *float64 // salary_max <= SalaryMax
	WorkExperience   *int     // work_experience_required <= WorkExperience
	Education        string
	Keyword          string
	Page             validation.Page
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Jobs  []Job `json:"jobs"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// CreateJobRequest is the body of POST /api/dashboard/jobs.
type CreateJobRequest struct {
	PositionName           string     `json:"positionName" validate:"required,min=1,max=100"`
	Description            string     `json:"description" validate:"required,min=10"`
	IndustryLevel1ID       int64      `json:"industryLevel1Id" validate:"required,gt=0"`
	IndustryLevel2ID       *int64     `json:"industryLevel2Id,omitempty" validate:"omitempty,gt=0"`
	SalaryMin              *float64   `json:"salaryMin,omitempty" validate:"omitempty,gte=0"`
	SalaryMax              *float64   `json:"salaryMax,omitempty" validate:"omitempty,gte=0"`
	CityID                 int64      `json:"cityId" validate:"required,gt=0"`
	WorkExperienceRequired *int       `json:"workExperienceRequired,omitempty" validate:"omitempty,gte=0,lte=60"`
	EducationRequired      *string    `json:"educationRequired,omitempty" validate:"omitempty,oneof=high_school associate bachelor master phd"`
	PositionCount          *int       `json:"positionCount,omitempty" validate:"omitempty,gt=0"`
	SkillIDs               []int64    `json:"skillIds,omitempty" validate:"omitempty,max=50,dive,gt=0"`
	ExpiredAt              *time.Time `json:"expiredAt,omitempty" example:"2026-12-31T23:59:59Z"`
}

// UpdateJobRequest is the body of PUT /api/dashboard/jobs/{id}.
// Omitted fields are unchanged and null clears optional ones.
type UpdateJobRequest struct {
	PositionName           validation.Optional[string]    `json:"positionName" validate:"omitempty,min=1,max=100" swaggertype:"string"`
	Description            validation.Optional[string]    `json:"description" validate:"omitempty,min=10" swaggertype:"string"`
	IndustryLevel1ID       validation.Optional[int64]     `json:"industryLevel1Id" validate:"omitempty,gt=0" swaggertype:"integer"`
	IndustryLevel2ID       validation.Optional[int64]     `json:"industryLevel2Id" validate:"omitempty,gt=0" swaggertype:"integer"`
	SalaryMin              validation.Optional[float64]   `json:"salaryMin" validate:"omitempty,gte=0" swaggertype:"number"`
	SalaryMax              validation.Optional[float64]   `json:"salaryMax" validate:"omitempty,gte=0" swaggertype:"number"`
	CityID                 validation.Optional[int64]     `json:"cityId" validate:"omitempty,gt=0" swaggertype:"integer"`
	WorkExperienceRequired validation.Optional[int]       `json:"workExperienceRequired" validate:"omitempty,gte=0,lte=60" swaggertype:"integer"`
	EducationRequired      validation.Optional[string]    `json:"educationRequired" validate:"omitempty,oneof=high_school associate bachelor master phd" swaggertype:"string"`
	PositionCount          validation.Optional[int]       `json:"positionCount" validate:"omitempty,gt=0" swaggertype:"integer"`
	Status                 validation.Optional[string]    `json:"status" validate:"omitempty,oneof=draft published closed expired" swaggertype:"string"`
	SkillIDs               validation.Optional[[]int64]   `json:"skillIds" validate:"omitempty,max=50,dive,gt=0" swaggertype:"array,integer"`
	ExpiredAt              validation.Optional[time.Time] `json:"expiredAt" swaggertype:"string"`
}

// NewJob is a validated posting ready for the store.
type NewJob struct {
	CompanyID              int64
	PositionName           string
	Description            string
	IndustryLevel1ID       int64
	IndustryLevel2ID       *int64
	SalaryMin              *float64
	SalaryMax              *float64
	CityID                 int64
	WorkExperienceRequired *int
	EducationRequired      *string
	PositionCount          int
	SkillIDs               []int64
	ExpiredAt              *time.Time
}

// JobPatch is a validated update. Publish asks the store to stamp published_at
// if it has never been set.
type JobPatch struct {
	UpdateJobRequest
	Publish bool
}
