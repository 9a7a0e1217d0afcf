package jobs

import (
	"context"
	"time"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/db"
	"github.com/user/talenthub/guard"
)

// Service implements the job posting operations.
type Service struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

// NewService creates a new jobs Service. timeout bounds each store call.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout, now: time.Now}
}

// Facts extracts what the guard needs from a posting.
func (j *Job) Facts() guard.JobFacts {
	return guard.JobFacts{ID: j.ID, CompanyID: j.CompanyID, Published: j.Status == StatusPublished}
}

// Search lists published postings matching f.
func (s *Service) Search(ctx context.Context, f SearchFilter) (*SearchResult, error) {
	if f.SalaryMin != nil && f.SalaryMax != nil && *f.SalaryMax < *f.SalaryMin {
		return nil, apperror.NewValidationError("salaryMax must be greater than or equal to salaryMin", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	jobs, total, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, db.Translate(err, "job search")
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return &SearchResult{Jobs: jobs, Total: total, Page: f.Page.Page, Limit: f.Page.Limit}, nil
}

// GetPublished returns a posting for the public detail page. Postings that are
// not published are reported as missing.
func (s *Service) GetPublished(ctx context.Context, id int64) (*Job, error) {
	job, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusPublished {
		return nil, apperror.NewNotFoundError("job not found", nil)
	}
	return job, nil
}

// ListOwn returns the company's postings in every status, newest first.
func (s *Service) ListOwn(ctx context.Context, p guard.Principal, status Status) ([]Job, error) {
	if err := guard.CanCreateJob(p); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	jobs, err := s.store.ListByCompany(ctx, p.CompanyID, status)
	if err != nil {
		return nil, db.Translate(err, "job")
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}

// Create publishes a new posting owned by the principal's company.
func (s *Service) Create(ctx context.Context, p guard.Principal, req CreateJobRequest) (*Job, error) {
	if err := guard.CanCreateJob(p); err != nil {
		return nil, err
	}
	if err := checkSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}
	if req.ExpiredAt != nil && !req.ExpiredAt.After(s.now()) {
		return nil, apperror.NewValidationError("expiredAt must be in the future", nil)
	}
	job := NewJob{
		CompanyID:              p.CompanyID,
		PositionName:           req.PositionName,
		Description:            req.Description,
		IndustryLevel1ID:       req.IndustryLevel1ID,
		IndustryLevel2ID:       req.IndustryLevel2ID,
		SalaryMin:              req.SalaryMin,
		SalaryMax:              req.SalaryMax,
		CityID:                 req.CityID,
		WorkExperienceRequired: req.WorkExperienceRequired,
		EducationRequired:      req.EducationRequired,
		PositionCount:          1,
		SkillIDs:               req.SkillIDs,
		ExpiredAt:              req.ExpiredAt,
	}
	if req.PositionCount != nil {
		job.PositionCount = *req.PositionCount
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	id, err := s.store.Create(storeCtx, job)
	if err != nil {
		return nil, db.Translate(err, "job")
	}
	return s.get(ctx, id)
}

// GetOwn returns a posting to its owning company.
func (s *Service) GetOwn(ctx context.Context, p guard.Principal, id int64) (*Job, error) {
	job, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.CanModifyJob(p, job.Facts()); err != nil {
		return nil, err
	}
	return job, nil
}

// Update applies a partial update on behalf of the owning company.
func (s *Service) Update(ctx context.Context, p guard.Principal, id int64, req UpdateJobRequest) (*Job, error) {
	job, err := s.GetOwn(ctx, p, id)
	if err != nil {
		return nil, err
	}

	switch {
	case req.PositionName.Null:
		return nil, apperror.NewValidationError("positionName cannot be cleared", nil)
	case req.Description.Null:
		return nil, apperror.NewValidationError("description cannot be cleared", nil)
	case req.IndustryLevel1ID.Null:
		return nil, apperror.NewValidationError("industryLevel1Id cannot be cleared", nil)
	case req.CityID.Null:
		return nil, apperror.NewValidationError("cityId cannot be cleared", nil)
	case req.PositionCount.Null:
		return nil, apperror.NewValidationError("positionCount cannot be cleared", nil)
	case req.Status.Null:
		return nil, apperror.NewValidationError("status cannot be cleared", nil)
	}

	salaryMin, salaryMax := job.SalaryMin, job.SalaryMax
	if req.SalaryMin.Set {
		salaryMin = req.SalaryMin.Ptr()
	}
	if req.SalaryMax.Set {
		salaryMax = req.SalaryMax.Ptr()
	}
	if err := checkSalary(salaryMin, salaryMax); err != nil {
		return nil, err
	}
	if req.ExpiredAt.HasValue() && !req.ExpiredAt.Value.After(s.now()) {
		return nil, apperror.NewValidationError("expiredAt must be in the future", nil)
	}

	patch := JobPatch{UpdateJobRequest: req, Publish: req.Status.HasValue() && Status(req.Status.Value) == StatusPublished}
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Update(storeCtx, id, patch); err != nil {
		return nil, db.Translate(err, "job")
	}
	return s.get(ctx, id)
}

// Delete removes a posting on behalf of the owning company. Its applications
// and favorites go with it.
func (s *Service) Delete(ctx context.Context, p guard.Principal, id int64) error {
	if _, err := s.GetOwn(ctx, p, id); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return db.Translate(s.store.Delete(ctx, id), "job")
}

func (s *Service) get(ctx context.Context, id int64) (*Job, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, db.Translate(err, "job")
	}
	return job, nil
}

func checkSalary(lo, hi *float64) error {
	if lo != nil && hi != nil && *hi < *lo {
		return apperror.NewValidationError("salaryMax must be greater than or equal to salaryMin", nil)
	}
	return nil
}
