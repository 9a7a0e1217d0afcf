package applications

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/db"
	"github.com/user/talenthub/guard"
)

// uniqueApplication is the constraint enforcing one application per talent and job.
const uniqueApplication = "applications_talent_job_key"

var (
	errAlreadyApplied = apperror.NewConflictError("already applied", nil)
	errStatusChanged  = apperror.NewConflictError("application status changed, reload and try again", nil)
)

// Service implements the application operations.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a new applications Service. timeout bounds each store call.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// Apply submits the talent's application to a published posting.
func (s *Service) Apply(ctx context.Context, p guard.Principal, req ApplyRequest) (*ApplyResponse, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.store.JobFacts(storeCtx, req.JobID)
	if err != nil {
		return nil, db.Translate(err, "job")
	}
	if err := guard.CanApply(p, job); err != nil {
		return nil, err
	}

	_, err = s.store.Find(storeCtx, p.TalentID, req.JobID)
	switch {
	case err == nil:
		return nil, errAlreadyApplied
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, db.Translate(err, "application")
	}

	id, err := s.store.Create(storeCtx, p.TalentID, req.JobID, req.CoverLetter)
	if db.IsUniqueViolation(err, uniqueApplication) {
		return nil, errAlreadyApplied
	}
	if err != nil {
		return nil, db.Translate(err, "application")
	}
	log.Printf("talent %d applied to job %d (application %d)", p.TalentID, req.JobID, id)
	return &ApplyResponse{ApplicationID: id, Status: guard.StatusPending}, nil
}

// Check reports whether p applied to the job. Anonymous callers and companies
// never have.
func (s *Service) Check(ctx context.Context, p *guard.Principal, jobID int64) (*CheckResponse, error) {
	if p == nil || !p.IsTalent() {
		return &CheckResponse{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	app, err := s.store.Find(ctx, p.TalentID, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &CheckResponse{}, nil
	}
	if err != nil {
		return nil, db.Translate(err, "application")
	}
	status := app.Status
	return &CheckResponse{HasApplied: true, Status: &status}, nil
}

// ListOwn returns the talent's applications, newest first.
func (s *Service) ListOwn(ctx context.Context, p guard.Principal, status guard.ApplicationStatus) ([]Application, error) {
	if err := guard.CanListApplications(p); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	apps, err := s.store.ListByTalent(ctx, p.TalentID, status)
	if err != nil {
		return nil, db.Translate(err, "application")
	}
	if apps == nil {
		apps = []Application{}
	}
	return apps, nil
}

// GetOwn returns one of the talent's applications.
func (s *Service) GetOwn(ctx context.Context, p guard.Principal, id int64) (*Application, error) {
	app, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.CanReadOwnApplication(p, app.Facts()); err != nil {
		return nil, err
	}
	return app, nil
}

// Withdraw moves the talent's application to withdrawn.
func (s *Service) Withdraw(ctx context.Context, p guard.Principal, id int64) (*Application, error) {
	app, err := s.GetOwn(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := guard.CanTransition(app.Status, guard.StatusWithdrawn, auth.RoleTalent); err != nil {
		return nil, err
	}
	if err := s.update(ctx, id, StatusChange{From: app.Status, Status: guard.StatusWithdrawn}); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// ListResumes returns applications to the company's postings, newest first.
func (s *Service) ListResumes(ctx context.Context, p guard.Principal, f ResumeFilter) ([]Application, error) {
	if err := guard.CanListResumes(p); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	apps, err := s.store.ListByCompany(ctx, p.CompanyID, f)
	if err != nil {
		return nil, db.Translate(err, "application")
	}
	if apps == nil {
		apps = []Application{}
	}
	return apps, nil
}

// GetResume returns an application to one of the company's postings together
// with the applicant's full profile.
func (s *Service) GetResume(ctx context.Context, p guard.Principal, id int64) (*Resume, error) {
	app, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.CanReviewApplication(p, app.Facts()); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	profile, err := s.store.Talent(ctx, app.Talent.ID)
	if err != nil {
		return nil, db.Translate(err, "talent profile")
	}
	return &Resume{Application: *app, TalentProfile: profile}, nil
}

// UpdateStatus records the company's review decision and optional reply.
func (s *Service) UpdateStatus(ctx context.Context, p guard.Principal, id int64, req UpdateStatusRequest) (*Application, error) {
	app, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard.CanReviewApplication(p, app.Facts()); err != nil {
		return nil, err
	}
	to := guard.ApplicationStatus(req.Status)
	if err := guard.CanTransition(app.Status, to, auth.RoleCompany); err != nil {
		return nil, err
	}
	if err := s.update(ctx, id, StatusChange{From: app.Status, Status: to, Reply: req.CompanyReply}); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id int64) (*Application, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, db.Translate(err, "application")
	}
	return app, nil
}

func (s *Service) update(ctx context.Context, id int64, change StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.store.UpdateStatus(ctx, id, change)
	if errors.Is(err, ErrStatusChanged) {
		log.Printf("application %d left %s before the change to %s", id, change.From, change.Status)
		return errStatusChanged
	}
	return db.Translate(err, "application")
}
