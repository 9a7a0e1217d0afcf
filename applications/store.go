package applications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/users"
)

// Store is the persistence the applications service needs. Missing rows are pgx.ErrNoRows.
type Store interface {
	JobFacts(ctx context.Context, jobID int64) (guard.JobFacts, error)
	// Find returns the talent's application to a job.
	Find(ctx context.Context, talentID, jobID int64) (*Application, error)
	Create(ctx context.Context, talentID, jobID int64, coverLetter *string) (int64, error)
	Get(ctx context.Context, id int64) (*Application, error)
	ListByTalent(ctx context.Context, talentID int64, status guard.ApplicationStatus) ([]Application, error)
	ListByCompany(ctx context.Context, companyID int64, f ResumeFilter) ([]Application, error)
	UpdateStatus(ctx context.Context, id int64, change StatusChange) error
	Talent(ctx context.Context, talentID int64) (*users.TalentProfile, error)
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool    *pgxpool.Pool
	talents *users.PgStore
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, talents: users.NewPgStore(pool)}
}

const selectApplications = `
	SELECT a.id, a.job_position_id, j.position_name, j.company_id, co.company_name, co.logo_url,
	       a.status::text, a.cover_letter, a.applied_at, a.reviewed_at, a.company_reply, a.reply_at,
	       t.id, t.real_name, t.education::text, t.work_experience_years, t.avatar_url
	FROM applications a
	JOIN job_positions j ON j.id = a.job_position_id
	JOIN companies co ON co.id = j.company_id
	JOIN talents t ON t.id = a.talent_id`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.JobID, &a.PositionName, &a.CompanyID, &a.CompanyName, &a.CompanyLogoURL,
		&a.Status, &a.CoverLetter, &a.AppliedAt, &a.ReviewedAt, &a.CompanyReply, &a.ReplyAt,
		&a.Talent.ID, &a.Talent.RealName, &a.Talent.Education, &a.Talent.WorkExperienceYears, &a.Talent.AvatarURL)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectApplications(rows pgx.Rows) ([]Application, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Application, error) {
		a, err := scanApplication(row)
		if err != nil {
			return Application{}, err
		}
		return *a, nil
	})
}

func (s *PgStore) JobFacts(ctx context.Context, jobID int64) (guard.JobFacts, error) {
	f := guard.JobFacts{ID: jobID}
	err := s.pool.QueryRow(ctx,
		`SELECT company_id, status = 'published' FROM job_positions WHERE id = $1`, jobID,
	).Scan(&f.CompanyID, &f.Published)
	return f, err
}

func (s *PgStore) Find(ctx context.Context, talentID, jobID int64) (*Application, error) {
	return scanApplication(s.pool.QueryRow(ctx,
		selectApplications+` WHERE a.talent_id = $1 AND a.job_position_id = $2`, talentID, jobID))
}

func (s *PgStore) Create(ctx context.Context, talentID, jobID int64, coverLetter *string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO applications (talent_id, job_position_id, cover_letter)
		VALUES ($1, $2, $3)
		RETURNING id`, talentID, jobID, coverLetter,
	).Scan(&id)
	return id, err
}

func (s *PgStore) Get(ctx context.Context, id int64) (*Application, error) {
	return scanApplication(s.pool.QueryRow(ctx, selectApplications+` WHERE a.id = $1`, id))
}

func (s *PgStore) ListByTalent(ctx context.Context, talentID int64, status guard.ApplicationStatus) ([]Application, error) {
	rows, err := s.pool.Query(ctx, selectApplications+`
		WHERE a.talent_id = $1 AND ($2::text = '' OR a.status::text = $2)
		ORDER BY a.applied_at DESC, a.id DESC`, talentID, string(status))
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (s *PgStore) ListByCompany(ctx context.Context, companyID int64, f ResumeFilter) ([]Application, error) {
	rows, err := s.pool.Query(ctx, selectApplications+`
		WHERE j.company_id = $1
		  AND ($2::text = '' OR a.status::text = $2)
		  AND ($3::bigint = 0 OR a.job_position_id = $3)
		ORDER BY a.applied_at DESC, a.id DESC`, companyID, string(f.Status), f.JobID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

// ErrStatusChanged reports that the application no longer holds the status a
// change was validated against.
var ErrStatusChanged = errors.New("application status changed concurrently")

// UpdateStatus changes the status and stamps reviewed_at and the reply in the
// same statement. reviewed_at is stamped on entering a review outcome.
// The row is only updated while its status still equals change.From.
func (s *PgStore) UpdateStatus(ctx context.Context, id int64, change StatusChange) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE applications SET
			reviewed_at = CASE
				WHEN $2::text IN ('reviewed', 'accepted', 'rejected') AND status::text <> $2::text THEN now()
				ELSE reviewed_at END,
			status = $2::text::application_status,
			company_reply = COALESCE($3::text, company_reply),
			reply_at = CASE WHEN $3::text IS NULL THEN reply_at ELSE now() END
		WHERE id = $1 AND status::text = $4::text`, id, string(change.Status), change.Reply, string(change.From))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrStatusChanged
}

func (s *PgStore) Talent(ctx context.Context, talentID int64) (*users.TalentProfile, error) {
	return s.talents.GetTalent(ctx, talentID)
}
