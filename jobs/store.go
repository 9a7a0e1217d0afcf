package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/talenthub/db"
	"github.com/user/talenthub/lookups"
)

// Store is the persistence the jobs service needs. Missing rows are pgx.ErrNoRows.
type Store interface {
	Search(ctx context.Context, f SearchFilter) ([]Job, int64, error)
	// Get loads a posting in any status, with its skills.
	Get(ctx context.Context, id int64) (*Job, error)
	ListByCompany(ctx context.Context, companyID int64, status Status) ([]Job, error)
	Create(ctx context.Context, job NewJob) (int64, error)
	Update(ctx context.Context, id int64, patch JobPatch) error
	Delete(ctx context.Context, id int64) error
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// JobColumns selects a Job in ScanJob order from job_positions j joined with
// companies co and cities ci.
const JobColumns = `
	j.id, j.company_id, co.company_name, co.logo_url, j.position_name, j.description,
	j.industry_level1_id, j.industry_level2_id, j.salary_min::float8, j.salary_max::float8,
	j.city_id, ci.name, j.work_experience_required, j.education_required::text,
	j.position_count, j.status::text, j.published_at, j.expired_at, j.created_at, j.updated_at`

// JobFrom is the FROM clause matching JobColumns.
const JobFrom = `
	FROM job_positions j
	JOIN companies co ON co.id = j.company_id
	JOIN cities ci ON ci.id = j.city_id`

// ScanJob scans JobColumns, followed by any extra destinations.
func ScanJob(row pgx.Row, extra ...any) (*Job, error) {
	var j Job
	dest := []any{
		&j.ID, &j.CompanyID, &j.CompanyName, &j.CompanyLogoURL, &j.PositionName, &j.Description,
		&j.IndustryLevel1ID, &j.IndustryLevel2ID, &j.SalaryMin, &j.SalaryMax,
		&j.CityID, &j.CityName, &j.WorkExperienceRequired, &j.EducationRequired,
		&j.PositionCount, &j.Status, &j.PublishedAt, &j.ExpiredAt, &j.CreatedAt, &j.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &j, nil
}

// CollectJobs scans every row with ScanJob.
func CollectJobs(rows pgx.Rows) ([]Job, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Job, error) {
		j, err := ScanJob(row)
		if err != nil {
			return Job{}, err
		}
		return *j, nil
	})
}

// conditions accumulates AND-ed WHERE terms with numbered placeholders.
type conditions struct {
	terms []string
	args  []any
}

// add appends a term; each %s in term is replaced by the placeholder of v.
func (c *conditions) add(term string, v any) {
	c.args = append(c.args, v)
	c.terms = append(c.terms, strings.ReplaceAll(term, "%s", fmt.Sprintf("$%d", len(c.args))))
}

func (c *conditions) sql() string {
	if len(c.terms) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.terms, " AND ")
}

func (s *PgStore) Search(ctx context.Context, f SearchFilter) ([]Job, int64, error) {
	var c conditions
	c.add("j.status = %s", string(StatusPublished))
	if f.CityID > 0 {
		c.add("j.city_id = %s", f.CityID)
	}
	if f.ProvinceID > 0 {
		c.add("j.city_id IN (SELECT id FROM cities WHERE province_id = %s)", f.ProvinceID)
	}
	if f.IndustryLevel1ID > 0 {
		c.add("j.industry_level1_id = %s", f.IndustryLevel1ID)
	}
	if f.IndustryLevel2ID > 0 {
		c.add("j.industry_level2_id = %s", f.IndustryLevel2ID)
	}
	if f.SalaryMin != nil {
		c.add("j.salary_min >= %s", *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		c.add("j.salary_max <= %s", *f.SalaryMax)
	}
	if f.WorkExperience != nil {
		c.add("COALESCE(j.work_experience_required, 0) <= %s", *f.WorkExperience)
	}
	if f.Education != "" {
		c.add("j.education_required = %s", f.Education)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		c.add("(j.position_name ILIKE %s OR j.description ILIKE %s)", db.ContainsPattern(kw))
	}
	where := c.sql()

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*)`+JobFrom+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append(c.args, f.Page.Limit, f.Page.Offset())
	query := `SELECT ` + JobColumns + JobFrom + where +
		fmt.Sprintf(` ORDER BY j.published_at DESC NULLS LAST, j.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	jobs, err := CollectJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *PgStore) Get(ctx context.Context, id int64) (*Job, error) {
	j, err := ScanJob(s.pool.QueryRow(ctx, `SELECT `+JobColumns+JobFrom+` WHERE j.id = $1`, id))
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.name, s.category
		FROM job_skills js
		JOIN skills s ON s.id = js.skill_id
		WHERE js.job_position_id = $1
		ORDER BY s.id`, id)
	if err != nil {
		return nil, err
	}
	if j.Skills, err = lookups.CollectSkills(rows); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *PgStore) ListByCompany(ctx context.Context, companyID int64, status Status) ([]Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+JobColumns+`,
		       (SELECT count(*) FROM applications a WHERE a.job_position_id = j.id)`+JobFrom+`
		WHERE j.company_id = $1 AND ($2::text = '' OR j.status::text = $2)
		ORDER BY j.created_at DESC, j.id DESC`, companyID, string(status))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Job, error) {
		var count int64
		j, err := ScanJob(row, &count)
		if err != nil {
			return Job{}, err
		}
		j.ApplicationCount = &count
		return *j, nil
	})
}

// Create inserts a published posting and its skills in one transaction.
func (s *PgStore) Create(ctx context.Context, job NewJob) (int64, error) {
	var id int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO job_positions (
				company_id, position_name, description, industry_level1_id, industry_level2_id,
				salary_min, salary_max, city_id, work_experience_required, education_required,
				position_count, status, published_at, expired_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'published', now(), $12)
			RETURNING id`,
			job.CompanyID, job.PositionName, job.Description, job.IndustryLevel1ID, job.IndustryLevel2ID,
			job.SalaryMin, job.SalaryMax, job.CityID, job.WorkExperienceRequired, job.EducationRequired,
			job.PositionCount, job.ExpiredAt,
		).Scan(&id)
		if err != nil {
			return err
		}
		return replaceSkills(ctx, tx, id, job.SkillIDs)
	})
	return id, err
}

func replaceSkills(ctx context.Context, tx pgx.Tx, jobID int64, skillIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM job_skills WHERE job_position_id = $1`, jobID); err != nil {
		return err
	}
	if len(skillIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO job_skills (job_position_id, skill_id)
		 SELECT DISTINCT $1::bigint, skill FROM unnest($2::bigint[]) AS skill`,
		jobID, skillIDs)
	return err
}

func (s *PgStore) Update(ctx context.Context, id int64, patch JobPatch) error {
	var u db.Update
	db.SetOptional(&u, "position_name", patch.PositionName)
	db.SetOptional(&u, "description", patch.Description)
	db.SetOptional(&u, "industry_level1_id", patch.IndustryLevel1ID)
	db.SetOptional(&u, "industry_level2_id", patch.IndustryLevel2ID)
	db.SetOptional(&u, "salary_min", patch.SalaryMin)
	db.SetOptional(&u, "salary_max", patch.SalaryMax)
	db.SetOptional(&u, "city_id", patch.CityID)
	db.SetOptional(&u, "work_experience_required", patch.WorkExperienceRequired)
	db.SetOptional(&u, "education_required", patch.EducationRequired)
	db.SetOptional(&u, "position_count", patch.PositionCount)
	db.SetOptional(&u, "status", patch.Status)
	db.SetOptional(&u, "expired_at", patch.ExpiredAt)
	if patch.Publish {
		u.SetRaw("published_at = COALESCE(published_at, now())")
	}
	u.SetRaw("updated_at = now()")
	where := u.Arg(id)
	set, args := u.Clause()

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE job_positions SET `+set+` WHERE id = `+where, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if patch.SkillIDs.Set {
			return replaceSkills(ctx, tx, id, patch.SkillIDs.Value)
		}
		return nil
	})
}

func (s *PgStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM job_positions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
