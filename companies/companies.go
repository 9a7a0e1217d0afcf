// Package companies is the public company directory.
package companies

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/talenthub/db"
	"github.com/user/talenthub/jobs"
	"github.com/user/talenthub/users"
	"github.com/user/talenthub/validation"
)

// Summary is a company as listed in the directory.
type Summary struct {
	ID                 int64   `json:"id"`
	CompanyName        string  `json:"companyName"`
	CompanySize        *string `json:"companySize"`
	LogoURL            *string `json:"logoUrl"`
	CityID             int64   `json:"cityId"`
	CityName           string  `json:"cityName"`
	IndustryLevel1ID   int64   `json:"industryLevel1Id"`
	IndustryLevel1Name string  `json:"industryLevel1Name"`
	VerificationStatus string  `json:"verificationStatus"`
	PublishedJobCount  int64   `json:"publishedJobCount"`
}

// Filter narrows the directory. Zero values mean "any".
type Filter struct {
	CityID           int64
	ProvinceID       int64
	IndustryLevel1ID int64
	IndustryLevel2ID int64
	Keyword          string
	Page             validation.Page
}

// SearchResult is one page of the directory.
type SearchResult struct {
	Companies []Summary `json:"companies"`
	Total     int64     `json:"total"`
}

// Detail is a company page: the profile and its open postings.
type Detail struct {
	*users.CompanyProfile
	Jobs []jobs.Job `json:"jobs"`
}

// Store is the persistence the directory needs. Missing rows are pgx.ErrNoRows.
type Store interface {
	Search(ctx context.Context, f Filter) ([]Summary, int64, error)
	Get(ctx context.Context, id int64) (*users.CompanyProfile, error)
	PublishedJobs(ctx context.Context, companyID int64) ([]jobs.Job, error)
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const directoryWhere = `
	WHERE ($1::bigint = 0 OR co.city_id = $1)
	  AND ($2::bigint = 0 OR ci.province_id = $2)
	  AND ($3::bigint = 0 OR co.industry_level1_id = $3)
	  AND ($4::bigint = 0 OR co.industry_level2_id = $4)
	  AND ($5::text = '' OR co.company_name ILIKE $5 OR co.description ILIKE $5)`

func (s *PgStore) Search(ctx context.Context, f Filter) ([]Summary, int64, error) {
	keyword := ""
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		keyword = db.ContainsPattern(kw)
	}
	args := []any{f.CityID, f.ProvinceID, f.IndustryLevel1ID, f.IndustryLevel2ID, keyword}

	var total int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM companies co
		JOIN cities ci ON ci.id = co.city_id`+directoryWhere, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT co.id, co.company_name, co.company_size, co.logo_url, co.city_id, ci.name,
		       co.industry_level1_id, i1.name, co.verification_status::text,
		       (SELECT count(*) FROM job_positions j WHERE j.company_id = co.id AND j.status = 'published')
		FROM companies co
		JOIN cities ci ON ci.id = co.city_id
		JOIN industries_level1 i1 ON i1.id = co.industry_level1_id`+directoryWhere+`
		ORDER BY co.created_at DESC, co.id DESC
		LIMIT $6 OFFSET $7`, append(args, f.Page.Limit, f.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	companies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var c Summary
		err := row.Scan(&c.ID, &c.CompanyName, &c.CompanySize, &c.LogoURL, &c.CityID, &c.CityName,
			&c.IndustryLevel1ID, &c.IndustryLevel1Name, &c.VerificationStatus, &c.PublishedJobCount)
		return c, err
	})
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

func (s *PgStore) Get(ctx context.Context, id int64) (*users.CompanyProfile, error) {
	return users.GetCompanyProfile(ctx, s.pool, id)
}

func (s *PgStore) PublishedJobs(ctx context.Context, companyID int64) ([]jobs.Job, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+jobs.JobColumns+jobs.JobFrom+`
		WHERE j.company_id = $1 AND j.status = 'published'
		ORDER BY j.published_at DESC NULLS LAST, j.id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	return jobs.CollectJobs(rows)
}

// Service implements the directory operations.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a new companies Service. timeout bounds each store call.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// Search lists companies matching f, newest first.
func (s *Service) Search(ctx context.Context, f Filter) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	companies, total, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, db.Translate(err, "company search")
	}
	if companies == nil {
		companies = []Summary{}
	}
	return &SearchResult{Companies: companies, Total: total}, nil
}

// Get returns a company page.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	profile, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, db.Translate(err, "company")
	}
	// The business license is only shown to the company itself.
	profile.BusinessLicense = nil
	postings, err := s.store.PublishedJobs(ctx, id)
	if err != nil {
		return nil, db.Translate(err, "job")
	}
	if postings == nil {
		postings = []jobs.Job{}
	}
	return &Detail{CompanyProfile: profile, Jobs: postings}, nil
}
