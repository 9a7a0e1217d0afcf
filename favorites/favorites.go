// Package favorites lets talents bookmark job postings.
package favorites

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/talenthub/db"
	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/jobs"
)

// FavoriteJob is a bookmarked posting.
type FavoriteJob struct {
	jobs.Job
	FavoritedAt time.Time `json:"favoritedAt"`
}

// ToggleRequest is the body of POST /api/favorites/toggle.
type ToggleRequest struct {
	JobID int64 `json:"jobId" validate:"required,gt=0"`
}

// ToggleResponse reports the state after a toggle.
type ToggleResponse struct {
	Success    bool `json:"success"`
	IsFavorite bool `json:"isFavorite"`
}

// CheckResponse reports whether a posting is bookmarked.
type CheckResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

// Store is the persistence the favorites service needs.
type Store interface {
	// JobExists returns pgx.ErrNoRows when the posting does not exist.
	JobExists(ctx context.Context, jobID int64) error
	IsFavorite(ctx context.Context, talentID, jobID int64) (bool, error)
	Add(ctx context.Context, talentID, jobID int64) error
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, talentID, jobID int64) (bool, error)
	// List returns bookmarked postings that are still published, most recent bookmark first.
	List(ctx context.Context, talentID int64) ([]FavoriteJob, error)
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) JobExists(ctx context.Context, jobID int64) error {
	var id int64
	return s.pool.QueryRow(ctx, `SELECT id FROM job_positions WHERE id = $1`, jobID).Scan(&id)
}

func (s *PgStore) IsFavorite(ctx context.Context, talentID, jobID int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM job_favorites WHERE talent_id = $1 AND job_position_id = $2)`,
		talentID, jobID,
	).Scan(&ok)
	return ok, err
}

func (s *PgStore) Add(ctx context.Context, talentID, jobID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_favorites (talent_id, job_position_id) VALUES ($1, $2)`, talentID, jobID)
	return err
}

func (s *PgStore) Remove(ctx context.Context, talentID, jobID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM job_favorites WHERE talent_id = $1 AND job_position_id = $2`, talentID, jobID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PgStore) List(ctx context.Context, talentID int64) ([]FavoriteJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobs.JobColumns+`, f.created_at`+jobs.JobFrom+`
		JOIN job_favorites f ON f.job_position_id = j.id
		WHERE f.talent_id = $1 AND j.status = 'published'
		ORDER BY f.created_at DESC, j.id DESC`, talentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (FavoriteJob, error) {
		var fav FavoriteJob
		j, err := jobs.ScanJob(row, &fav.FavoritedAt)
		if err != nil {
			return FavoriteJob{}, err
		}
		fav.Job = *j
		return fav, nil
	})
}

// Service implements the favorites operations.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a new favorites Service. timeout bounds each store call.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// Toggle bookmarks the posting, or removes the bookmark if there is one.
func (s *Service) Toggle(ctx context.Context, p guard.Principal, jobID int64) (*ToggleResponse, error) {
	if err := guard.CanUseFavorites(p); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.JobExists(ctx, jobID); err != nil {
		return nil, db.Translate(err, "job")
	}
	removed, err := s.store.Remove(ctx, p.TalentID, jobID)
	if err != nil {
		return nil, db.Translate(err, "favorite")
	}
	if removed {
		return &ToggleResponse{Success: true, IsFavorite: false}, nil
	}
	// A concurrent toggle may have inserted the row first. It is a favorite either way.
	if err := s.store.Add(ctx, p.TalentID, jobID); err != nil && !db.IsUniqueViolation(err, "") {
		return nil, db.Translate(err, "favorite")
	}
	return &ToggleResponse{Success: true, IsFavorite: true}, nil
}

// Check reports whether p bookmarked the posting. Anonymous callers and
// companies never have.
func (s *Service) Check(ctx context.Context, p *guard.Principal, jobID int64) (*CheckResponse, error) {
	if p == nil || !p.IsTalent() {
		return &CheckResponse{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ok, err := s.store.IsFavorite(ctx, p.TalentID, jobID)
	if err != nil {
		return nil, db.Translate(err, "favorite")
	}
	return &CheckResponse{IsFavorite: ok}, nil
}

// List returns the talent's bookmarked postings that are still published.
func (s *Service) List(ctx context.Context, p guard.Principal) ([]FavoriteJob, error) {
	if err := guard.CanUseFavorites(p); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	favs, err := s.store.List(ctx, p.TalentID)
	if err != nil {
		return nil, db.Translate(err, "favorite")
	}
	if favs == nil {
		favs = []FavoriteJob{}
	}
	return favs, nil
}
