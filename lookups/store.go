package lookups

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) ListProvinces(ctx context.Context) ([]Province, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, code FROM provinces ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Province, error) {
		var p Province
		err := row.Scan(&p.ID, &p.Name, &p.Code)
		return p, err
	})
}

func (s *PgStore) ListCities(ctx context.Context, provinceID int64) ([]City, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, province_id, name, code FROM cities
		 WHERE $1::bigint = 0 OR province_id = $1
		 ORDER BY id`, provinceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (City, error) {
		var c City
		err := row.Scan(&c.ID, &c.ProvinceID, &c.Name, &c.Code)
		return c, err
	})
}

func (s *PgStore) ListIndustriesLevel1(ctx context.Context) ([]IndustryLevel1, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, code FROM industries_level1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (IndustryLevel1, error) {
		var i IndustryLevel1
		err := row.Scan(&i.ID, &i.Name, &i.Code)
		return i, err
	})
}

func (s *PgStore) ListIndustriesLevel2(ctx context.Context, level1ID int64) ([]IndustryLevel2, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, industry_level1_id, name, code FROM industries_level2
		 WHERE $1::bigint = 0 OR industry_level1_id = $1
		 ORDER BY id`, level1ID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (IndustryLevel2, error) {
		var i IndustryLevel2
		err := row.Scan(&i.ID, &i.IndustryLevel1ID, &i.Name, &i.Code)
		return i, err
	})
}

func (s *PgStore) ListSkills(ctx context.Context, category string) ([]Skill, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, category FROM skills
		 WHERE $1::text = '' OR category = $1
		 ORDER BY category NULLS LAST, name`, category)
	if err != nil {
		return nil, err
	}
	return CollectSkills(rows)
}

// CollectSkills scans id, name, category rows. The profile and job stores share it.
func CollectSkills(rows pgx.Rows) ([]Skill, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Skill, error) {
		var sk Skill
		err := row.Scan(&sk.ID, &sk.Name, &sk.Category)
		return sk, err
	})
}
