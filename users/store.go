package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/db"
	"github.com/user/talenthub/lookups"
)

// Store is the persistence the users service needs. Missing rows are pgx.ErrNoRows.
type Store interface {
	GetUser(ctx context.Context, userID int64) (*auth.User, error)
	TalentIDByUser(ctx context.Context, userID int64) (int64, error)
	CompanyIDByUser(ctx context.Context, userID int64) (int64, error)
	GetTalent(ctx context.Context, talentID int64) (*TalentProfile, error)
	GetCompany(ctx context.Context, companyID int64) (*CompanyProfile, error)
	UpdateTalent(ctx context.Context, talentID int64, patch TalentPatch) error
	UpdateCompany(ctx context.Context, companyID int64, patch CompanyPatch) error
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) GetUser(ctx context.Context, userID int64) (*auth.User, error) {
	var u auth.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, phone, user_type::text, created_at FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Phone, &u.UserType, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PgStore) TalentIDByUser(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM talents WHERE user_id = $1`, userID).Scan(&id)
	return id, err
}

func (s *PgStore) CompanyIDByUser(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM companies WHERE user_id = $1`, userID).Scan(&id)
	return id, err
}

func (s *PgStore) GetTalent(ctx context.Context, talentID int64) (*TalentProfile, error) {
	var t TalentProfile
	err := s.pool.QueryRow(ctx, `
		SELECT t.id, t.user_id, t.real_name, t.gender::text, to_char(t.birth_date, 'YYYY-MM-DD'),
		       t.education::text, t.major, t.work_experience_years, t.city_id, c.name,
		       t.avatar_url, t.bio, t.created_at, t.updated_at
		FROM talents t
		LEFT JOIN cities c ON c.id = t.city_id
		WHERE t.id = $1`, talentID,
	).Scan(&t.ID, &t.UserID, &t.RealName, &t.Gender, &t.BirthDate,
		&t.Education, &t.Major, &t.WorkExperienceYears, &t.CityID, &t.CityName,
		&t.AvatarURL, &t.Bio, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.name, s.category
		FROM talent_skills ts
		JOIN skills s ON s.id = ts.skill_id
		WHERE ts.talent_id = $1
		ORDER BY s.id`, talentID)
	if err != nil {
		return nil, err
	}
	if t.Skills, err = lookups.CollectSkills(rows); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PgStore) GetCompany(ctx context.Context, companyID int64) (*CompanyProfile, error) {
	return GetCompanyProfile(ctx, s.pool, companyID)
}

// GetCompanyProfile loads a company with its location and industry names.
// It is shared with the public company directory.
func GetCompanyProfile(ctx context.Context, q db.Querier, companyID int64) (*CompanyProfile, error) {
	var c CompanyProfile
	err := q.QueryRow(ctx, `
		SELECT co.id, co.user_id, co.company_name, co.company_size, co.city_id, ci.name, p.name,
		       co.industry_level1_id, i1.name, co.industry_level2_id, i2.name,
		       co.description, co.logo_url, co.website, co.business_license,
		       co.verification_status::text, co.created_at, co.updated_at
		FROM companies co
		JOIN cities ci ON ci.id = co.city_id
		JOIN provinces p ON p.id = ci.province_id
		JOIN industries_level1 i1 ON i1.id = co.industry_level1_id
		LEFT JOIN industries_level2 i2 ON i2.id = co.industry_level2_id
		WHERE co.id = $1`, companyID,
	).Scan(&c.ID, &c.UserID, &c.CompanyName, &c.CompanySize, &c.CityID, &c.CityName, &c.ProvinceName,
		&c.IndustryLevel1ID, &c.IndustryLevel1Name, &c.IndustryLevel2ID, &c.IndustryLevel2Name,
		&c.Description, &c.LogoURL, &c.Website, &c.BusinessLicense,
		&c.VerificationStatus, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateTalent applies the patch and, when SkillIDs is set, replaces the skill list,
// all in one transaction.
func (s *PgStore) UpdateTalent(ctx context.Context, talentID int64, patch TalentPatch) error {
	var u db.Update
	db.SetOptional(&u, "real_name", patch.RealName)
	db.SetOptional(&u, "gender", patch.Gender)
	db.SetOptional(&u, "birth_date", patch.BirthDate)
	db.SetOptional(&u, "education", patch.Education)
	db.SetOptional(&u, "major", patch.Major)
	db.SetOptional(&u, "work_experience_years", patch.WorkExperienceYears)
	db.SetOptional(&u, "city_id", patch.CityID)
	db.SetOptional(&u, "avatar_url", patch.AvatarURL)
	db.SetOptional(&u, "bio", patch.Bio)
	u.SetRaw("updated_at = now()")
	where := u.Arg(talentID)
	set, args := u.Clause()

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE talents SET `+set+` WHERE id = `+where, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if !patch.SkillIDs.Set {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM talent_skills WHERE talent_id = $1`, talentID); err != nil {
			return err
		}
		if len(patch.SkillIDs.Value) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO talent_skills (talent_id, skill_id)
			 SELECT DISTINCT $1::bigint, skill FROM unnest($2::bigint[]) AS skill`,
			talentID, patch.SkillIDs.Value)
		return err
	})
}

func (s *PgStore) UpdateCompany(ctx context.Context, companyID int64, patch CompanyPatch) error {
	var u db.Update
	db.SetOptional(&u, "company_name", patch.CompanyName)
	db.SetOptional(&u, "company_size", patch.CompanySize)
	db.SetOptional(&u, "city_id", patch.CityID)
	db.SetOptional(&u, "industry_level1_id", patch.IndustryLevel1ID)
	db.SetOptional(&u, "industry_level2_id", patch.IndustryLevel2ID)
	db.SetOptional(&u, "description", patch.Description)
	db.SetOptional(&u, "logo_url", patch.LogoURL)
	db.SetOptional(&u, "website", patch.Website)
	db.SetOptional(&u, "business_license", patch.BusinessLicense)
	u.SetRaw("updated_at = now()")
	where := u.Arg(companyID)
	set, args := u.Clause()

	tag, err := s.pool.Exec(ctx, `UPDATE companies SET `+set+` WHERE id = `+where, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
