package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/talenthub/db"
)

// NewAccount is everything needed to create a user together with its profile.
type NewAccount struct {
	Phone            string
	PasswordHash     string
	Role             Role
	RealName         string
	CompanyName      string
	CityID           int64
	IndustryLevel1ID int64
}

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateAccount(ctx context.Context, acc NewAccount) (*User, error)
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// PgStore implements UserStore on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const phoneConstraint = "users_phone_key"

// CreateAccount inserts the user and its talent or company profile in one transaction,
// so a failed profile insert never leaves an orphan user behind.
func (s *PgStore) CreateAccount(ctx context.Context, acc NewAccount) (*User, error) {
	user := &User{Phone: acc.Phone, PasswordHash: acc.PasswordHash, UserType: acc.Role}
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (phone, password, user_type) VALUES ($1, $2, $3)
			 RETURNING id, created_at`,
			acc.Phone, acc.PasswordHash, string(acc.Role),
		).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			return err
		}
		switch acc.Role {
		case RoleTalent:
			_, err = tx.Exec(ctx, `INSERT INTO talents (user_id, real_name) VALUES ($1, $2)`, user.ID, acc.RealName)
		case RoleCompany:
			_, err = tx.Exec(ctx,
				`INSERT INTO companies (user_id, company_name, city_id, industry_level1_id) VALUES ($1, $2, $3, $4)`,
				user.ID, acc.CompanyName, acc.CityID, acc.IndustryLevel1ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

const userColumns = `id, phone, password, user_type, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Phone, &u.PasswordHash, &u.UserType, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByPhone returns pgx.ErrNoRows (wrapped by the caller) when no user has that phone.
func (s *PgStore) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// GetUserByID loads a user by primary key.
func (s *PgStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}
