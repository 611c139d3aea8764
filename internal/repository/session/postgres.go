package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"klassart-storefront/internal/domain"
)

type postgresRepo struct {
	pool    *pgxpool.Pool
	profile string
}

// NewPostgres keeps one row per storefront profile in storefront_sessions.
func NewPostgres(pool *pgxpool.Pool, profile string) Repository {
	return &postgresRepo{pool: pool, profile: profile}
}

func (r *postgresRepo) Load(ctx context.Context) (*domain.Session, error) {
	const q = `
SELECT user_id, session_id
FROM storefront_sessions
WHERE profile = $1
LIMIT 1
`
	var out domain.Session
	if err := r.pool.QueryRow(ctx, q, r.profile).Scan(&out.UserID, &out.SessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Save(ctx context.Context, s domain.Session) error {
	const q = `
INSERT INTO storefront_sessions (profile, user_id, session_id, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (profile) DO UPDATE
SET user_id = EXCLUDED.user_id, session_id = EXCLUDED.session_id, updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, r.profile, s.UserID, s.SessionID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM storefront_sessions WHERE profile = $1`, r.profile)
	return err
}
