package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatbot-router/internal/domain"
)

// UserRepository guarda los perfiles de la plataforma en Postgres.
type UserRepository interface {
	Upsert(ctx context.Context, profile domain.UserProfile) error
	GetByID(ctx context.Context, userID string) (domain.UserProfile, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Upsert(ctx context.Context, profile domain.UserProfile) error {
	const query = `
		INSERT INTO users (fb_id, first_name, last_name, profile_pic, locale, timezone, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (fb_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_pic = EXCLUDED.profile_pic,
			locale = EXCLUDED.locale,
			timezone = EXCLUDED.timezone,
			gender = EXCLUDED.gender
	`
	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.ProfilePic,
		profile.Locale,
		profile.Timezone,
		profile.Gender,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, userID string) (domain.UserProfile, error) {
	const query = `
		SELECT fb_id, first_name, last_name, profile_pic, locale, timezone, gender
		FROM users
		WHERE fb_id = $1
	`
	var p domain.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.ProfilePic,
		&p.Locale,
		&p.Timezone,
		&p.Gender,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	return p, err
}
