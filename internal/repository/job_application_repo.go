package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatbot-router/internal/domain"
)

// JobApplicationRepository define la persistencia de postulaciones.
type JobApplicationRepository interface {
	Create(ctx context.Context, app domain.JobApplication) error
	ListRecent(ctx context.Context, limit int) ([]domain.JobApplication, error)
}

type PgJobApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewPgJobApplicationRepository(pool *pgxpool.Pool) *PgJobApplicationRepository {
	return &PgJobApplicationRepository{pool: pool}
}

func (r *PgJobApplicationRepository) Create(ctx context.Context, app domain.JobApplication) error {
	const query = `
		INSERT INTO job_applications (id, phone_number, user_name, previous_job, years_of_experience, job_vacancy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.PhoneNumber,
		app.UserName,
		app.PreviousJob,
		app.YearsOfExperience,
		app.JobVacancy,
		app.CreatedAt,
	)
	return err
}

func (r *PgJobApplicationRepository) ListRecent(ctx context.Context, limit int) ([]domain.JobApplication, error) {
	const query = `
		SELECT id, phone_number, user_name, previous_job, years_of_experience, job_vacancy, created_at
		FROM job_applications
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []domain.JobApplication{}
	for rows.Next() {
		var app domain.JobApplication
		if err := rows.Scan(
			&app.ID,
			&app.PhoneNumber,
			&app.UserName,
			&app.PreviousJob,
			&app.YearsOfExperience,
			&app.JobVacancy,
			&app.CreatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}
