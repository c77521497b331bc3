package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maauso/sfxgen-api/internal/job/id"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sfx_jobs (
    id               TEXT PRIMARY KEY,
    prompt           TEXT NOT NULL,
    duration         INTEGER NOT NULL,
    status           TEXT NOT NULL,
    source_video_url TEXT,
    audio_url        TEXT,
    video_url        TEXT,
    error_message    TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at     TIMESTAMPTZ
);`

// Compile-time check that PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a job repository backed by PostgreSQL.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// OpenPostgresPool connects to databaseURL and verifies the connection.
func OpenPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the jobs table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return recordError("migrate", "", err)
	}
	return nil
}

// Create inserts a new job record.
func (r *PostgresRepository) Create(ctx context.Context, job *Job) (string, error) {
	jobID := id.Generate()
	query := `
INSERT INTO sfx_jobs (id, prompt, duration, status, source_video_url, audio_url, video_url, error_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.pool.Exec(ctx, query,
		jobID,
		job.Prompt,
		job.Duration,
		string(job.Status),
		nullableString(job.SourceVideoURL),
		nullableString(job.AudioURL),
		nullableString(job.VideoURL),
		nullableString(job.ErrorMessage),
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return "", recordError("create", jobID, describePgError(err))
	}
	job.ID = jobID
	return jobID, nil
}

// Update applies a partial update to a processing job.
func (r *PostgresRepository) Update(ctx context.Context, jobID string, u Update) error {
	if err := u.Validate(); err != nil {
		return recordError("update", jobID, err)
	}
	query, args := buildUpdate("sfx_jobs", jobID, u, time.Now().UTC(), dollarPlaceholder)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return recordError("update", jobID, describePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return recordError("update", jobID, ErrJobNotUpdated)
	}
	return nil
}

// FindByID fetches a job by its identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, jobID string) (*Job, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+jobColumns+" FROM sfx_jobs WHERE id = $1", jobID)

	var (
		job                                         Job
		status                                      string
		sourceURL, audioURL, videoURL, errorMessage *string
		completedAt                                 *time.Time
	)
	if err := row.Scan(
		&job.ID,
		&job.Prompt,
		&job.Duration,
		&status,
		&sourceURL,
		&audioURL,
		&videoURL,
		&errorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recordError("find", jobID, ErrJobNotFound)
		}
		return nil, recordError("find", jobID, describePgError(err))
	}
	job.Status = Status(status)
	job.SourceVideoURL = derefString(sourceURL)
	job.AudioURL = derefString(audioURL)
	job.VideoURL = derefString(videoURL)
	job.ErrorMessage = derefString(errorMessage)
	if completedAt != nil {
		job.CompletedAt = *completedAt
	}
	return &job, nil
}

// describePgError adds the SQLSTATE code to server-side errors.
func describePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres %s: %w", pgErr.Code, err)
	}
	return err
}
