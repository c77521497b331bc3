package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maauso/sfxgen-api/internal/job/id"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sfx_jobs (
    id               TEXT PRIMARY KEY,
    prompt           TEXT NOT NULL,
    duration         INTEGER NOT NULL,
    status           TEXT NOT NULL,
    source_video_url TEXT,
    audio_url        TEXT,
    video_url        TEXT,
    error_message    TEXT,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    completed_at     TEXT
);`

// Compile-time check that SQLiteRepository implements Repository.
var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the jobs table if it does not exist.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return recordError("migrate", "", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create inserts a new job record.
func (r *SQLiteRepository) Create(ctx context.Context, job *Job) (string, error) {
	jobID := id.Generate()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sfx_jobs (id, prompt, duration, status, source_video_url, audio_url, video_url, error_message, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		jobID,
		job.Prompt,
		job.Duration,
		string(job.Status),
		nullableString(job.SourceVideoURL),
		nullableString(job.AudioURL),
		nullableString(job.VideoURL),
		nullableString(job.ErrorMessage),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	if err != nil {
		return "", recordError("create", jobID, err)
	}
	job.ID = jobID
	return jobID, nil
}

// Update applies a partial update to a processing job.
func (r *SQLiteRepository) Update(ctx context.Context, jobID string, u Update) error {
	if err := u.Validate(); err != nil {
		return recordError("update", jobID, err)
	}
	query, args := buildUpdate("sfx_jobs", jobID, u, formatTime(time.Now()), numberedPlaceholder)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return recordError("update", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return recordError("update", jobID, err)
	}
	if n == 0 {
		return recordError("update", jobID, ErrJobNotUpdated)
	}
	return nil
}

// FindByID fetches a job by its identifier.
func (r *SQLiteRepository) FindByID(ctx context.Context, jobID string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM sfx_jobs WHERE id = ?", jobID)

	var (
		job                                         Job
		status, createdAt, updatedAt                string
		sourceURL, audioURL, videoURL, errorMessage sql.NullString
		completedAt                                 sql.NullString
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
		&createdAt,
		&updatedAt,
		&completedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordError("find", jobID, ErrJobNotFound)
		}
		return nil, recordError("find", jobID, err)
	}
	job.Status = Status(status)
	job.SourceVideoURL = sourceURL.String
	job.AudioURL = audioURL.String
	job.VideoURL = videoURL.String
	job.ErrorMessage = errorMessage.String
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	if completedAt.Valid {
		job.CompletedAt = parseTime(completedAt.String)
	}
	return &job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
