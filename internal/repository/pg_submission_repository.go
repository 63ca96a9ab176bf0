package repository

import (
	"context"
	"sync/atomic"

	"github.com/ecovolt/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgCreateSubmissions = `CREATE TABLE IF NOT EXISTS submissions (
	id           BIGSERIAL PRIMARY KEY,
	created_at   TEXT NOT NULL,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	phone        TEXT,
	project_type TEXT,
	message      TEXT NOT NULL,
	ip           TEXT,
	user_agent   TEXT
)`

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool   *pgxpool.Pool
	schema atomic.Bool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

// Ensure PgSubmissionRepository implements SubmissionRepository at compile time.
var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

func (r *PgSubmissionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema runs the CREATE TABLE IF NOT EXISTS once per process.
func (r *PgSubmissionRepository) EnsureSchema(ctx context.Context) error {
	if r.schema.Load() {
		return nil
	}
	if _, err := r.pool.Exec(ctx, pgCreateSubmissions); err != nil {
		return err
	}
	r.schema.Store(true)
	return nil
}

func (r *PgSubmissionRepository) SchemaExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT to_regclass('submissions') IS NOT NULL`).Scan(&exists)
	return exists, err
}

// Save inserts a new submissions row and populates sub.ID from the RETURNING clause.
func (r *PgSubmissionRepository) Save(ctx context.Context, sub *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (created_at, name, email, phone, project_type, message, ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		sub.CreatedAt, sub.Name, sub.Email, sub.Phone, sub.ProjectType, sub.Message, sub.IP, sub.UserAgent,
	).Scan(&sub.ID)
}

func (r *PgSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, created_at, name, email, COALESCE(phone, ''), COALESCE(project_type, ''), message
		 FROM submissions
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Name, &s.Email, &s.Phone, &s.ProjectType, &s.Message); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

func (r *PgSubmissionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n)
	return n, err
}
