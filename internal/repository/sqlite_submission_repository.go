package repository

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/ecovolt/backend/internal/model"
)

const sqliteCreateSubmissions = `CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT,
	project_type TEXT,
	message TEXT NOT NULL,
	ip TEXT,
	user_agent TEXT
)`

// SQLiteSubmissionRepository stores submissions in a SQLite database.
// AUTOINCREMENT keeps identifiers strictly increasing even after deletes.
type SQLiteSubmissionRepository struct {
	db     *sql.DB
	schema atomic.Bool
}

// NewSQLiteSubmissionRepository creates a SQLiteSubmissionRepository on db.
func NewSQLiteSubmissionRepository(db *sql.DB) *SQLiteSubmissionRepository {
	return &SQLiteSubmissionRepository{db: db}
}

var _ SubmissionRepository = (*SQLiteSubmissionRepository)(nil)

func (r *SQLiteSubmissionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteSubmissionRepository) EnsureSchema(ctx context.Context) error {
	if r.schema.Load() {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqliteCreateSubmissions); err != nil {
		return err
	}
	r.schema.Store(true)
	return nil
}

func (r *SQLiteSubmissionRepository) SchemaExists(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'submissions'`,
	).Scan(&n)
	return n > 0, err
}

func (r *SQLiteSubmissionRepository) Save(ctx context.Context, sub *model.Submission) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO submissions (created_at, name, email, phone, project_type, message, ip, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.CreatedAt, sub.Name, sub.Email, sub.Phone, sub.ProjectType, sub.Message, sub.IP, sub.UserAgent,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = id
	return nil
}

func (r *SQLiteSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, name, email, COALESCE(phone, ''), COALESCE(project_type, ''), message
		 FROM submissions
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
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

func (r *SQLiteSubmissionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n)
	return n, err
}
