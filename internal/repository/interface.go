package repository

import (
	"context"

	"github.com/ecovolt/backend/internal/model"
)

// DB is anything whose connection liveness can be checked.
type DB interface {
	Ping(ctx context.Context) error
}

// SubmissionRepository persists contact-form submissions.
type SubmissionRepository interface {
	DB

	// EnsureSchema creates the submissions table when it does not exist.
	// It is safe to call on every request.
	EnsureSchema(ctx context.Context) error

	// SchemaExists reports whether the submissions table exists, without
	// creating it.
	SchemaExists(ctx context.Context) (bool, error)

	// Save inserts a new row and populates sub.ID from the database.
	// sub.CreatedAt must already be set by the caller.
	Save(ctx context.Context, sub *model.Submission) error

	// List returns submissions newest first. IP and UserAgent are not loaded.
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error)

	// Count returns the total number of stored submissions.
	Count(ctx context.Context) (int, error)
}
