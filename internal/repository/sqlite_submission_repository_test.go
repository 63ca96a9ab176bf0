package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ecovolt/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteSubmissionRepository {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteSubmissionRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func sampleSubmission(i int, at time.Time) *model.Submission {
	return &model.Submission{
		CreatedAt:   at.UTC().Format(model.TimestampLayout),
		Name:        fmt.Sprintf("Customer %d", i),
		Email:       fmt.Sprintf("customer%d@example.com", i),
		Phone:       "+27 82 555 0100",
		ProjectType: "Home backup",
		Message:     "Need a quote\nfor 10kWh",
		IP:          "203.0.113.7",
		UserAgent:   "Mozilla/5.0",
	}
}

func TestSQLiteSubmissionRepository_SaveAssignsIncreasingIDs(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now()

	first := sampleSubmission(1, now)
	second := sampleSubmission(1, now) // identical values still create a new row

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	assert.Positive(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestSQLiteSubmissionRepository_RoundTrip(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	in := sampleSubmission(7, time.Now())
	require.NoError(t, repo.Save(ctx, in))

	rows, err := repo.List(ctx, model.SubmissionListOptions{Limit: 20})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.CreatedAt, got.CreatedAt)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Phone, got.Phone)
	assert.Equal(t, in.ProjectType, got.ProjectType)
	assert.Equal(t, in.Message, got.Message)
	assert.Empty(t, got.IP, "listing does not load the source address")
}

func TestSQLiteSubmissionRepository_ListNewestFirstAndPaginates(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Save(ctx, sampleSubmission(i, base.Add(time.Duration(i)*time.Minute))))
	}

	page1, err := repo.List(ctx, model.SubmissionListOptions{Limit: 20, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page1, 20)
	assert.Equal(t, "Customer 24", page1[0].Name)
	assert.Equal(t, "Customer 5", page1[19].Name)

	page2, err := repo.List(ctx, model.SubmissionListOptions{Limit: 20, Offset: 20})
	require.NoError(t, err)
	require.Len(t, page2, 5)
	assert.Equal(t, "Customer 0", page2[4].Name)
}

func TestSQLiteSubmissionRepository_EmptyOptionalFields(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	in := sampleSubmission(1, time.Now())
	in.Phone = ""
	in.ProjectType = ""
	require.NoError(t, repo.Save(ctx, in))

	rows, err := repo.List(ctx, model.SubmissionListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Phone)
	assert.Equal(t, "", rows[0].ProjectType)
}

func TestSQLiteSubmissionRepository_EnsureSchemaIsIdempotent(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSubmission(1, time.Now())))

	// A fresh repository over the same database re-runs the DDL.
	again := NewSQLiteSubmissionRepository(repo.db)
	require.NoError(t, again.EnsureSchema(ctx))

	total, err := again.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSQLiteSubmissionRepository_CountWithoutSchemaFails(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLiteSubmissionRepository(db).Count(context.Background())
	assert.Error(t, err)
}

func TestSQLiteSubmissionRepository_SchemaExistsDoesNotCreate(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLiteSubmissionRepository(db)
	ctx := context.Background()

	exists, err := repo.SchemaExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.SchemaExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "checking must not create the table")

	require.NoError(t, repo.EnsureSchema(ctx))
	exists, err = repo.SchemaExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}
