package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/revalidation-api/internal/model"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func TestWorkHourLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkHourRepo(newTestDB(t))

	created, err := repo.Create(ctx, 1, model.WorkHourInput{
		StartTime: mustTime(t, "2024-01-01T09:00:00Z"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.DurationMinutes)
	assert.Nil(t, created.EndTime)
	assert.Equal(t, []int64{}, created.DocumentIDs)
	assert.True(t, created.StartTime.Equal(mustTime(t, "2024-01-01T09:00:00Z")))
	require.NotNil(t, created.CreatedAt)

	end := mustTime(t, "2024-01-01T11:00:00Z")
	updated, err := repo.Update(ctx, created.ID, 1, model.WorkHourPatch{EndTime: &end})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.DurationMinutes)
	assert.Equal(t, 120, *updated.DurationMinutes)

	require.NoError(t, repo.Delete(ctx, created.ID, 1))
	_, err = repo.GetByID(ctx, created.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkHourCreateComputesDuration(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkHourRepo(newTestDB(t))
	end := mustTime(t, "2024-01-01T10:30:00Z")

	w, err := repo.Create(ctx, 1, model.WorkHourInput{
		StartTime:   mustTime(t, "2024-01-01T09:00:00Z"),
		EndTime:     &end,
		DocumentIDs: []int64{3, 7},
	})
	require.NoError(t, err)
	require.NotNil(t, w.DurationMinutes)
	assert.Equal(t, 90, *w.DurationMinutes)
	assert.Equal(t, []int64{3, 7}, w.DocumentIDs)

	explicit := 45
	w, err = repo.Create(ctx, 1, model.WorkHourInput{
		StartTime:       mustTime(t, "2024-01-01T09:00:00Z"),
		EndTime:         &end,
		DurationMinutes: &explicit,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, *w.DurationMinutes)
}

func TestWorkHourEndBeforeStart(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkHourRepo(newTestDB(t))
	end := mustTime(t, "2024-01-01T08:00:00Z")

	_, err := repo.Create(ctx, 1, model.WorkHourInput{StartTime: mustTime(t, "2024-01-01T09:00:00Z"), EndTime: &end})
	assert.ErrorIs(t, err, ErrBadRequest)

	w, err := repo.Create(ctx, 1, model.WorkHourInput{StartTime: mustTime(t, "2024-01-01T09:00:00Z")})
	require.NoError(t, err)
	_, err = repo.Update(ctx, w.ID, 1, model.WorkHourPatch{EndTime: &end})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestWorkHourEmptyPatch(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkHourRepo(newTestDB(t))
	w, err := repo.Create(ctx, 1, model.WorkHourInput{StartTime: mustTime(t, "2024-01-01T09:00:00Z")})
	require.NoError(t, err)

	_, err = repo.Update(ctx, w.ID, 1, model.WorkHourPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestWorkHourUpdateUnchangedValueIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkHourRepo(newTestDB(t))
	kind := "clinical"
	w, err := repo.Create(ctx, 1, model.WorkHourInput{StartTime: mustTime(t, "2024-01-01T09:00:00Z"), WorkType: &kind})
	require.NoError(t, err)

	got, err := repo.Update(ctx, w.ID, 1, model.WorkHourPatch{WorkType: &kind})
	require.NoError(t, err)
	assert.Equal(t, "clinical", *got.WorkType)
}

func TestWorkHourListPaginationAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkHourRepo(newTestDB(t))
	clinical, admin := "clinical", "admin"
	base := mustTime(t, "2024-01-01T09:00:00Z")
	for i := 0; i < 5; i++ {
		kind := &clinical
		if i%2 == 1 {
			kind = &admin
		}
		_, err := repo.Create(ctx, 1, model.WorkHourInput{StartTime: base.AddDate(0, 0, i), WorkType: kind})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, 2, model.WorkHourInput{StartTime: base})
	require.NoError(t, err)

	items, total, err := repo.List(ctx, 1, model.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.True(t, items[0].StartTime.Equal(base.AddDate(0, 0, 4)), "newest first")

	items, total, err = repo.List(ctx, 1, model.ListFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, items, 1)

	items, total, err = repo.List(ctx, 1, model.ListFilter{Type: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	from, to := base.AddDate(0, 0, 1), base.AddDate(0, 0, 3)
	items, total, err = repo.List(ctx, 1, model.ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	_, total, err = repo.List(ctx, 3, model.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
