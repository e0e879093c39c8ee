package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/testutil"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestTaskRepository_Create(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	repo := NewTaskRepository(db)

	task := &models.Task{Title: "T1", OwnerID: owner.ID, Completed: true}
	require.NoError(t, repo.Create(context.Background(), task))

	assert.NotZero(t, task.ID)
	assert.False(t, task.Completed)
	assert.Nil(t, task.Description)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskRepository_ListByOwner(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice@x.com")
	bob := testutil.CreateUser(t, db, "bob@x.com")
	repo := NewTaskRepository(db)
	ctx := context.Background()

	testutil.CreateTask(t, db, "a1", alice.ID)
	testutil.CreateTask(t, db, "b1", bob.ID)
	testutil.CreateTask(t, db, "a2", alice.ID)
	testutil.CreateTask(t, db, "a3", alice.ID)

	tasks, err := repo.ListByOwner(ctx, alice.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"}, titles(tasks))
	for _, task := range tasks {
		assert.Equal(t, alice.ID, task.OwnerID)
	}

	page, err := repo.ListByOwner(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, titles(page))

	tail, err := repo.ListByOwner(ctx, alice.ID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a3"}, titles(tail))

	empty, err := repo.ListByOwner(ctx, alice.ID, 10, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTaskRepository_Update_Partial(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := &models.Task{Title: "T1", Description: strPtr("desc"), OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.Update(ctx, task, TaskPatch{Completed: boolPtr(true)}))

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, "T1", stored.Title)
	require.NotNil(t, stored.Description)
	assert.Equal(t, "desc", *stored.Description)
	assert.Equal(t, owner.ID, stored.OwnerID)

	require.NoError(t, repo.Update(ctx, stored, TaskPatch{Title: strPtr("T2"), Description: strPtr("new")}))

	stored, err = repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", stored.Title)
	assert.Equal(t, "new", *stored.Description)
	assert.True(t, stored.Completed)
}

func TestTaskRepository_Update_NeverWritesOwner(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	other := testutil.CreateUser(t, db, "other@x.com")
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := testutil.CreateTask(t, db, "T1", owner.ID)
	task.OwnerID = other.ID

	require.NoError(t, repo.Update(ctx, task, TaskPatch{Title: strPtr("T2")}))

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, stored.OwnerID)
	assert.Equal(t, "T2", stored.Title)
}

func TestTaskRepository_Delete(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := testutil.CreateTask(t, db, "T1", owner.ID)

	removed, err := repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, removed.ID)
	assert.Equal(t, "T1", removed.Title)
	assert.Equal(t, owner.ID, removed.OwnerID)

	_, err = repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = repo.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepository_Update_Gone(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := testutil.CreateTask(t, db, "T1", owner.ID)
	require.NoError(t, db.Delete(&models.Task{}, task.ID).Error)

	err := repo.Update(ctx, task, TaskPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepository_Update_Unchanged(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := testutil.CreateTask(t, db, "T1", owner.ID)

	require.NoError(t, repo.Update(ctx, task, TaskPatch{Title: strPtr("T1")}))
	require.NoError(t, repo.Update(ctx, task, TaskPatch{}))
}

func TestTaskRepository_Create_UnknownOwner(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)

	err := repo.Create(context.Background(), &models.Task{Title: "orphan", OwnerID: 999})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTaskRepository_OwnerDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	other := testutil.CreateUser(t, db, "other@x.com")

	testutil.CreateTask(t, db, "T1", owner.ID)
	testutil.CreateTask(t, db, "T2", owner.ID)
	kept := testutil.CreateTask(t, db, "T3", other.ID)

	require.NoError(t, db.Delete(&models.User{}, owner.ID).Error)

	var remaining []models.Task
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
