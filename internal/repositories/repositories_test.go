package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func ptr[T any](v T) *T {
	return &v
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	created, err := repo.CreateTask(ctx, "user-1", model.TaskInput{
		Title:          "Order cement",
		Priority:       model.PriorityHigh,
		DueDate:        model.ParseDueDate("2025-03-01T12:00:00Z"),
		EstimatedHours: ptr(2.5),
		Tags:           []string{"site", "urgent"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)

	found, err := repo.FindByID(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Order cement", found.Title)
	assert.Equal(t, model.PriorityHigh, found.Priority)
	assert.Equal(t, "2025-03-01T12:00:00Z", found.DueDate.String())
	assert.Equal(t, []string{"site", "urgent"}, found.Tags)
	require.NotNil(t, found.EstimatedHours)
	assert.InDelta(t, 2.5, *found.EstimatedHours, 1e-9)
	assert.Nil(t, found.DeletedAt)
}

func TestTaskRepository_IsScopedByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	mine, err := repo.CreateTask(ctx, "user-1", model.TaskInput{Title: "mine", Priority: model.PriorityLow})
	require.NoError(t, err)
	_, err = repo.CreateTask(ctx, "user-2", model.TaskInput{Title: "theirs", Priority: model.PriorityLow})
	require.NoError(t, err)

	tasks, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, mine.ID, tasks[0].ID)

	_, err = repo.FindByID(ctx, "user-2", mine.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user-2", mine.ID), apperrors.ErrTaskNotFound)
	_, err = repo.Update(ctx, "user-2", mine.ID, model.TaskPatch{Title: ptr("hijacked")})
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestTaskRepository_UpdatePatch(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskRepository(db)
	suppliers := NewSupplierRepository(db)
	ctx := context.Background()

	supplier, err := suppliers.CreateSupplier(ctx, "user-1", model.SupplierInput{Name: "Acme", Phone: "555"})
	require.NoError(t, err)
	task, err := tasks.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow, Tags: []string{"x"}})
	require.NoError(t, err)

	status := model.StatusCompleted
	trashedAt := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
	updated, err := tasks.Update(ctx, "user-1", task.ID, model.TaskPatch{
		Status:     &status,
		SupplierID: &supplier.ID,
		Tags:       &[]string{"y", "z"},
		DeletedAt:  &trashedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	require.NotNil(t, updated.SupplierID)
	assert.Equal(t, supplier.ID, *updated.SupplierID)
	assert.Equal(t, []string{"y", "z"}, updated.Tags)
	require.NotNil(t, updated.DeletedAt)
	assert.True(t, trashedAt.Equal(*updated.DeletedAt))
	assert.Equal(t, "a", updated.Title)

	restored, err := tasks.Update(ctx, "user-1", task.ID, model.TaskPatch{ClearDeletedAt: true, SupplierID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, restored.SupplierID)
}

func TestTaskRepository_UpdateClearsEstimatedHours(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task, err := repo.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow, EstimatedHours: ptr(4.0)})
	require.NoError(t, err)
	require.NotNil(t, task.EstimatedHours)

	updated, err := repo.Update(ctx, "user-1", task.ID, model.TaskPatch{ClearEstimatedHours: true})
	require.NoError(t, err)
	assert.Nil(t, updated.EstimatedHours)

	found, err := repo.FindByID(ctx, "user-1", task.ID)
	require.NoError(t, err)
	assert.Nil(t, found.EstimatedHours)
}

func TestTaskRepository_UnknownSupplierIsRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	_, err := repo.CreateTask(context.Background(), "user-1", model.TaskInput{
		Title:      "a",
		Priority:   model.PriorityLow,
		SupplierID: ptr("does-not-exist"),
	})

	assert.ErrorIs(t, err, apperrors.ErrSupplierNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task, err := repo.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "user-1", task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "user-1", task.ID), apperrors.ErrTaskNotFound)
}

func TestSupplierRepository_DeleteInUse(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskRepository(db)
	suppliers := NewSupplierRepository(db)
	ctx := context.Background()

	supplier, err := suppliers.CreateSupplier(ctx, "user-1", model.SupplierInput{Name: "Acme", Phone: "555"})
	require.NoError(t, err)
	task, err := tasks.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow, SupplierID: &supplier.ID})
	require.NoError(t, err)

	err = suppliers.Delete(ctx, "user-1", supplier.ID)
	require.ErrorIs(t, err, apperrors.ErrSupplierInUse)

	_, err = suppliers.FindByID(ctx, "user-1", supplier.ID)
	require.NoError(t, err)

	_, err = tasks.Update(ctx, "user-1", task.ID, model.TaskPatch{SupplierID: ptr("")})
	require.NoError(t, err)
	require.NoError(t, suppliers.Delete(ctx, "user-1", supplier.ID))

	_, err = suppliers.FindByID(ctx, "user-1", supplier.ID)
	assert.ErrorIs(t, err, apperrors.ErrSupplierNotFound)
}

func TestSupplierRepository_UpdateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupplierRepository(db)
	ctx := context.Background()

	b, err := repo.CreateSupplier(ctx, "user-1", model.SupplierInput{Name: "Beta", Phone: "2"})
	require.NoError(t, err)
	_, err = repo.CreateSupplier(ctx, "user-1", model.SupplierInput{Name: "Alpha", Phone: "1"})
	require.NoError(t, err)
	_, err = repo.CreateSupplier(ctx, "user-2", model.SupplierInput{Name: "Other", Phone: "3"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "user-1", b.ID, model.SupplierPatch{Email: ptr("beta@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "beta@example.com", updated.Email)
	assert.Equal(t, "Beta", updated.Name)

	list, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Beta", list[1].Name)

	_, err = repo.Update(ctx, "user-2", b.ID, model.SupplierPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrSupplierNotFound)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, " Ana@Example.com ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	_, err = repo.CreateUser(ctx, "ana@example.com", "other")
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	found, hash, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "hash", hash)

	_, _, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserRepository_Revocation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.RevokeToken(ctx, "old", now.Add(-time.Hour)))
	require.NoError(t, repo.RevokeToken(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, repo.RevokeToken(ctx, "live", now.Add(time.Hour)))

	revoked, err := repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	purged, err := repo.PurgeRevoked(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	revoked, err = repo.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTagList(t *testing.T) {
	v, err := tagList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var tags tagList
	require.NoError(t, tags.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, tagList{"a", "b"}, tags)
	require.NoError(t, tags.Scan(nil))
	assert.Nil(t, tags)
	assert.Error(t, tags.Scan(42))
}
