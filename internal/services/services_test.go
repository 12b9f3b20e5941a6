package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/realtime"
	repository "task-manager.com/task-manager/internal/repositories"
)

type fixture struct {
	tasks     *TaskService
	suppliers *SupplierService
	auth      *AuthService
	users     *repository.UserRepository
	feed      *realtime.MemoryFeed
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := setupTestDB(t)
	log := zap.NewNop().Sugar()
	feed := realtime.NewMemoryFeed(log)
	t.Cleanup(feed.Close)

	taskRepo := repository.NewTaskRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	users := repository.NewUserRepository(db)

	return fixture{
		tasks:     NewTaskService(taskRepo, supplierRepo, feed, log),
		suppliers: NewSupplierService(supplierRepo, feed, log),
		auth:      NewAuthService(users, "test-secret", time.Hour, log),
		users:     users,
		feed:      feed,
	}
}

func subscribe(t *testing.T, feed realtime.Feed, userID string) <-chan model.Change {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch, err := feed.Subscribe(ctx, userID)
	require.NoError(t, err)
	return ch
}

func next(t *testing.T, ch <-chan model.Change) model.Change {
	t.Helper()
	select {
	case change := <-ch:
		return change
	case <-time.After(time.Second):
		t.Fatal("no change published")
		return model.Change{}
	}
}

func TestTaskService_WritesPublishChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	changes := subscribe(t, f.feed, "user-1")

	task, err := f.tasks.CreateTask(ctx, "user-1", model.TaskInput{Title: "  Pour slab ", Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "Pour slab", task.Title)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, model.Change{Table: model.TableTasks, Type: model.ChangeInsert, ID: task.ID, UserID: "user-1"}, next(t, changes))

	status := model.StatusCompleted
	updated, err := f.tasks.UpdateTask(ctx, "user-1", task.ID, model.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, model.ChangeUpdate, next(t, changes).Type)

	require.NoError(t, f.tasks.DeleteTask(ctx, "user-1", task.ID))
	assert.Equal(t, model.ChangeDelete, next(t, changes).Type)

	_, err = f.tasks.GetTask(ctx, "user-1", task.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestTaskService_FailedWriteIsNotPublished(t *testing.T) {
	f := newFixture(t)
	changes := subscribe(t, f.feed, "user-1")

	err := f.tasks.DeleteTask(context.Background(), "user-1", "missing")

	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	assert.Empty(t, changes)
}

func TestTaskService_RejectsOtherUsersSupplier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foreign, err := f.suppliers.CreateSupplier(ctx, "user-2", model.SupplierInput{Name: "Acme", Phone: "1"})
	require.NoError(t, err)

	_, err = f.tasks.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow, SupplierID: &foreign.ID})
	assert.ErrorIs(t, err, apperrors.ErrSupplierNotFound)

	task, err := f.tasks.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow})
	require.NoError(t, err)
	_, err = f.tasks.UpdateTask(ctx, "user-1", task.ID, model.TaskPatch{SupplierID: &foreign.ID})
	assert.ErrorIs(t, err, apperrors.ErrSupplierNotFound)
}

func TestTaskService_RequiresID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tasks.GetTask(ctx, "user-1", "")
	assert.ErrorIs(t, err, apperrors.ErrTaskIDRequired)
	_, err = f.tasks.UpdateTask(ctx, "user-1", "", model.TaskPatch{})
	assert.ErrorIs(t, err, apperrors.ErrTaskIDRequired)
	assert.ErrorIs(t, f.tasks.DeleteTask(ctx, "user-1", ""), apperrors.ErrTaskIDRequired)
}

func TestSupplierService_DeleteInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	changes := subscribe(t, f.feed, "user-1")

	supplier, err := f.suppliers.CreateSupplier(ctx, "user-1", model.SupplierInput{Name: "Acme", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, model.TableSuppliers, next(t, changes).Table)

	_, err = f.tasks.CreateTask(ctx, "user-1", model.TaskInput{Title: "a", Priority: model.PriorityLow, SupplierID: &supplier.ID})
	require.NoError(t, err)
	next(t, changes)

	err = f.suppliers.DeleteSupplier(ctx, "user-1", supplier.ID)
	require.ErrorIs(t, err, apperrors.ErrSupplierInUse)
	assert.Empty(t, changes)

	list, err := f.suppliers.ListSuppliers(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSupplierService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supplier, err := f.suppliers.CreateSupplier(ctx, "user-1", model.SupplierInput{Name: "Acme", Phone: "1"})
	require.NoError(t, err)

	category := "Concrete"
	updated, err := f.suppliers.UpdateSupplier(ctx, "user-1", supplier.ID, model.SupplierPatch{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Concrete", updated.Category)

	_, err = f.suppliers.UpdateSupplier(ctx, "user-1", "", model.SupplierPatch{})
	assert.ErrorIs(t, err, apperrors.ErrSupplierIDRequired)
}

func TestAuthService_SignUpSignInVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creds := model.Credentials{Email: "ana@example.com", Password: "s3cret!"}

	signedUp, err := f.auth.SignUp(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, signedUp.AccessToken)
	assert.Equal(t, "ana@example.com", signedUp.Email)

	_, err = f.auth.SignUp(ctx, creds)
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	session, err := f.auth.SignIn(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, signedUp.UserID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	verified, err := f.auth.Verify(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, verified.UserID)
	assert.Equal(t, "ana@example.com", verified.Email)

	_, err = f.auth.SignIn(ctx, model.Credentials{Email: creds.Email, Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.auth.SignIn(ctx, model.Credentials{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_SignOutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.auth.SignUp(ctx, model.Credentials{Email: "ana@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	require.NoError(t, f.auth.SignOut(ctx, session.AccessToken))

	_, err = f.auth.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.auth.SignUp(ctx, model.Credentials{Email: "ana@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	other := NewAuthService(f.users, "other-secret", time.Hour, zap.NewNop().Sugar())
	_, err = other.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.auth.Verify(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = f.auth.Verify(ctx, "not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	f.auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := f.auth.SignIn(ctx, model.Credentials{Email: "ana@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, expired.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenJanitor_PurgesExpiredRevocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.RevokeToken(ctx, "stale", time.Now().Add(-time.Minute)))
	require.NoError(t, f.users.RevokeToken(ctx, "fresh", time.Now().Add(time.Hour)))

	janitor := NewTokenJanitor(f.users, time.Hour, zap.NewNop().Sugar())
	defer janitor.Shutdown(ctx)

	janitor.PurgeOnce(ctx)

	stale, err := f.users.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, stale)
	fresh, err := f.users.IsRevoked(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, fresh)
}
