package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/app"
	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

// setupTestDB поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("requests_test"),
		postgres.WithUsername("requests"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	return pool
}

type fixture struct {
	users      *UserRepository
	dataModels *DataModelRepository
	requests   *RequestRepository

	user      *model.User
	dataModel *model.DataModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := setupTestDB(t)
	ctx := context.Background()

	f := &fixture{
		users:      NewUserRepository(pool),
		dataModels: NewDataModelRepository(pool),
		requests:   NewRequestRepository(pool),
		user:       &model.User{TelegramID: 1001, Username: "ada", FirstName: "Ada"},
		dataModel:  &model.DataModel{DisplayName: "Census", FileSafeName: "census"},
	}
	require.NoError(t, f.users.Create(ctx, f.user))
	require.NoError(t, f.dataModels.Create(ctx, f.dataModel))
	return f
}

func (f *fixture) createRequest(t *testing.T) *model.Request {
	t.Helper()
	req := &model.Request{
		RequestingUserID: f.user.ID,
		DataModelID:      f.dataModel.ID,
		Dataset:          "2020",
		RequestType:      model.RequestTypePII,
		Message:          "thesis",
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

func TestUserRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.users.GetByTelegramID(ctx, 1001)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.user.ID, got.ID)
	assert.False(t, got.IsAdmin)

	got.IsAdmin = true
	require.NoError(t, f.users.Update(ctx, got))

	got, err = f.users.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	missing, err := f.users.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDataModelRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.dataModels.GetByDisplayName(ctx, "Census")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "census", got.FileSafeName)

	missing, err := f.dataModels.GetByDisplayName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, f.dataModels.Delete(ctx, got.ID))
	assert.ErrorIs(t, f.dataModels.Delete(ctx, got.ID), ErrNotFound)
}

func TestRequestLifecycleQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createRequest(t)

	assert.NotZero(t, req.ID)
	assert.False(t, req.Granted)
	assert.False(t, req.Denied)
	assert.False(t, req.Downloaded)

	details, err := f.requests.GetDetails(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, details)
	require.NotNil(t, details.User)
	require.NotNil(t, details.DataModel)
	assert.Equal(t, "Ada", details.User.FirstName)
	assert.Equal(t, "census", details.DataModel.FileSafeName)
	assert.Equal(t, model.RequestTypePII, details.Request.RequestType)

	require.NoError(t, f.requests.SetDecision(ctx, req.ID, false, true))
	require.NoError(t, f.requests.SetDecision(ctx, req.ID, true, false))

	got, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, got.Granted)
	assert.False(t, got.Denied)
	assert.NotNil(t, got.UpdatedAt)

	require.NoError(t, f.requests.MarkDownloaded(ctx, req.ID))

	// после скачивания решение больше не меняется
	assert.ErrorIs(t, f.requests.SetDecision(ctx, req.ID, false, true), ErrNotFound)

	assert.ErrorIs(t, f.requests.SetDecision(ctx, 999999, true, false), ErrNotFound)
	assert.ErrorIs(t, f.requests.MarkDownloaded(ctx, 999999), ErrNotFound)
}

func TestRequestDetailsAfterDataModelDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createRequest(t)

	require.NoError(t, f.dataModels.Delete(ctx, f.dataModel.ID))

	details, err := f.requests.GetDetails(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.NotNil(t, details.User)
	assert.Nil(t, details.DataModel)
}

func TestRequestListAndDeleteAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createRequest(t)
	f.createRequest(t)

	all, err := f.requests.ListDetails(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.requests.ListDetailsByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	deleted, err := f.requests.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	all, err = f.requests.ListDetails(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDecisionConstraint(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(t)

	// CHECK не даёт записать granted и denied одновременно
	err := f.requests.SetDecision(context.Background(), req.ID, true, true)
	require.Error(t, err)
}

func TestMarkDownloadedRequiresGrantAtWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createRequest(t)

	// pending
	assert.ErrorIs(t, f.requests.MarkDownloaded(ctx, req.ID), ErrNotFound)

	require.NoError(t, f.requests.SetDecision(ctx, req.ID, true, false))
	require.NoError(t, f.requests.SetDecision(ctx, req.ID, false, true))
	assert.ErrorIs(t, f.requests.MarkDownloaded(ctx, req.ID), ErrNotFound)

	got, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, got.Denied)
	assert.False(t, got.Downloaded)
}
