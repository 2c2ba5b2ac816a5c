package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"storage_feasibility/pkg/core/assumption"
)

// setupRepo starts a disposable PostgreSQL, migrates it and returns a repo.
// Skipped in -short mode or when no container runtime is reachable.
func setupRepo(t *testing.T) (*RunRepo, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("feasibility_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test": "feasibility-store"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate test container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(url))

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRunRepo(pool, nil), url
}

func TestRunRepo_SaveGetList(t *testing.T) {
	repo, url := setupRepo(t)
	ctx := context.Background()

	version, dirty, err := SchemaVersion(url)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	in := assumption.DefaultInputs()
	result := map[string]any{"noi": 123.45, "years": []int{1, 2}}

	id, err := repo.Save(ctx, KindProjection, in, result, 2)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	run, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, KindProjection, run.Kind)
	assert.Equal(t, in.Name, run.Name)
	assert.Equal(t, 2, run.Warnings)
	assert.True(t, in.StartDate.Equal(run.Inputs.StartDate))
	assert.Equal(t, in.Occupancy.Targets, run.Inputs.Occupancy.Targets)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(run.Result, &decoded))
	assert.Equal(t, 123.45, decoded["noi"])

	_, err = repo.Save(ctx, KindScenarios, in, result, 0)
	require.NoError(t, err)

	runs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, KindScenarios, runs[0].Kind, "newest first")
}

func TestRunRepo_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestRunRepo_NoPool(t *testing.T) {
	repo := NewRunRepo(nil, nil)
	_, err := repo.Save(context.Background(), KindProjection, assumption.DefaultInputs(), nil, 0)
	assert.Error(t, err)
	_, err = repo.Get(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)
}
