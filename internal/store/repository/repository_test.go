package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/poetrydeveloper/app-store-v2/internal/store/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUnitInsertSavepointKeepsTransaction(t *testing.T) {
	env := testutil.SetupEnv(t)
	ctx := context.Background()

	err := repository.RunInTx(ctx, env.DB, func(tx *gorm.DB) error {
		units := env.Repos.Unit.WithTx(tx)
		require.NoError(t, units.Insert(ctx, &entity.ProductUnit{ID: "u1", SerialNumber: "S-1", ProductID: "p", DeliveryID: "d"}))

		err := units.Insert(ctx, &entity.ProductUnit{ID: "u2", SerialNumber: "S-1", ProductID: "p", DeliveryID: "d"})
		assert.True(t, repository.IsUniqueViolation(err))

		return units.Insert(ctx, &entity.ProductUnit{ID: "u3", SerialNumber: "S-2", ProductID: "p", DeliveryID: "d"})
	})
	require.NoError(t, err)

	n, err := env.Repos.Unit.CountByDelivery(ctx, "d")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRunInTxRollsBack(t *testing.T) {
	env := testutil.SetupEnv(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repository.RunInTx(ctx, env.DB, func(tx *gorm.DB) error {
		require.NoError(t, env.Repos.Unit.WithTx(tx).Insert(ctx, &entity.ProductUnit{ID: "u1", SerialNumber: "S-1", ProductID: "p", DeliveryID: "d"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := env.Repos.Unit.CountByDelivery(ctx, "d")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLockItemLoadsRequest(t *testing.T) {
	env := testutil.SetupEnv(t)
	ctx := context.Background()
	item := testutil.SeedLine(t, env.DB, entity.RequestStatusExtra, 3)

	err := repository.RunInTx(ctx, env.DB, func(tx *gorm.DB) error {
		locked, err := env.Repos.Request.WithTx(tx).LockItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, locked.Request)
		assert.Equal(t, entity.RequestStatusExtra, locked.Request.Status)
		return nil
	})
	require.NoError(t, err)

	err = repository.RunInTx(ctx, env.DB, func(tx *gorm.DB) error {
		_, err := env.Repos.Request.WithTx(tx).LockItem(ctx, "missing")
		return err
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetOrCreateDay(t *testing.T) {
	env := testutil.SetupEnv(t)
	ctx := context.Background()
	date := testutil.Date(2025, 5, 1)

	first, err := env.Repos.Trading.GetOrCreateDay(ctx, date)
	require.NoError(t, err)
	second, err := env.Repos.Trading.GetOrCreateDay(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = env.Repos.Trading.FindDayByDate(ctx, testutil.Date(2025, 5, 2))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
