//go:build integration

package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/softdelete-go/safedelete"
	"github.com/AntonStoeckl/softdelete-go/safedelete/postgresengine"
	"github.com/AntonStoeckl/softdelete-go/testutil/helper"
	"github.com/AntonStoeckl/softdelete-go/testutil/postgresengine/config"
	"github.com/AntonStoeckl/softdelete-go/testutil/postgresengine/postgreswrapper"
)

func givenThreeBooksOneDeleted(t *testing.T, wrapper postgreswrapper.Wrapper) {
	deletedAt := time.Now().Add(-time.Hour)

	postgreswrapper.GivenBook(t, wrapper, 1, helper.GivenUniqueID(t).String(), nil)
	postgreswrapper.GivenBook(t, wrapper, 2, helper.GivenUniqueID(t).String(), nil)
	postgreswrapper.GivenBook(t, wrapper, 3, helper.GivenUniqueID(t).String(), &deletedAt)
}

func idsOf(records postgresengine.Records) []int64 {
	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record["id"].(int64))
	}

	return ids
}

func Test_Integration_Fetch_Respects_Visibility(t *testing.T) {
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	ctx := context.Background()
	givenThreeBooksOneDeleted(t, wrapper)

	visible, err := store.Fetch(ctx, store.All().Order(goqu.I("id").Asc()))
	require.NoError(t, err)
	withDeleted, err := store.Fetch(ctx, store.AllWithDeleted().Order(goqu.I("id").Asc()))
	require.NoError(t, err)
	deletedOnly, err := store.Fetch(ctx, store.DeletedOnly())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, idsOf(visible))
	assert.Equal(t, []int64{1, 2, 3}, idsOf(withDeleted))
	assert.Equal(t, []int64{3}, idsOf(deletedOnly))
	assert.True(t, deletedOnly[0].IsDeleted("deleted_at"))
}

func Test_Integration_Limit_Applies_After_Visibility(t *testing.T) {
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	givenThreeBooksOneDeleted(t, wrapper)

	q := store.All().Order(goqu.I("id").Desc())
	q.Limit(1)

	records, err := store.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, idsOf(records))
}

func Test_Integration_VisibleByField_Finds_Deleted_Row_By_ID(t *testing.T) {
	cfg := safedelete.DefaultConfig()
	cfg.DefaultVisibility = safedelete.DeletedVisibleByField

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresengine.WithConfig(cfg))
	store := wrapper.Store()
	ctx := context.Background()
	givenThreeBooksOneDeleted(t, wrapper)

	byID, err := store.Fetch(ctx, store.All().Filter(goqu.Ex{"id": 3}))
	require.NoError(t, err)
	count, err := store.Count(ctx, store.All())
	require.NoError(t, err)

	assert.Equal(t, []int64{3}, idsOf(byID))
	assert.Equal(t, int64(2), count)
}

func Test_Integration_Delete_Undelete_Round_Trip(t *testing.T) {
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	ctx := context.Background()
	givenThreeBooksOneDeleted(t, wrapper)

	deleted, err := store.Delete(ctx, store.AllWithDeleted())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "already deleted rows keep their marker")

	visibleCount, err := store.Count(ctx, store.All())
	require.NoError(t, err)
	assert.Zero(t, visibleCount)

	undeleted, err := store.Undelete(ctx, store.DeletedOnly().Filter(goqu.Ex{"id": []int64{1, 3}}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), undeleted)

	visible, err := store.Fetch(ctx, store.All().Order(goqu.I("id").Asc()))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, idsOf(visible))

	purged, err := store.HardDelete(ctx, store.DeletedOnly())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	total, err := store.Count(ctx, store.AllWithDeleted())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func Test_Integration_Store_With_Read_Replica(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a primary/replica setup")
	}

	ctx := context.Background()

	primary, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolPrimaryConfig())
	require.NoError(t, err)
	defer primary.Close()

	replica, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolReplicaConfig())
	require.NoError(t, err)
	defer replica.Close()

	if pingErr := replica.Ping(ctx); pingErr != nil {
		t.Skipf("replica not reachable: %v", pingErr)
	}

	store, err := postgresengine.NewStoreFromPGXPoolAndReplica(primary, replica, postgreswrapper.BooksTable)
	require.NoError(t, err)

	_, err = store.Count(safedelete.WithEventualConsistency(ctx), store.All())
	assert.NoError(t, err)
}
