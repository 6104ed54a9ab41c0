package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"compara-mercado/internal/database"
	"compara-mercado/internal/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

// runContract checks the behaviour every backend must share
func runContract(t *testing.T, store kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, kvstore.KeyTheme)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, store.Set(ctx, kvstore.KeyTheme, []byte(`"dark"`)))
	got, err := store.Get(ctx, kvstore.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(got))

	require.NoError(t, store.Set(ctx, kvstore.KeyTheme, []byte(`"light"`)))
	got, err = store.Get(ctx, kvstore.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, `"light"`, string(got))

	require.NoError(t, store.Delete(ctx, kvstore.KeyTheme))
	_, err = store.Get(ctx, kvstore.KeyTheme)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(ctx, kvstore.KeyTheme))

	var list []string
	found, err := kvstore.GetJSON(ctx, store, kvstore.KeyShoppingList, &list)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kvstore.SetJSON(ctx, store, kvstore.KeyShoppingList, []string{"leite", "café"}))
	found, err = kvstore.GetJSON(ctx, store, kvstore.KeyShoppingList, &list)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"leite", "café"}, list)

	require.NoError(t, store.Set(ctx, kvstore.KeySupermarkets, []byte(`{not json`)))
	var markets []map[string]any
	found, err = kvstore.GetJSON(ctx, store, kvstore.KeySupermarkets, &markets)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	runContract(t, kvstore.NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	value := []byte(`"dark"`)
	require.NoError(t, store.Set(ctx, kvstore.KeyTheme, value))
	value[1] = 'X'

	got, err := store.Get(ctx, kvstore.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(got))
}

func TestSQLiteStore(t *testing.T) {
	db, err := database.Open(context.Background(), database.DriverSQLite,
		database.SQLiteDSN(filepath.Join(t.TempDir(), "kv.db")), zap.NewNop())
	require.NoError(t, err)

	store, err := kvstore.NewSQLStore(db, kvstore.DialectSQLite)
	require.NoError(t, err)
	defer store.Close()

	runContract(t, store)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	runContract(t, kvstore.NewRedisStore(client, "compara"))

	require.NoError(t, kvstore.NewRedisStore(client, "compara").Set(context.Background(), kvstore.KeyTheme, []byte(`"dark"`)))
	assert.True(t, mr.Exists("compara:theme"))
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("compara"),
		postgres.WithUsername("compara"),
		postgres.WithPassword("compara"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(ctx, database.DriverPostgres, dsn, zap.NewNop())
	require.NoError(t, err)

	store, err := kvstore.NewSQLStore(db, kvstore.DialectPostgres)
	require.NoError(t, err)
	defer store.Close()

	runContract(t, store)
}

func TestNewSQLStore_RejectsUnknownDialect(t *testing.T) {
	_, err := kvstore.NewSQLStore(nil, kvstore.Dialect("oracle"))
	assert.Error(t, err)
}

// Feature: persistence, Property: last write wins
func TestProperty_LastWriteWins(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("get returns the most recent value set", prop.ForAll(
		func(values []string) bool {
			ctx := context.Background()
			store := kvstore.NewMemoryStore()
			for _, v := range values {
				if err := store.Set(ctx, kvstore.KeyTheme, []byte(v)); err != nil {
					return false
				}
			}
			got, err := store.Get(ctx, kvstore.KeyTheme)
			if len(values) == 0 {
				return err == kvstore.ErrNotFound
			}
			return err == nil && string(got) == values[len(values)-1]
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
