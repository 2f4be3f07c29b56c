package schemastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nlstn/go-odata-search/internal/edm"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/observability"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store, err := New(db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func articleSchema(t *testing.T, open bool) *metadata.Schema {
	t.Helper()
	schema, err := metadata.NewSchema("ArticlePage", open,
		metadata.Property{Path: "Name", Kind: edm.KindString},
		metadata.Property{Path: "ContentLink.Id", Kind: edm.KindInt32},
		metadata.Property{Path: "Created", Kind: edm.KindDateTime},
		metadata.Property{Path: "Tags", Kind: edm.KindString, Collection: true},
		metadata.Property{Path: "Blocks", Collection: true, Complex: true},
	)
	require.NoError(t, err)
	return schema
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	want := articleSchema(t, false)

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx, "ArticlePage")
	require.NoError(t, err)
	assert.Equal(t, "ArticlePage", got.Name())
	assert.False(t, got.IsOpen())
	assert.Equal(t, want.Properties(), got.Properties())

	id, ok := got.Property("ContentLink.Id")
	require.True(t, ok)
	assert.Equal(t, edm.KindInt32, id.Kind)

	parent, ok := got.Property("ContentLink")
	require.True(t, ok)
	assert.True(t, parent.Complex)

	tags, ok := got.Property("Tags")
	require.True(t, ok)
	assert.True(t, tags.Collection)
}

func TestStore_SaveReplacesProperties(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Save(ctx, articleSchema(t, false)))

	replacement := metadata.MustSchema("ArticlePage", true,
		metadata.Property{Path: "Title", Kind: edm.KindString},
	)
	require.NoError(t, store.Save(ctx, replacement))

	got, err := store.Load(ctx, "ArticlePage")
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
	assert.Equal(t, replacement.Properties(), got.Properties())
	_, ok := got.Property("Name")
	assert.False(t, ok)

	var count int64
	require.NoError(t, store.DB().Model(&PropertyDefinition{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_ListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, name := range []string{"StandardPage", "ArticlePage", "NewsPage"} {
		require.NoError(t, store.Save(ctx, metadata.MustSchema(name, true,
			metadata.Property{Path: "Name", Kind: edm.KindString},
		)))
	}

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ArticlePage", "NewsPage", "StandardPage"}, names)

	require.NoError(t, store.Delete(ctx, "NewsPage"))
	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ArticlePage", "StandardPage"}, names)

	var count int64
	require.NoError(t, store.DB().Model(&PropertyDefinition{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Load(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "Missing"), ErrNotFound)
}

func TestStore_InvalidSchema(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.Save(context.Background(), nil), ErrInvalidSchema)
}

func TestDialector(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dsn     string
		wantErr bool
	}{
		{name: "sqlite with dsn", driver: DriverSQLite, dsn: "test.db"},
		{name: "sqlite defaults to memory", driver: DriverSQLite},
		{name: "postgres", driver: DriverPostgres, dsn: "host=localhost user=odata dbname=search"},
		{name: "postgres without dsn", driver: DriverPostgres, wantErr: true},
		{name: "unknown driver", driver: "mysql", dsn: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, err := Dialector(tt.driver, tt.dsn)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDriver)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, dialector.Name())
		})
	}
}

func TestStore_WithObservability(t *testing.T) {
	ctx := observability.WithDBTimeAccumulator(context.Background())
	store := newTestStore(t, WithObservability(observability.NewConfig(observability.WithServerTiming())))

	require.NoError(t, store.Save(ctx, articleSchema(t, true)))
	_, err := store.Load(ctx, "ArticlePage")
	require.NoError(t, err)

	acc := observability.DBTimeAccumulatorFromContext(ctx)
	require.NotNil(t, acc)
	assert.Positive(t, int64(acc.Duration()))
}
