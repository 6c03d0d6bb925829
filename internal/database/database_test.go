package database

import (
	"context"
	"testing"
	"testing/fstest"

	"socialvim/internal/config"
	"socialvim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openMemoryDB(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestPostgresDSN(t *testing.T) {
	t.Run("DATABASE_URL wins", func(t *testing.T) {
		cfg := &config.Config{DatabaseURL: "postgres://u:p@db:5432/x", DBHost: "ignored"}
		assert.Equal(t, "postgres://u:p@db:5432/x", PostgresDSN(cfg))
	})

	t.Run("Built from parts with sslmode default", func(t *testing.T) {
		cfg := &config.Config{DBHost: "localhost", DBPort: "5432", DBUser: "postgres", DBPassword: "pw", DBName: "socialvim"}
		assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=socialvim sslmode=disable", PostgresDSN(cfg))
	})
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{name: "hybrid in development", cfg: config.Config{Env: "development", DBSchemaMode: "hybrid"}, wantSQL: true, wantAuto: true},
		{name: "hybrid in production", cfg: config.Config{Env: "production", DBSchemaMode: "hybrid"}, wantSQL: true},
		{name: "empty mode means hybrid", cfg: config.Config{Env: "development"}, wantSQL: true, wantAuto: true},
		{name: "sql only", cfg: config.Config{Env: "development", DBSchemaMode: "sql"}, wantSQL: true},
		{name: "auto in development", cfg: config.Config{Env: "development", DBSchemaMode: "auto"}, wantAuto: true},
		{name: "auto refused in production", cfg: config.Config{Env: "production", DBSchemaMode: "auto"}, wantErr: true},
		{name: "auto allowed in production when destructive opt-in", cfg: config.Config{Env: "production", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, wantAuto: true},
		{name: "sqlite always auto", cfg: config.Config{Env: "production", DBSchemaMode: "sql", DBDriver: config.DriverSQLite}, wantAuto: true},
		{name: "unknown mode", cfg: config.Config{Env: "development", DBSchemaMode: "yolo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSchema(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.RunSQL)
			assert.Equal(t, tt.wantAuto, plan.RunAuto)
		})
	}
}

func TestApplySchema_SQLiteCreatesAllTables(t *testing.T) {
	db := openMemoryDB(t)
	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite, DBSchemaMode: "sql"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "user_settings", "posts", "post_interactions", "comments", "conversations", "messages", "notifications"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	tables, err := ListTables(db)
	require.NoError(t, err)
	assert.Contains(t, tables, "posts")
}

func TestGetSchemaStatus_SQLiteTables(t *testing.T) {
	db := openMemoryDB(t)
	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite}
	ctx := context.Background()

	before, err := GetSchemaStatus(ctx, db, cfg)
	require.NoError(t, err)
	assert.False(t, before.RunSQL)
	assert.True(t, before.RunAuto)
	assert.Len(t, before.MissingTables(), len(PersistentModels()))

	require.NoError(t, ApplySchema(ctx, db, cfg))
	require.NoError(t, db.Create(&models.User{Username: "vimmaster", DisplayName: "Vimmaster"}).Error)

	after, err := GetSchemaStatus(ctx, db, cfg)
	require.NoError(t, err)
	assert.Empty(t, after.MissingTables())
	assert.Empty(t, after.PendingMigrations)

	require.Len(t, after.Tables, len(PersistentModels()))
	assert.Equal(t, TableStat{Name: "users", Present: true, Rows: 1}, after.Tables[0])
	for _, stat := range after.Tables[1:] {
		assert.Zero(t, stat.Rows, stat.Name)
	}
}

func TestEmbeddedMigrationsLoaded(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init_schema", all[0].Name)
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS users")
	assert.Equal(t, "000001_init_schema", all[0].String())

	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("Sorts by version and pairs scripts", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000002_second.up.sql":   {Data: []byte("up2")},
			"m/000002_second.down.sql": {Data: []byte("down2")},
			"m/000001_first.up.sql":    {Data: []byte("up1")},
			"m/000001_first.down.sql":  {Data: []byte("down1")},
			"m/README.md":              {Data: []byte("ignored")},
		}
		got, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Version)
		assert.Equal(t, "first", got[0].Name)
		assert.Equal(t, "down2", got[1].DownScript)
	})

	t.Run("Missing down script fails", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_first.up.sql": {Data: []byte("up1")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("Duplicate version fails", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("a")},
			"m/000001_a.down.sql": {Data: []byte("a")},
			"m/000001_b.up.sql":   {Data: []byte("b")},
			"m/000001_b.down.sql": {Data: []byte("b")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})
}

func TestMigrationStore(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()
	store := NewMigrationStore(db)

	// Missing log table reads as nothing applied.
	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, store.ApplyMigration(ctx, 1, "widgets", "CREATE TABLE widgets (id INTEGER PRIMARY KEY)"))
	assert.True(t, db.Migrator().HasTable("widgets"))

	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	// A failing script is not recorded.
	assert.Error(t, store.ApplyMigration(ctx, 2, "broken", "CREATE TABLE ("))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	require.NoError(t, store.RemoveMigration(ctx, 1))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
