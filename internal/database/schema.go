package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialvim/internal/config"
	"socialvim/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema will do for a given configuration.
type SchemaPlan struct {
	Mode    string
	Driver  string
	RunSQL  bool
	RunAuto bool
}

// TableStat is one persistent social.vim table and its row count.
type TableStat struct {
	Name    string
	Present bool
	Rows    int64
}

// SchemaStatus is a SchemaPlan plus the migration and table state of the
// connected database.
type SchemaStatus struct {
	SchemaPlan
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
	Tables            []TableStat
}

// MissingTables lists the persistent tables that do not exist yet.
func (s *SchemaStatus) MissingTables() []string {
	var missing []string
	for _, t := range s.Tables {
		if !t.Present {
			missing = append(missing, t.Name)
		}
	}
	return missing
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func normalizedSchemaMode(cfg *config.Config) string {
	if mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)); mode != "" {
		return mode
	}
	return SchemaModeHybrid
}

// PlanSchema resolves DB_SCHEMA_MODE for the configured driver and environment.
// The embedded migrations are PostgreSQL DDL, so SQLite (local demo and
// tests) always builds its tables from the models. Hybrid runs the SQL
// migrations everywhere and AutoMigrate only outside production-like
// environments; auto in production needs DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: normalizedSchemaMode(cfg), Driver: cfg.DBDriver}

	if cfg.DBDriver == config.DriverSQLite {
		plan.RunAuto = true
		return plan, nil
	}

	prodLike := isProdLikeEnv(cfg.Env)
	switch plan.Mode {
	case SchemaModeSQL:
		plan.RunSQL = true
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.RunAuto = true
	case SchemaModeHybrid:
		plan.RunSQL = true
		plan.RunAuto = !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// AutoMigrate creates or updates every persistent table from the GORM models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the schema up to date according to PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if plan.RunAuto {
		if plan.Mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
		}
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", plan.Mode),
			slog.String("driver", plan.Driver),
			slog.String("env", cfg.Env),
		)
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the schema plan, pending SQL migrations and the
// state of every persistent table.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}

	if plan.RunSQL {
		applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
		if err != nil {
			return nil, err
		}
		status.AppliedVersions = applied

		appliedSet := make(map[int]bool, len(applied))
		for _, version := range applied {
			appliedSet[version] = true
		}
		for _, m := range GetMigrations() {
			if !appliedSet[m.Version] {
				status.PendingMigrations = append(status.PendingMigrations, m)
			}
		}
	}

	tables, err := DescribeTables(ctx, db)
	if err != nil {
		return nil, err
	}
	status.Tables = tables
	return status, nil
}

// DescribeTables reports each persistent table, parents first, with its row
// count. Absent tables are listed with Present false.
func DescribeTables(ctx context.Context, db *gorm.DB) ([]TableStat, error) {
	migrator := db.WithContext(ctx).Migrator()
	models := PersistentModels()
	stats := make([]TableStat, 0, len(models))

	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}

		stat := TableStat{Name: stmt.Schema.Table, Present: migrator.HasTable(model)}
		if stat.Present {
			if err := db.WithContext(ctx).Model(model).Count(&stat.Rows).Error; err != nil {
				return nil, fmt.Errorf("count %s: %w", stat.Name, err)
			}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// ListTables returns the names of the tables in the connected database.
func ListTables(db *gorm.DB) ([]string, error) {
	return db.Migrator().GetTables()
}
