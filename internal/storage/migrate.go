package storage

import (
	"context"
	"fmt"

	"github.com/goliatone/go-heroes/auditlog"
	"github.com/goliatone/go-heroes/hero"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// SeedHeroes are inserted by MigratePrimary when missing.
func SeedHeroes() []*hero.Hero {
	return []*hero.Hero{
		{ID: 9, Name: "Thor", FirstName: "Thor", LastName: "Odinson", Place: "Asgard"},
	}
}

// MigratePrimary creates the heroes table and inserts the seed heroes.
func MigratePrimary(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*hero.Hero)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create heroes: %w", err)
	}

	for _, h := range SeedHeroes() {
		exists, err := db.NewSelect().
			Model((*hero.Hero)(nil)).
			Where("?TableAlias.id = ? OR ?TableAlias.name_key = ?", h.ID, hero.FoldName(h.Name)).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("seed heroes: %w", err)
		}
		if exists {
			continue
		}
		if _, err := db.NewInsert().Model(h).Exec(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", h.Name, err)
		}
	}

	// Explicit ids leave the postgres sequence behind.
	if db.Dialect().Name() == dialect.PG {
		if _, err := db.ExecContext(ctx,
			"SELECT setval(pg_get_serial_sequence('heroes', 'id'), (SELECT MAX(id) FROM heroes))",
		); err != nil {
			return fmt.Errorf("sync heroes sequence: %w", err)
		}
	}
	return nil
}

// MigrateSecondary creates the audit log table.
func MigrateSecondary(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*auditlog.Record)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create audit_logs: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*auditlog.Record)(nil)).
		Index("audit_logs_session_id_idx").
		IfNotExists().
		Column("session_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("index audit_logs: %w", err)
	}
	return nil
}

// Migrate bootstraps both stores.
func Migrate(ctx context.Context, primary, secondary *bun.DB) error {
	if err := MigratePrimary(ctx, primary); err != nil {
		return err
	}
	return MigrateSecondary(ctx, secondary)
}
