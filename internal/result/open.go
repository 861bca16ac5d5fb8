package result

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/database"
)

// Open returns the repository selected by results.store and a function releasing it.
func Open(ctx context.Context, cfg *config.Config) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Results.Store {
	case config.ResultStoreYAML, "":
		return NewYAMLRepository(cfg.Results.Directory), noop, nil
	case config.ResultStoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Results.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("database.OpenSQLite() > %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.EnsureSchema() > %w", err)
		}
		return NewDBRepository(db), db.Close, nil
	case config.ResultStoreMySQL:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.EnsureSchema() > %w", err)
		}
		return NewDBRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown result store: %s", cfg.Results.Store)
	}
}
