package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/eiken/schemas"
)

// EnsureSchema applies every migration of the db's driver in file name order.
// Migrations use IF NOT EXISTS, so running them again is a no-op.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	files, err := fs.Glob(schemas.Migrations, path.Join("migrations", db.DriverName(), "*.sql"))
	if err != nil {
		return fmt.Errorf("fs.Glob() > %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("unsupported driver: %s", db.DriverName())
	}

	return RunInTx(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
		for _, file := range files {
			contents, err := fs.ReadFile(schemas.Migrations, file)
			if err != nil {
				return fmt.Errorf("fs.ReadFile(%s) > %w", file, err)
			}
			for _, statement := range splitStatements(string(contents)) {
				if _, err := tx.ExecContext(ctx, statement); err != nil {
					return fmt.Errorf("tx.ExecContext(%s) > %w", file, err)
				}
			}
		}
		return nil
	})
}

func splitStatements(contents string) []string {
	var statements []string
	for _, s := range strings.Split(contents, ";") {
		if s = strings.TrimSpace(s); s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}
