package books

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the books table unless it already exists.
func Migrate(ctx context.Context, pg *pgxpool.Pool) error {
	if _, err := pg.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying books schema: %w", err)
	}

	return nil
}
