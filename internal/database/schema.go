package database

import (
	"context"
	"database/sql"
	"fmt"
)

// moviesTable is the only table the application owns.
const moviesTable = `CREATE TABLE IF NOT EXISTS movies (
    id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    title       VARCHAR(250) NOT NULL,
    year        INT NOT NULL,
    description VARCHAR(250) NULL,
    rating      VARCHAR(250) NULL,
    ranking     VARCHAR(250) NULL,
    review      VARCHAR(250) NULL,
    img_url     VARCHAR(250) NULL,
    PRIMARY KEY (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate creates the movies table when it does not exist yet. It is safe
// to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, moviesTable); err != nil {
		return fmt.Errorf("create movies table: %w", err)
	}
	return nil
}
