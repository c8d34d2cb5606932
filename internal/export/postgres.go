package export

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"akenergy-data/internal/enrichment/application"
)

// Publisher mirrors the dataset into a Postgres database so downstream
// services can query it without parsing files.
type Publisher struct {
	db *sqlx.DB
}

// NewPublisher opens a connection to the target database.
func NewPublisher(ctx context.Context, dsn string) (*Publisher, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("export: connect postgres: %w", err)
	}
	return &Publisher{db: db}, nil
}

// Close releases the connection.
func (p *Publisher) Close() error {
	return p.db.Close()
}

var publishSchema = []string{
	`CREATE TABLE IF NOT EXISTS community (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		climate_site_id INTEGER NOT NULL,
		climate_site_name TEXT NOT NULL,
		electric_utilities TEXT NOT NULL,
		gas_price DOUBLE PRECISION,
		census_area TEXT NOT NULL,
		hub BOOLEAN NOT NULL,
		use_1 DOUBLE PRECISION NOT NULL, use_2 DOUBLE PRECISION NOT NULL,
		use_3 DOUBLE PRECISION NOT NULL, use_4 DOUBLE PRECISION NOT NULL,
		use_5 DOUBLE PRECISION NOT NULL, use_6 DOUBLE PRECISION NOT NULL,
		use_7 DOUBLE PRECISION NOT NULL, use_8 DOUBLE PRECISION NOT NULL,
		use_9 DOUBLE PRECISION NOT NULL, use_10 DOUBLE PRECISION NOT NULL,
		use_11 DOUBLE PRECISION NOT NULL, use_12 DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS utility (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		type INTEGER NOT NULL,
		active BOOLEAN NOT NULL,
		is_commercial BOOLEAN NOT NULL,
		charges_rcc BOOLEAN NOT NULL,
		pce DOUBLE PRECISION
	)`,
}

// Publish replaces the mirrored tables with the run's result. The
// whole replacement runs in one transaction so readers never observe a
// partially updated dataset.
func (p *Publisher) Publish(ctx context.Context, result *application.Result) error {
	for _, stmt := range publishSchema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("export: ensure schema: %w", err)
		}
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin publish: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM community`); err != nil {
		return fmt.Errorf("export: clear community table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM utility`); err != nil {
		return fmt.Errorf("export: clear utility table: %w", err)
	}

	const insertCommunity = `
INSERT INTO community (
	id, name, latitude, longitude, climate_site_id, climate_site_name,
	electric_utilities, gas_price, census_area, hub,
	use_1, use_2, use_3, use_4, use_5, use_6,
	use_7, use_8, use_9, use_10, use_11, use_12
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	for _, c := range result.Communities {
		args := []any{
			c.ID, c.Name, c.Latitude, c.Longitude,
			c.ClimateSiteID, c.ClimateSiteName,
			FormatUtilities(c.ElectricUtilities), c.GasPrice,
			c.AreaName, c.Hub,
		}
		for _, v := range c.UsageProfile {
			args = append(args, v)
		}
		if _, err := tx.ExecContext(ctx, insertCommunity, args...); err != nil {
			return fmt.Errorf("export: insert community %d: %w", c.ID, err)
		}
	}

	const insertUtility = `
INSERT INTO utility (id, name, type, active, is_commercial, charges_rcc, pce)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, u := range result.Utilities {
		if _, err := tx.ExecContext(ctx, insertUtility,
			u.ID, u.Name, u.Type, u.Active, u.IsCommercial, u.ChargesRCC, u.PCE,
		); err != nil {
			return fmt.Errorf("export: insert utility %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: commit publish: %w", err)
	}
	return nil
}
