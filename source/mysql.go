// source/mysql.go
package source

import (
	"context"
	"database/sql"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
	"github.com/PhilHen99/InplayBasketSourceFinder/database"
	"github.com/PhilHen99/InplayBasketSourceFinder/models"
)

// MySQLFetcher reads the teams table from a MySQL/MariaDB table whose column
// names match the spreadsheet headers. A connection is opened per fetch.
type MySQLFetcher struct {
	cfg  config.DatabaseConfig
	open func(context.Context, config.DatabaseConfig) (*sql.DB, error)
}

func NewMySQLFetcher(cfg config.DatabaseConfig) *MySQLFetcher {
	return &MySQLFetcher{cfg: cfg, open: database.Open}
}

func (f *MySQLFetcher) Provider() Provider { return MySQL }

func (f *MySQLFetcher) Fetch(ctx context.Context) (*Table, error) {
	db, err := f.open(ctx, f.cfg)
	if err != nil {
		return nil, unavailable(MySQL, err)
	}
	defer db.Close()

	header, rows, err := database.LoadTeamTable(ctx, db, f.cfg.Table, models.TeamColumns)
	if err != nil {
		return nil, unavailable(MySQL, err)
	}
	return &Table{Header: header, Rows: rows}, nil
}

func (f *MySQLFetcher) Validate(ctx context.Context) error {
	db, err := f.open(ctx, f.cfg)
	if err != nil {
		return unavailable(MySQL, err)
	}
	return db.Close()
}
