package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/pivoteka/internal/model"
)

// ErrDuplicateName is returned by CreateBeer when a beer with the same name
// (compared case-insensitively) already exists.
var ErrDuplicateName = errors.New("beer name already exists")

// CreateBeer inserts a new beer and returns it with its assigned ID.
func CreateBeer(ctx context.Context, db *sql.DB, beer *model.Beer) (*model.Beer, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO beers (name, type, ibu, value, note, date) VALUES (?, ?, ?, ?, ?, ?)`,
		beer.Name, nullString(beer.Type), beer.IBU, beer.Value, beer.Note, beer.Date,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating beer %q: %w", beer.Name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("creating beer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting beer id: %w", err)
	}

	return getBeerByID(ctx, db, id)
}

// ListBeers returns all beers. An empty table yields an empty slice, not an error.
func ListBeers(ctx context.Context, db *sql.DB) ([]model.Beer, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, type, ibu, value, note, date FROM beers`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing beers: %w", err)
	}
	defer rows.Close()

	var beers []model.Beer
	for rows.Next() {
		beer, err := scanBeer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning beer: %w", err)
		}
		beers = append(beers, *beer)
	}
	return beers, rows.Err()
}

// GetBeerByName returns the beer matching the given name, compared
// case-insensitively. Returns nil if no beer matches.
func GetBeerByName(ctx context.Context, db *sql.DB, name string) (*model.Beer, error) {
	beer, err := scanBeer(db.QueryRowContext(ctx,
		`SELECT id, name, type, ibu, value, note, date FROM beers WHERE name = ?`, name,
	).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting beer: %w", err)
	}
	return beer, nil
}

// DeleteBeerByName deletes the beer matching the given name, compared
// case-insensitively, and returns the number of rows removed (0 or 1).
func DeleteBeerByName(ctx context.Context, db *sql.DB, name string) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM beers WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("deleting beer: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting deleted count: %w", err)
	}
	return count, nil
}

// getBeerByID returns a beer by its surrogate key, used to read back inserts.
func getBeerByID(ctx context.Context, db *sql.DB, id int64) (*model.Beer, error) {
	beer, err := scanBeer(db.QueryRowContext(ctx,
		`SELECT id, name, type, ibu, value, note, date FROM beers WHERE id = ?`, id,
	).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting beer: %w", err)
	}
	return beer, nil
}

// scanBeer scans a beers row in SELECT column order.
func scanBeer(scan func(...any) error) (*model.Beer, error) {
	beer := &model.Beer{}
	var beerType sql.NullString
	if err := scan(&beer.ID, &beer.Name, &beerType, &beer.IBU, &beer.Value, &beer.Note, &beer.Date); err != nil {
		return nil, err
	}
	beer.Type = beerType.String
	return beer, nil
}

// nullString maps an empty string to NULL so optional columns stay NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
