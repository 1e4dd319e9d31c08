package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/dgduncan/go-note-favicon/caches"
)

var (
	// ErrPingFailed is returned if the initial ping to the database returns an error
	ErrPingFailed = errors.New("ping returned error")
)

var (
	//go:embed create_table.sql
	queryCreateTable string
	//go:embed fetch_document.sql
	queryFetchDocument string
	//go:embed upsert_document.sql
	queryUpsertDocument string
	//go:embed delete_document.sql
	queryDeleteDocument string
)

// Config defines the configuration options for the PostgreSQL backend.
type Config struct {
	// Name identifies the cache document row. Several stores can share one
	// table by using different names. Defaults to caches.DefaultDocumentName.
	Name string
}

// Cache stores the cache document as one row of the note_favicon_documents table.
type Cache struct {
	db   *sql.DB
	name string

	now func() time.Time
}

// Read fetches the document row. Returns caches.ErrNoDocument if the row doesn't exist.
func (p *Cache) Read(ctx context.Context) ([]byte, error) {
	stmt, err := p.db.PrepareContext(ctx, queryFetchDocument)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var document []byte
	if err := stmt.QueryRowContext(ctx, p.name).Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, caches.ErrNoDocument
		}
		return nil, err
	}

	return document, nil
}

// Write inserts or replaces the document row.
func (p *Cache) Write(ctx context.Context, doc []byte) error {
	stmt, err := p.db.PrepareContext(ctx, queryUpsertDocument)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, p.name, doc, p.now().UTC())
	return err
}

// Remove deletes the document row. Deleting a missing row is not an error.
func (p *Cache) Remove(ctx context.Context) error {
	stmt, err := p.db.PrepareContext(ctx, queryDeleteDocument)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, p.name)
	return err
}

func createTable(ctx context.Context, db *sql.DB) error {
	stmt, err := db.PrepareContext(ctx, queryCreateTable)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx)
	if err != nil {
		return err
	}

	return nil
}

// New creates a new PostgreSQL backend with the provided configuration.
// It verifies the database connection and creates the table if needed.
//
// Returns an error if:
// - The database handle is nil
// - The database connection test fails
// - Table creation fails
func New(ctx context.Context, db *sql.DB, config *Config) (*Cache, error) {
	if db == nil {
		return nil, caches.ValidationError{
			Reason: "nil database",
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(ErrPingFailed, err)
	}

	if err := createTable(ctx, db); err != nil {
		return nil, err
	}

	name := caches.DefaultDocumentName
	if config != nil && config.Name != "" {
		name = config.Name
	}

	return &Cache{
		db:   db,
		name: name,

		now: time.Now,
	}, nil
}
