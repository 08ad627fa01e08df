// Package catalog stores the card catalog in SQLite and seeds it from a YAML
// file. The engine only ever sees the resulting read-only card.Catalog.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/catalog/migrations"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/game/card"
)

// ErrDuplicateCard is returned when a card id is stored twice.
var ErrDuplicateCard = errors.New("duplicate card id")

// Store is the SQLite-backed card catalog.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	dsn := clean + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Replace swaps the stored catalog for cards in one transaction.
func (s *Store) Replace(ctx context.Context, cards []card.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cards (id, name, type, threshold) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		if _, err := stmt.ExecContext(ctx, int(c.ID), c.Name, c.Type.String(), threshold(c)); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %d", ErrDuplicateCard, c.ID)
			}
			return fmt.Errorf("insert card %d: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// List returns every stored card, ordered by id.
func (s *Store) List(ctx context.Context) ([]card.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, threshold FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []card.Card
	for rows.Next() {
		var (
			id       int
			name     string
			typeName string
			minCount sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &typeName, &minCount); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		t, err := card.ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", id, err)
		}
		c := card.Card{ID: card.ID(id), Name: name, Type: t}
		if minCount.Valid {
			c.Threshold = card.Threshold(int(minCount.Int64))
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Catalog builds the engine view of the stored cards.
func (s *Store) Catalog(ctx context.Context) (*card.Catalog, error) {
	cards, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return card.NewCatalog(cards)
}

// Load opens the catalog at dbPath, reseeds it from seedFile when one is
// given, and returns the engine view.
func Load(ctx context.Context, dbPath, seedFile string) (*card.Catalog, error) {
	store, err := Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if seedFile != "" {
		cards, err := LoadSeedFile(seedFile)
		if err != nil {
			return nil, err
		}
		if err := store.Replace(ctx, cards); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		log.Printf("🃏 catalog seeded with %d cards from %s", len(cards), seedFile)
	}
	return store.Catalog(ctx)
}

func threshold(c card.Card) any {
	if c.Threshold == nil {
		return nil
	}
	return *c.Threshold
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
