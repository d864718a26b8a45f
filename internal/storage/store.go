// Package storage persists item submission records. The pricing pipeline
// itself keeps no durable state; this store is the collaborator that a
// resolved price is written back to when a request names an item.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Item is a submitted item record.
type Item struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name,omitempty"`
	Description string    `db:"description" json:"description"`
	Condition   string    `db:"condition" json:"condition,omitempty"`
	Issues      string    `db:"issues" json:"issues,omitempty"`
	Price       string    `db:"price" json:"price,omitempty"`
	PriceSource string    `db:"price_source" json:"priceSource,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Store is a SQLite-backed item store.
type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		condition TEXT NOT NULL DEFAULT '',
		issues TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT '',
		price_source TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create items table: %w", err)
	}
	return nil
}

// CreateItem inserts a new record, filling in timestamps.
func (s *Store) CreateItem(ctx context.Context, item *Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query, args, err := s.sb.Insert("items").
		Columns("id", "name", "description", "condition", "issues", "price", "price_source", "created_at", "updated_at").
		Values(item.ID, item.Name, item.Description, item.Condition, item.Issues, item.Price, item.PriceSource, item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItem fetches a record by ID. Returns nil, nil when it doesn't exist.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	query, args, err := s.sb.Select("id", "name", "description", "condition", "issues", "price", "price_source", "created_at", "updated_at").
		From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var item Item
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// SetItemPrice records a resolved price and its provenance against an
// item. The write is an idempotent upsert of the price columns.
func (s *Store) SetItemPrice(ctx context.Context, id, price, source string) error {
	query, args, err := s.sb.Update("items").
		Set("price", price).
		Set("price_source", source).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item price: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s not found", id)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
