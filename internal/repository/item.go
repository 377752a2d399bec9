package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market/analyzer/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS item (
	id        UUID PRIMARY KEY,
	name      TEXT NOT NULL,
	parent_id UUID,
	type      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS price (
	index BIGSERIAL PRIMARY KEY,
	id    UUID NOT NULL REFERENCES item (id),
	date  TIMESTAMPTZ NOT NULL,
	price BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS price_id_idx ON price (id);`

// foreignKeyViolation is the postgres SQLSTATE raised when a price names a missing item.
const foreignKeyViolation = "23503"

// ErrItemNotMirrored is returned when a price arrives for an item that is no
// longer in the store. Retrying cannot succeed.
var ErrItemNotMirrored = errors.New("item not mirrored")

// ItemRepository mirrors catalog writes into postgres. Nothing reads the rows back;
// they exist for persistence and audit.
type ItemRepository interface {
	EnsureSchema(ctx context.Context) error
	UpsertItem(ctx context.Context, item domain.ShopUnitImport) error
	AddPrice(ctx context.Context, id uuid.UUID, date time.Time, price int64) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type itemRepository struct {
	db DB
}

func NewItemRepository(db DB) ItemRepository {
	return &itemRepository{
		db: db,
	}
}

func (r *itemRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *itemRepository) UpsertItem(ctx context.Context, item domain.ShopUnitImport) error {
	query := `
	INSERT INTO item (id, name, parent_id, type)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id)
	DO UPDATE SET name = $2, parent_id = $3, type = $4`
	_, err := r.db.Exec(ctx, query, item.ID, item.Name, item.ParentID, item.Type.String())
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.ID, err)
	}

	return nil
}

func (r *itemRepository) AddPrice(ctx context.Context, id uuid.UUID, date time.Time, price int64) error {
	query := `INSERT INTO price (id, date, price) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, id, date, price)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: price for %s: %s", ErrItemNotMirrored, id, pgErr.Message)
	}
	if err != nil {
		return fmt.Errorf("failed to save price for item %s: %w", id, err)
	}

	return nil
}

// DeleteItem removes the item row together with its price rows. Deleting an
// item that was never mirrored is not an error.
func (r *itemRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM price WHERE id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM item WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}

	return nil
}
