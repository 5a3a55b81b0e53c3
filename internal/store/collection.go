package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"tournament-gateway/internal/apperr"

	"github.com/rs/zerolog"
)

// Filter matches documents whose fields equal the given values. A slice value
// matches any of its elements (IN semantics).
type Filter map[string]any

// Store is the generic document store contract a collection satisfies.
// Services take this interface so tests can substitute in-memory fakes.
type Store[T any] interface {
	FindMany(ctx context.Context, filter Filter) ([]T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, id string, record T) (*T, error)
	Update(ctx context.Context, id string, record T) (*T, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Collection scopes document operations to one logical collection inside the
// shared documents table. Records are stored as JSON bodies and filtered with
// json_extract predicates.
type Collection[T any] struct {
	db     *sql.DB
	name   string
	logger zerolog.Logger
}

func NewCollection[T any](db *sql.DB, name string, logger zerolog.Logger) *Collection[T] {
	return &Collection[T]{
		db:     db,
		name:   name,
		logger: logger.With().Str("collection", name).Logger(),
	}
}

func (c *Collection[T]) storageErr(err error) error {
	c.logger.Error().Err(err).Msg("storage operation failed")
	return apperr.Wrap(err, apperr.Internal, fmt.Sprintf("storage error in %s", c.name))
}

// whereClause compiles a filter into SQL predicates. Keys are sorted so the
// same filter always produces the same statement.
func (c *Collection[T]) whereClause(filter Filter) (string, []any) {
	clauses := []string{"collection = ?"}
	args := []any{c.name}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := "$." + k
		switch v := filter[k].(type) {
		case []string:
			placeholders := make([]string, len(v))
			for i, item := range v {
				placeholders[i] = "?"
				args = append(args, item)
			}
			clauses = append(clauses, fmt.Sprintf("json_extract(body, '%s') IN (%s)", path, strings.Join(placeholders, ", ")))
		default:
			clauses = append(clauses, fmt.Sprintf("json_extract(body, '%s') = ?", path))
			args = append(args, v)
		}
	}

	return strings.Join(clauses, " AND "), args
}

func (c *Collection[T]) FindMany(ctx context.Context, filter Filter) ([]T, error) {
	where, args := c.whereClause(filter)
	query := "SELECT body FROM documents WHERE " + where + " ORDER BY created_at, id"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.storageErr(err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, c.storageErr(err)
		}
		var record T
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			return nil, c.storageErr(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, c.storageErr(err)
	}

	c.logger.Debug().Int("count", len(records)).Msg("documents fetched")
	return records, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	where, args := c.whereClause(filter)
	query := "SELECT body FROM documents WHERE " + where + " ORDER BY created_at, id LIMIT 1"

	var body string
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, c.storageErr(err)
	}

	var record T
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return nil, c.storageErr(err)
	}
	return &record, nil
}

// FindByID returns nil when the document does not exist; a missing record is
// not an error at this layer.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var body string
	err := c.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?", c.name, id).Scan(&body)
	if err == sql.ErrNoRows {
		c.logger.Debug().Str("id", id).Msg("document not found")
		return nil, nil
	}
	if err != nil {
		return nil, c.storageErr(err)
	}

	var record T
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return nil, c.storageErr(err)
	}
	return &record, nil
}

func (c *Collection[T]) Create(ctx context.Context, id string, record T) (*T, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, c.storageErr(err)
	}

	now := time.Now().UTC()
	_, err = c.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		c.name, id, string(body), now, now)
	if err != nil {
		return nil, c.storageErr(err)
	}

	c.logger.Debug().Str("id", id).Msg("document created")
	return &record, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, record T) (*T, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, c.storageErr(err)
	}

	res, err := c.db.ExecContext(ctx,
		"UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(body), time.Now().UTC(), c.name, id)
	if err != nil {
		return nil, c.storageErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, c.storageErr(err)
	}
	if affected == 0 {
		return nil, apperr.New(apperr.NotFound, "Resource not found")
	}

	c.logger.Debug().Str("id", id).Msg("document updated")
	return &record, nil
}

// Delete reports false for a missing document rather than failing.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", c.name, id)
	if err != nil {
		return false, c.storageErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, c.storageErr(err)
	}

	c.logger.Debug().Str("id", id).Bool("deleted", affected > 0).Msg("document delete")
	return affected > 0, nil
}
