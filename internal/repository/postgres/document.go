package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

var _ model.DocumentStore = (*DocumentRepository)(nil)

// DefaultTxMaxAttempts bounds how often a conflicting transaction is retried.
const DefaultTxMaxAttempts = 5

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DocumentRepository stores documents as JSONB rows keyed by (collection, id).
type DocumentRepository struct {
	db          *Connection
	maxAttempts int
}

func NewDocumentRepository(db *Connection, maxAttempts int) *DocumentRepository {
	if maxAttempts <= 0 {
		maxAttempts = DefaultTxMaxAttempts
	}
	return &DocumentRepository{
		db:          db,
		maxAttempts: maxAttempts,
	}
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (model.Document, error) {
	return getDocument(ctx, r.db, collection, id, false)
}

func (r *DocumentRepository) List(ctx context.Context, collection string) ([]model.Document, error) {
	const query = `
		SELECT id, data, create_time, update_time
		FROM documents
		WHERE collection = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc := model.Document{Collection: collection}
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreateTime, &doc.UpdateTime); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentRepository) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return setDocument(ctx, r.db, collection, id, data)
}

func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	return deleteDocument(ctx, r.db, collection, id)
}

// RunTransaction runs fn in a SERIALIZABLE transaction. Serialization failures
// and deadlocks abort the attempt and fn is run again.
func (r *DocumentRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx model.DocumentTx) error) error {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", r.maxAttempts, err)
}

func (r *DocumentRepository) runOnce(ctx context.Context, fn func(ctx context.Context, tx model.DocumentTx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &documentTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

type documentTx struct {
	tx pgx.Tx
}

// Get locks the row so that concurrent transactions touching it serialize.
func (t *documentTx) Get(ctx context.Context, collection, id string) (model.Document, error) {
	return getDocument(ctx, t.tx, collection, id, true)
}

func (t *documentTx) Create(ctx context.Context, collection, id string, data map[string]any) error {
	const query = `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO NOTHING`

	cmd, err := t.tx.Exec(ctx, query, collection, id, nonNil(data))
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrAlreadyExists
	}
	return nil
}

func (t *documentTx) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return setDocument(ctx, t.tx, collection, id, data)
}

func (t *documentTx) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	const query = `
		UPDATE documents
		SET data = data || $3::jsonb, update_time = NOW()
		WHERE collection = $1 AND id = $2`

	cmd, err := t.tx.Exec(ctx, query, collection, id, nonNil(fields))
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (t *documentTx) Delete(ctx context.Context, collection, id string) error {
	return deleteDocument(ctx, t.tx, collection, id)
}

func getDocument(ctx context.Context, q querier, collection, id string, forUpdate bool) (model.Document, error) {
	query := `
		SELECT data, create_time, update_time
		FROM documents
		WHERE collection = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	doc := model.Document{Collection: collection, ID: id}
	err := q.QueryRow(ctx, query, collection, id).Scan(&doc.Data, &doc.CreateTime, &doc.UpdateTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

func setDocument(ctx context.Context, q querier, collection, id string, data map[string]any) error {
	const query = `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, update_time = NOW()`

	if _, err := q.Exec(ctx, query, collection, id, nonNil(data)); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

func deleteDocument(ctx context.Context, q querier, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	cmd, err := q.Exec(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func nonNil(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}
