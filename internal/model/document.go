package model

import (
	"context"
	"time"
)

// Collection names used by the dashboard.
const (
	CollectionRequests = "requests"
	CollectionClients  = "clients"
)

// Document is a single keyed document in a collection.
type Document struct {
	Collection string
	ID         string
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// DocumentStore is a collection-of-documents store with multi-document transactions.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// RunTransaction runs fn atomically. fn may be invoked more than once when
	// the store aborts on conflict, so it must not have side effects outside tx.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx DocumentTx) error) error
}

// DocumentTx is the transaction-scoped view of a DocumentStore. Reads observe
// the transaction's own writes.
type DocumentTx interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create fails with ErrAlreadyExists if the document is present.
	Create(ctx context.Context, collection, id string, data map[string]any) error
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges fields into an existing document; ErrNotFound if absent.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document; ErrNotFound if absent.
	Delete(ctx context.Context, collection, id string) error
}

// ChangeType classifies a document change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change describes one change that led to a snapshot.
type Change struct {
	Type       ChangeType
	DocumentID string
}

// Snapshot is the full state of a collection after one or more changes.
type Snapshot struct {
	Collection string
	Documents  []Document
	Changes    []Change
	ReadTime   time.Time
}

// ChangeFeed delivers collection snapshots. Watch blocks until ctx is done or
// the feed fails; the first snapshot carries no changes.
type ChangeFeed interface {
	Watch(ctx context.Context, collection string, fn func(Snapshot)) error
}
