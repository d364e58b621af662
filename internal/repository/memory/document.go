package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

var (
	_ model.DocumentStore = (*DocumentStore)(nil)
	_ model.ChangeFeed    = (*DocumentStore)(nil)
)

// DocumentStore is an in-process document store. Every write, transactional
// or not, holds the same lock, so transactions are serializable.
type DocumentStore struct {
	mu          sync.Mutex
	collections map[string]map[string]model.Document
	watchers    map[string]map[*watcher]struct{}
	now         func() time.Time
}

// NewDocumentStore creates an empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		collections: make(map[string]map[string]model.Document),
		watchers:    make(map[string]map[*watcher]struct{}),
		now:         time.Now,
	}
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return model.Document{}, model.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *DocumentStore) List(_ context.Context, collection string) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(collection), nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
		return tx.Set(ctx, collection, id, data)
	})
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
		return tx.Delete(ctx, collection, id)
	})
}

// RunTransaction runs fn with the store locked and applies its staged writes
// only when fn returns nil.
func (s *DocumentStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx model.DocumentTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	tx := &documentTx{store: s, staged: make(map[docKey]*model.Document)}
	if err := fn(ctx, tx); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	changed := tx.applyLocked()
	snapshots := s.snapshotsLocked(changed)
	s.mu.Unlock()

	s.publish(snapshots)
	return nil
}

// Watch delivers a snapshot of collection now and after every committed change.
func (s *DocumentStore) Watch(ctx context.Context, collection string, fn func(model.Snapshot)) error {
	w := &watcher{signal: make(chan struct{}, 1)}

	s.mu.Lock()
	if s.watchers[collection] == nil {
		s.watchers[collection] = make(map[*watcher]struct{})
	}
	s.watchers[collection][w] = struct{}{}
	initial := model.Snapshot{Collection: collection, Documents: s.listLocked(collection), ReadTime: s.now()}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers[collection], w)
		s.mu.Unlock()
	}()

	fn(initial)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.signal:
			if snap, ok := w.take(); ok {
				fn(snap)
			}
		}
	}
}

func (s *DocumentStore) listLocked(collection string) []model.Document {
	docs := make([]model.Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, copyDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (s *DocumentStore) snapshotsLocked(changed map[string][]model.Change) map[*watcher]model.Snapshot {
	out := make(map[*watcher]model.Snapshot)
	for collection, changes := range changed {
		if len(s.watchers[collection]) == 0 {
			continue
		}
		snap := model.Snapshot{
			Collection: collection,
			Documents:  s.listLocked(collection),
			Changes:    changes,
			ReadTime:   s.now(),
		}
		for w := range s.watchers[collection] {
			out[w] = snap
		}
	}
	return out
}

func (s *DocumentStore) publish(snapshots map[*watcher]model.Snapshot) {
	for w, snap := range snapshots {
		w.offer(snap)
	}
}

type docKey struct {
	collection string
	id         string
}

type documentTx struct {
	store  *DocumentStore
	staged map[docKey]*model.Document
	order  []docKey
}

func (t *documentTx) lookup(collection, id string) (model.Document, bool) {
	key := docKey{collection: collection, id: id}
	if doc, ok := t.staged[key]; ok {
		if doc == nil {
			return model.Document{}, false
		}
		return *doc, true
	}
	doc, ok := t.store.collections[collection][id]
	return doc, ok
}

func (t *documentTx) stage(collection, id string, doc *model.Document) {
	key := docKey{collection: collection, id: id}
	if _, ok := t.staged[key]; !ok {
		t.order = append(t.order, key)
	}
	t.staged[key] = doc
}

func (t *documentTx) Get(_ context.Context, collection, id string) (model.Document, error) {
	doc, ok := t.lookup(collection, id)
	if !ok {
		return model.Document{}, model.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (t *documentTx) Create(ctx context.Context, collection, id string, data map[string]any) error {
	if _, ok := t.lookup(collection, id); ok {
		return model.ErrAlreadyExists
	}
	return t.Set(ctx, collection, id, data)
}

func (t *documentTx) Set(_ context.Context, collection, id string, data map[string]any) error {
	now := t.store.now()
	doc := model.Document{Collection: collection, ID: id, Data: cloneMap(data), CreateTime: now, UpdateTime: now}
	if prev, ok := t.lookup(collection, id); ok {
		doc.CreateTime = prev.CreateTime
	}
	t.stage(collection, id, &doc)
	return nil
}

func (t *documentTx) Update(_ context.Context, collection, id string, fields map[string]any) error {
	prev, ok := t.lookup(collection, id)
	if !ok {
		return model.ErrNotFound
	}
	doc := copyDocument(prev)
	if doc.Data == nil {
		doc.Data = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		doc.Data[k] = cloneValue(v)
	}
	doc.UpdateTime = t.store.now()
	t.stage(collection, id, &doc)
	return nil
}

func (t *documentTx) Delete(_ context.Context, collection, id string) error {
	if _, ok := t.lookup(collection, id); !ok {
		return model.ErrNotFound
	}
	t.stage(collection, id, nil)
	return nil
}

// applyLocked writes staged documents and returns the changes per collection.
func (t *documentTx) applyLocked() map[string][]model.Change {
	changed := make(map[string][]model.Change)
	for _, key := range t.order {
		doc := t.staged[key]
		docs := t.store.collections[key.collection]
		_, existed := docs[key.id]

		switch {
		case doc == nil && existed:
			delete(docs, key.id)
			changed[key.collection] = append(changed[key.collection], model.Change{Type: model.ChangeRemoved, DocumentID: key.id})
		case doc == nil:
		default:
			if docs == nil {
				docs = make(map[string]model.Document)
				t.store.collections[key.collection] = docs
			}
			docs[key.id] = *doc
			changeType := model.ChangeAdded
			if existed {
				changeType = model.ChangeModified
			}
			changed[key.collection] = append(changed[key.collection], model.Change{Type: changeType, DocumentID: key.id})
		}
	}
	return changed
}

func copyDocument(doc model.Document) model.Document {
	doc.Data = cloneMap(doc.Data)
	return doc
}

// watcher coalesces snapshots a slow consumer has not picked up yet.
type watcher struct {
	mu      sync.Mutex
	pending *model.Snapshot
	signal  chan struct{}
}

func (w *watcher) offer(snap model.Snapshot) {
	w.mu.Lock()
	if w.pending == nil {
		// Each watcher owns its pending changes; the published slice is shared.
		snap.Changes = append([]model.Change(nil), snap.Changes...)
		w.pending = &snap
	} else {
		w.pending.Documents = snap.Documents
		w.pending.Changes = append(w.pending.Changes, snap.Changes...)
		w.pending.ReadTime = snap.ReadTime
	}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *watcher) take() (model.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return model.Snapshot{}, false
	}
	snap := *w.pending
	w.pending = nil
	return snap, true
}
