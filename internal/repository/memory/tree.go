package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

var _ model.TreeStore = (*TreeStore)(nil)

// TreeStore is an in-process hierarchical key-value store.
type TreeStore struct {
	mu   sync.RWMutex
	root map[string]any
}

// NewTreeStore creates an empty TreeStore.
func NewTreeStore() *TreeStore {
	return &TreeStore{root: make(map[string]any)}
}

func (s *TreeStore) Set(ctx context.Context, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	segments := model.SplitPath(path)
	if len(segments) == 0 {
		return fmt.Errorf("%w: cannot overwrite the root", model.ErrInvalidPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = cloneValue(value)
	return nil
}

func (s *TreeStore) Get(ctx context.Context, path string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.lookupLocked(model.SplitPath(path))
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneValue(v), nil
}

func (s *TreeStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	segments := model.SplitPath(path)
	if len(segments) == 0 {
		return fmt.Errorf("%w: cannot remove the root", model.ErrInvalidPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.lookupLocked(segments[:len(segments)-1])
	if !ok {
		return nil
	}
	if m, ok := parent.(map[string]any); ok {
		delete(m, segments[len(segments)-1])
	}
	return nil
}

func (s *TreeStore) Keys(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.lookupLocked(model.SplitPath(path))
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *TreeStore) lookupLocked(segments []string) (any, bool) {
	var node any = s.root
	for _, seg := range segments {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}
