package model

import (
	"context"
	"strings"
)

// TreeStore is a hierarchical key-value store with atomic subtree writes.
// Values are JSON-compatible trees (map[string]any, string, float64, bool).
type TreeStore interface {
	// Set atomically overwrites the subtree at path.
	Set(ctx context.Context, path string, value any) error
	// Get returns the subtree at path or ErrNotFound.
	Get(ctx context.Context, path string) (any, error)
	// Remove deletes the subtree at path. Removing an absent path is not an error.
	Remove(ctx context.Context, path string) error
	// Keys lists the names of the direct children of path.
	Keys(ctx context.Context, path string) ([]string, error)
}

// SplitPath splits a slash separated tree path, ignoring empty segments.
func SplitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// JoinPath joins segments into a tree path.
func JoinPath(segments ...string) string {
	return strings.Join(SplitPath(strings.Join(segments, "/")), "/")
}
