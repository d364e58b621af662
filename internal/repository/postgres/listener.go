package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

var _ model.ChangeFeed = (*DocumentRepository)(nil)

// NotifyChannel is the channel the documents trigger publishes on.
const NotifyChannel = "document_changes"

type notifyPayload struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

// Watch listens for document change notifications on a dedicated connection
// and delivers a fresh snapshot of collection after each relevant one.
func (r *DocumentRepository) Watch(ctx context.Context, collection string, fn func(model.Snapshot)) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen for document changes: %w", err)
	}
	defer func() {
		unlistenCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = conn.Exec(unlistenCtx, "UNLISTEN "+NotifyChannel)
	}()

	docs, err := r.List(ctx, collection)
	if err != nil {
		return err
	}
	fn(model.Snapshot{Collection: collection, Documents: docs, ReadTime: time.Now()})

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		var p notifyPayload
		if err := json.Unmarshal([]byte(n.Payload), &p); err != nil {
			return fmt.Errorf("failed to decode notification payload: %w", err)
		}
		if p.Collection != collection {
			continue
		}

		docs, err := r.List(ctx, collection)
		if err != nil {
			return err
		}
		fn(model.Snapshot{
			Collection: collection,
			Documents:  docs,
			Changes:    []model.Change{{Type: changeTypeFromOp(p.Op), DocumentID: p.ID}},
			ReadTime:   time.Now(),
		})
	}
}

func changeTypeFromOp(op string) model.ChangeType {
	switch op {
	case "INSERT":
		return model.ChangeAdded
	case "DELETE":
		return model.ChangeRemoved
	default:
		return model.ChangeModified
	}
}
