package model

import "context"

// ContextManager carries the acting operator through a call.
type ContextManager interface {
	SetOperatorToContext(ctx context.Context, operator string) context.Context
	GetOperatorFromContext(ctx context.Context) (string, bool)
}
