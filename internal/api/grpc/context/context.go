package context

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// operatorKey is the metadata key carrying the acting operator's name.
const operatorKey string = "x-operator"

// Manager represents a gRPC context manager for operator identity.
// It reads and writes the operator through incoming gRPC metadata.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetOperatorToContext sets the operator in the incoming metadata of ctx,
// keeping any metadata already present.
func (m *Manager) SetOperatorToContext(ctx context.Context, operator string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{operatorKey: operator})
	} else {
		md = md.Copy()
		md.Set(operatorKey, operator)
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetOperatorFromContext returns the operator sent by the caller. Blank
// values count as absent.
func (m *Manager) GetOperatorFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	operators := md.Get(operatorKey)
	if len(operators) == 0 {
		return "", false
	}

	operator := strings.TrimSpace(operators[0])
	if operator == "" {
		return "", false
	}

	return operator, true
}

// OutgoingContext attaches operator to the metadata sent by a client call.
func OutgoingContext(ctx context.Context, operator string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, operatorKey, operator)
}
