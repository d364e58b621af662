package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestManager_SetAndGetOperator(t *testing.T) {
	m := NewManager()
	ctx := m.SetOperatorToContext(stdctx.Background(), "alice")

	got, ok := m.GetOperatorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", got)
}

func TestManager_GetOperator_NotFound(t *testing.T) {
	m := NewManager()
	_, ok := m.GetOperatorFromContext(stdctx.Background())
	assert.False(t, ok)
}

func TestManager_SetOperator_WithExistingMetadata(t *testing.T) {
	m := NewManager()
	baseMD := metadata.New(map[string]string{"x-trace-id": "t"})
	ctxWithMD := metadata.NewIncomingContext(stdctx.Background(), baseMD)

	ctx := m.SetOperatorToContext(ctxWithMD, "alice")
	got, ok := m.GetOperatorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", got)

	md, _ := metadata.FromIncomingContext(ctx)
	assert.Equal(t, []string{"t"}, md.Get("x-trace-id"))
	assert.Empty(t, baseMD.Get(operatorKey), "original metadata must not be mutated")
}

func TestManager_GetOperator_Blank(t *testing.T) {
	m := NewManager()
	md := metadata.New(map[string]string{"x-operator": "   "})
	ctx := metadata.NewIncomingContext(stdctx.Background(), md)
	_, ok := m.GetOperatorFromContext(ctx)
	assert.False(t, ok)
}

func TestOutgoingContext(t *testing.T) {
	ctx := OutgoingContext(stdctx.Background(), "alice")
	md, ok := metadata.FromOutgoingContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, []string{"alice"}, md.Get("x-operator"))
}
