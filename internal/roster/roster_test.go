package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/greenhouse-admin/internal/model"
	"github.com/dtroode/greenhouse-admin/internal/repository/memory"
	"github.com/dtroode/greenhouse-admin/internal/testutil"
)

func TestRequestView_Defaults(t *testing.T) {
	doc := model.Document{ID: "req1", Data: map[string]any{}}

	got := requestView(doc, Lookup("en"))
	assert.Equal(t, RequestView{
		ID:          "req1",
		CIN:         "req1",
		Name:        "Unknown",
		Email:       "N/A",
		Phone:       "N/A",
		RequestType: "Unknown",
		Date:        "N/A",
		Status:      "pending",
		AuthUID:     "",
		EC:          0,
	}, got)

	fr := requestView(doc, Lookup("fr"))
	assert.Equal(t, "Inconnu", fr.Name)
	assert.Equal(t, "N/D", fr.Email)
}

func TestRequestView_Populated(t *testing.T) {
	doc := model.Document{ID: "req1", Data: map[string]any{
		model.FieldCIN:         "AB1234",
		model.FieldName:        "Alice",
		model.FieldEmail:       "alice@example.com",
		model.FieldPhone:       "0600",
		model.FieldRequestType: "signup",
		model.FieldDate:        "2024-04-30T09:05:00Z",
		model.FieldStatus:      "pending",
		model.FieldAuthUID:     "u1",
		model.FieldEC:          float64(3),
	}}

	got := requestView(doc, Lookup("en"))
	assert.Equal(t, "AB1234", got.CIN)
	assert.Equal(t, "April 30, 2024 09:05 AM", got.Date)
	assert.Equal(t, "u1", got.AuthUID)
	assert.Equal(t, 3, got.EC)
}

func TestClientView(t *testing.T) {
	doc := model.Document{ID: "u1", Data: map[string]any{
		model.FieldName:         "Alice",
		model.FieldDateAccepted: "2024-05-01T10:30:00Z",
	}}

	got := clientView(doc, Lookup("en"))
	assert.Equal(t, ClientView{
		ID:           "u1",
		Name:         "Alice",
		Email:        "N/A",
		CIN:          "N/A",
		RequestType:  "Unknown",
		DateAccepted: "May 1, 2024 10:30 AM",
	}, got)
}

func TestProjection_Run(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.Set(ctx, model.CollectionRequests, "req1", map[string]any{model.FieldName: "Alice"}))

	p := NewProjection(store, testutil.MakeNoopLogger(), "fr")
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return len(p.Requests("")) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "N/D", p.Requests("")[0].Email)
	assert.Equal(t, "N/A", p.Requests("en")[0].Email)

	require.NoError(t, store.Set(ctx, model.CollectionClients, "u1", map[string]any{model.FieldName: "Alice"}))
	require.NoError(t, store.Delete(ctx, model.CollectionRequests, "req1"))

	require.Eventually(t, func() bool {
		return len(p.Requests("")) == 0 && len(p.Clients("")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "u1", p.Clients("en")[0].ID)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type failingFeed struct{ err error }

func (f failingFeed) Watch(ctx context.Context, collection string, fn func(model.Snapshot)) error {
	if collection == model.CollectionClients {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestProjection_RunFailure(t *testing.T) {
	boom := errors.New("feed closed")
	p := NewProjection(failingFeed{err: boom}, testutil.MakeNoopLogger(), "en")

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to watch clients")
}
