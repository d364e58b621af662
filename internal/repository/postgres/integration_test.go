//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/greenhouse-admin/internal/model"
	repo "github.com/dtroode/greenhouse-admin/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "greenhouse_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/greenhouse_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newRepo(t *testing.T) *repo.DocumentRepository {
	t.Helper()
	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return repo.NewDocumentRepository(conn, 10)
}

func TestDocumentRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	docs := newRepo(t)
	coll := "crud_" + t.Name()

	_, err := docs.Get(ctx, coll, "r1")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, docs.Set(ctx, coll, "r1", map[string]any{"cin": "AB1234", "ec": 3}))

	got, err := docs.Get(ctx, coll, "r1")
	require.NoError(t, err)
	assert.Equal(t, "AB1234", got.Data["cin"])
	assert.Equal(t, float64(3), got.Data["ec"])
	assert.False(t, got.CreateTime.IsZero())

	require.NoError(t, docs.Set(ctx, coll, "r2", map[string]any{"cin": "CD5678"}))
	list, err := docs.List(ctx, coll)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r1", list[0].ID)

	require.NoError(t, docs.Delete(ctx, coll, "r1"))
	require.ErrorIs(t, docs.Delete(ctx, coll, "r1"), model.ErrNotFound)
}

func TestDocumentRepository_Transaction(t *testing.T) {
	ctx := context.Background()
	docs := newRepo(t)
	coll := "tx_" + t.Name()

	require.NoError(t, docs.Set(ctx, coll, "a", map[string]any{"n": 1}))

	t.Run("create conflict", func(t *testing.T) {
		err := docs.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
			return tx.Create(ctx, coll, "a", map[string]any{"n": 2})
		})
		require.ErrorIs(t, err, model.ErrAlreadyExists)
	})

	t.Run("update merges", func(t *testing.T) {
		err := docs.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
			return tx.Update(ctx, coll, "a", map[string]any{"m": "x"})
		})
		require.NoError(t, err)
		got, err := docs.Get(ctx, coll, "a")
		require.NoError(t, err)
		assert.Equal(t, float64(1), got.Data["n"])
		assert.Equal(t, "x", got.Data["m"])
	})

	t.Run("update missing", func(t *testing.T) {
		err := docs.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
			return tx.Update(ctx, coll, "missing", map[string]any{"m": "x"})
		})
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := docs.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
			if err := tx.Create(ctx, coll, "b", map[string]any{}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		_, err = docs.Get(ctx, coll, "b")
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

// Mirrors the approval commit: only one of many concurrent movers of the same
// document may succeed.
func TestDocumentRepository_ConcurrentMove(t *testing.T) {
	ctx := context.Background()
	docs := newRepo(t)
	src, dst := "src_"+t.Name(), "dst_"+t.Name()

	require.NoError(t, docs.Set(ctx, src, "r1", map[string]any{"authUid": "u1"}))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := docs.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
				doc, err := tx.Get(ctx, src, "r1")
				if err != nil {
					return err
				}
				if err := tx.Create(ctx, dst, "u1", doc.Data); err != nil {
					return err
				}
				return tx.Delete(ctx, src, "r1")
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrAlreadyExists), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	list, err := docs.List(ctx, dst)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDocumentRepository_Watch(t *testing.T) {
	docs := newRepo(t)
	coll := "watch_" + t.Name()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan model.Snapshot, 16)
	done := make(chan error, 1)
	go func() {
		done <- docs.Watch(ctx, coll, func(s model.Snapshot) { snapshots <- s })
	}()

	first := <-snapshots
	assert.Empty(t, first.Documents)
	assert.Empty(t, first.Changes)

	require.NoError(t, docs.Set(context.Background(), "other", "x", map[string]any{}))
	require.NoError(t, docs.Set(context.Background(), coll, "r1", map[string]any{"cin": "AB1234"}))

	select {
	case s := <-snapshots:
		require.Len(t, s.Documents, 1)
		require.Len(t, s.Changes, 1)
		assert.Equal(t, model.ChangeAdded, s.Changes[0].Type)
		assert.Equal(t, "r1", s.Changes[0].DocumentID)
	case <-time.After(10 * time.Second):
		t.Fatal("no snapshot after insert")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
