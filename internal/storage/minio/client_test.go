package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	mu      sync.Mutex
	objects map[string][]byte

	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putErr    error
	getErr    error
	readErr   error
	removeErr error
	listErr   error

	puts int
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{bucketExists: true, objects: make(map[string][]byte)}
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.puts++
	return minioLib.UploadInfo{Key: key, Size: int64(len(data))}, nil
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, key string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.readErr != nil {
		return io.NopCloser(&errReader{err: f.readErr}), nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return io.NopCloser(&errReader{err: minioLib.ErrorResponse{Code: "NoSuchKey"}}), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, key string, _ minioLib.RemoveObjectOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}
func (f *fakeMinio) ListObjects(_ context.Context, _ string, opts minioLib.ListObjectsOptions) <-chan minioLib.ObjectInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	ch := make(chan minioLib.ObjectInfo, len(keys)+1)
	if f.listErr != nil {
		ch <- minioLib.ObjectInfo{Err: f.listErr}
	}
	for _, k := range keys {
		ch <- minioLib.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

type errReader struct{ err error }

func (r *errReader) Read(_ []byte) (int, error) { return 0, r.err }

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "b")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "b", c.bucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	require.NoError(t, err)
	assert.Equal(t, "bucket", c.bucket)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestNewClientWithAPI_MakeBucketError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false, makeBucketErr: errors.New("fail")}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_SetGet(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	c := &Client{api: api, bucket: "b"}

	state := map[string]any{
		"name":        "Alice",
		"environment": map[string]any{"ec": float64(3)},
	}
	require.NoError(t, c.Set(ctx, "users/u1", state))
	assert.Contains(t, api.objects, "users/u1.json")
	assert.Equal(t, 1, api.puts)

	got, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	ec, err := c.Get(ctx, "users/u1/environment/ec")
	require.NoError(t, err)
	assert.Equal(t, float64(3), ec)

	_, err = c.Get(ctx, "users/u1/energy")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = c.Get(ctx, "users/u2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_SetNested(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	c := &Client{api: api, bucket: "b"}

	require.NoError(t, c.Set(ctx, "users/u1", map[string]any{"name": "Alice", "ec": float64(1)}))
	require.NoError(t, c.Set(ctx, "users/u1/name", "Bob"))

	got, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Bob", "ec": float64(1)}, got)

	t.Run("creates missing node", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "users/u9/environment/led", "ON"))
		got, err := c.Get(ctx, "users/u9")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"environment": map[string]any{"led": "ON"}}, got)
	})
}

func TestClient_InvalidPath(t *testing.T) {
	ctx := context.Background()
	c := &Client{api: newFakeMinio(), bucket: "b"}

	tests := []struct {
		name string
		call func() error
	}{
		{name: "set root", call: func() error { return c.Set(ctx, "", 1) }},
		{name: "set collection", call: func() error { return c.Set(ctx, "users", 1) }},
		{name: "get collection", call: func() error { _, err := c.Get(ctx, "users"); return err }},
		{name: "remove collection", call: func() error { return c.Remove(ctx, "users") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), model.ErrInvalidPath)
		})
	}
}

func TestClient_Remove(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	c := &Client{api: api, bucket: "b"}

	require.NoError(t, c.Set(ctx, "users/u1", map[string]any{"name": "Alice", "ec": float64(1)}))

	t.Run("field", func(t *testing.T) {
		require.NoError(t, c.Remove(ctx, "users/u1/ec"))
		got, err := c.Get(ctx, "users/u1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Alice"}, got)
	})

	t.Run("absent field", func(t *testing.T) {
		puts := api.puts
		require.NoError(t, c.Remove(ctx, "users/u1/missing/deeper"))
		assert.Equal(t, puts, api.puts)
	})

	t.Run("node", func(t *testing.T) {
		require.NoError(t, c.Remove(ctx, "users/u1"))
		_, err := c.Get(ctx, "users/u1")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("absent node", func(t *testing.T) {
		assert.NoError(t, c.Remove(ctx, "users/u1"))
		assert.NoError(t, c.Remove(ctx, "users/u1/name"))
	})

	t.Run("error", func(t *testing.T) {
		c := &Client{api: &fakeMinio{removeErr: errors.New("remove-fail")}, bucket: "b"}
		err := c.Remove(ctx, "users/u1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete object")
	})
}

func TestClient_Keys(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	c := &Client{api: api, bucket: "b"}

	require.NoError(t, c.Set(ctx, "users/u2", map[string]any{"name": "B"}))
	require.NoError(t, c.Set(ctx, "users/u1", map[string]any{"name": "A", "ec": float64(1)}))
	require.NoError(t, c.Set(ctx, "others/x", map[string]any{}))

	keys, err := c.Keys(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, keys)

	keys, err = c.Keys(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ec", "name"}, keys)

	keys, err = c.Keys(ctx, "users/missing")
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = c.Keys(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, keys)

	t.Run("list error", func(t *testing.T) {
		api.listErr = errors.New("list-fail")
		defer func() { api.listErr = nil }()
		_, err := c.Keys(ctx, "users")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list objects")
	})
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("put", func(t *testing.T) {
		api := newFakeMinio()
		api.putErr = errors.New("put-fail")
		c := &Client{api: api, bucket: "b"}
		err := c.Set(ctx, "users/u1", map[string]any{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload object")
	})

	t.Run("get", func(t *testing.T) {
		api := newFakeMinio()
		api.getErr = errors.New("get-fail")
		c := &Client{api: api, bucket: "b"}
		_, err := c.Get(ctx, "users/u1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get object")
	})

	t.Run("read", func(t *testing.T) {
		api := newFakeMinio()
		api.readErr = errors.New("read-fail")
		c := &Client{api: api, bucket: "b"}
		_, err := c.Get(ctx, "users/u1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read object")
	})

	t.Run("nested set does not overwrite on read failure", func(t *testing.T) {
		api := newFakeMinio()
		api.readErr = errors.New("read-fail")
		c := &Client{api: api, bucket: "b"}
		err := c.Set(ctx, "users/u1/name", "x")
		assert.Error(t, err)
		assert.Equal(t, 0, api.puts)
	})

	t.Run("corrupt object", func(t *testing.T) {
		api := newFakeMinio()
		api.objects["users/u1.json"] = []byte("{not json")
		c := &Client{api: api, bucket: "b"}
		_, err := c.Get(ctx, "users/u1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode node")
	})
}
