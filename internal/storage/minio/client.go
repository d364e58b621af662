package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

// nodeDepth is the path depth stored as one object: "users/u1" lives in
// "users/u1.json". Deeper paths address fields inside that object.
const nodeDepth = 2

const objectSuffix = ".json"

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return w.c.ListObjects(ctx, bucketName, opts)
}

var _ model.TreeStore = (*Client)(nil)

// Client is a TreeStore backed by a MinIO bucket.
type Client struct {
	api    minioAPI
	bucket string
}

// NewClient creates a new MinIO tree store using a real *minio.Client instance.
func NewClient(ctx context.Context, client *minio.Client, bucket string) (*Client, error) {
	return NewClientWithAPI(ctx, minioClientWrapper{c: client}, bucket)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api minioAPI, bucket string) (*Client, error) {
	c := &Client{
		api:    api,
		bucket: bucket,
	}

	err := c.ensureBucketExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

// ensureBucketExists creates the bucket if it doesn't exist
func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Set writes value at path. A node-level path is a single PutObject; deeper
// paths rewrite the owning node object.
func (c *Client) Set(ctx context.Context, path string, value any) error {
	segments := model.SplitPath(path)
	if len(segments) < nodeDepth {
		return fmt.Errorf("%w: %q is above node depth", model.ErrInvalidPath, path)
	}

	key := objectKey(segments)
	if len(segments) == nodeDepth {
		return c.put(ctx, key, value)
	}

	node, err := c.get(ctx, key)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	root, ok := node.(map[string]any)
	if !ok {
		root = make(map[string]any)
	}
	setIn(root, segments[nodeDepth:], value)

	return c.put(ctx, key, root)
}

// Get returns the value at path or model.ErrNotFound.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	segments := model.SplitPath(path)
	if len(segments) < nodeDepth {
		return nil, fmt.Errorf("%w: %q is above node depth", model.ErrInvalidPath, path)
	}

	node, err := c.get(ctx, objectKey(segments))
	if err != nil {
		return nil, err
	}

	v, ok := lookup(node, segments[nodeDepth:])
	if !ok {
		return nil, model.ErrNotFound
	}
	return v, nil
}

// Remove deletes the value at path. Absent paths are not an error.
func (c *Client) Remove(ctx context.Context, path string) error {
	segments := model.SplitPath(path)
	if len(segments) < nodeDepth {
		return fmt.Errorf("%w: %q is above node depth", model.ErrInvalidPath, path)
	}

	key := objectKey(segments)
	if len(segments) == nodeDepth {
		err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		return nil
	}

	node, err := c.get(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return err
	}
	parentPath := segments[nodeDepth : len(segments)-1]
	parent, ok := lookup(node, parentPath)
	if !ok {
		return nil
	}
	m, ok := parent.(map[string]any)
	if !ok {
		return nil
	}
	if _, present := m[segments[len(segments)-1]]; !present {
		return nil
	}
	delete(m, segments[len(segments)-1])

	return c.put(ctx, key, node)
}

// Keys lists the direct children of path.
func (c *Client) Keys(ctx context.Context, path string) ([]string, error) {
	segments := model.SplitPath(path)
	if len(segments) >= nodeDepth {
		v, err := c.Get(ctx, path)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, nil
			}
			return nil, err
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

	prefix := ""
	if len(segments) > 0 {
		prefix = strings.Join(segments, "/") + "/"
	}

	var keys []string
	for obj := range c.api.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		name = strings.TrimSuffix(name, "/")
		name = strings.TrimSuffix(name, objectSuffix)
		if name != "" {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *Client) put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode node: %w", err)
	}

	_, err = c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, key string) (any, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	// MinIO reports a missing key on first read, not on GetObject.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return v, nil
}

func objectKey(segments []string) string {
	return strings.Join(segments[:nodeDepth], "/") + objectSuffix
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func lookup(node any, segments []string) (any, bool) {
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

func setIn(root map[string]any, segments []string, value any) {
	node := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}
