//go:build integration

package minio_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/greenhouse-admin/internal/model"
	store "github.com/dtroode/greenhouse-admin/internal/storage/minio"
)

var endpoint string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(2 * time.Minute),
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
	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		panic(err)
	}
	endpoint = fmt.Sprintf("%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestClient_DeviceStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc, err := minioLib.New(endpoint, &minioLib.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	trees, err := store.NewClient(ctx, mc, "greenhouse-test")
	require.NoError(t, err)

	state := model.NewDeviceState("Alice", 3)
	path := model.DeviceStatePath(model.DefaultDeviceRoot, "u1")

	require.NoError(t, trees.Set(ctx, path, state.Tree()))

	got, err := trees.Get(ctx, path)
	require.NoError(t, err)
	decoded, err := model.DeviceStateFromTree(got)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)

	require.NoError(t, trees.Set(ctx, path+"/name", "Bob"))
	name, err := trees.Get(ctx, path+"/name")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)

	keys, err := trees.Keys(ctx, model.DefaultDeviceRoot)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, keys)

	require.NoError(t, trees.Remove(ctx, path))
	_, err = trees.Get(ctx, path)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
