package pagecache

import (
	"context"
	"testing"

	"fightstats-backend/lib/telemetry"
	"fightstats-backend/lib/testutil"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNop(t *testing.T) {
	cache, closeCache, err := Open(context.Background(), Config{}, &telemetry.Recorder{})
	require.NoError(t, err)
	defer closeCache()

	cache.Set(context.Background(), "https://example.com", []byte("page"))
	_, ok := cache.Get(context.Background(), "https://example.com")
	require.False(t, ok)
}

func TestRedis(t *testing.T) {
	addr := testutil.StartContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})

	ctx := context.Background()
	rec := &telemetry.Recorder{}
	cache, closeCache, err := Open(ctx, Config{Addr: addr, Prefix: "test:"}, rec)
	require.NoError(t, err)
	defer closeCache()

	_, ok := cache.Get(ctx, "https://gidstats.com/ru/events/")
	require.False(t, ok)

	cache.Set(ctx, "https://gidstats.com/ru/events/", []byte("<html></html>"))
	page, ok := cache.Get(ctx, "https://gidstats.com/ru/events/")
	require.True(t, ok)
	require.Equal(t, "<html></html>", string(page))

	require.Empty(t, rec.Reports(telemetry.KindWarning))
}

func TestRedisUnreachable(t *testing.T) {
	_, _, err := Open(context.Background(), Config{Addr: "127.0.0.1:1"}, &telemetry.Recorder{})
	require.Error(t, err)
}
