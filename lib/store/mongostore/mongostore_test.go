package mongostore

import (
	"context"
	"testing"

	"fightstats-backend/lib/store/storetest"
	"fightstats-backend/lib/testutil"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestStore(t *testing.T) {
	addr := testutil.StartContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	})

	store, err := Open(context.Background(), Config{
		Uri:      "mongodb://" + addr,
		Database: "fightstats-test",
	})
	require.NoError(t, err)
	defer store.Close()

	storetest.Run(t, store)
}

func TestMissingUri(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	require.ErrorContains(t, err, "a uri was not specified")
}
