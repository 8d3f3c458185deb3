package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/bootstrap"
	"github.com/campusconnect/campusconnect/internal/config"
)

func freePort(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return port
}

func TestRunServesUntilContextEnds(t *testing.T) {
	t.Setenv("STORE_DRIVER", config.StoreDriverMemory)
	t.Setenv("IDENTITY_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", freePort(t))
	cfg, err := config.LoadConfig("does-not-exist.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := bootstrap.SetupStorage(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	deps := bootstrap.BuildDependencies(cfg, storage, zerolog.Nop())
	srv := New(cfg, bootstrap.SetupRouter(cfg, deps, zerolog.Nop()), deps, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.Server.Port + "/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
