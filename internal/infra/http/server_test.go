package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-storefront-builder/internal/config"
)

func TestServer_StartShutdown(t *testing.T) {
	log := zerolog.Nop()
	s := NewServer(config.HTTPConfig{Port: 0}, http.NotFoundHandler(), &log)
	assert.Equal(t, ":0", s.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
