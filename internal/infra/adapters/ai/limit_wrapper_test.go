package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-storefront-builder/internal/domain/ports/adapter"
)

type slowGenerator struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowGenerator) Name() string { return "slow" }

func (s *slowGenerator) Generate(ctx context.Context, _ adapter.GenerateRequest) (adapter.GenerateResult, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return adapter.GenerateResult{Text: "ok"}, nil
}

func TestLimitedGenerator_CapsConcurrency(t *testing.T) {
	inner := &slowGenerator{}
	g := NewLimitedGenerator(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Generate(context.Background(), adapter.GenerateRequest{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, inner.peak.Load(), int32(2))
	assert.Equal(t, "slow", g.Name())
}

func TestLimitedGenerator_HonorsContext(t *testing.T) {
	block := make(chan struct{})
	inner := &blockingGenerator{release: block, started: make(chan struct{})}
	g := NewLimitedGenerator(inner, 1)

	go func() { _, _ = g.Generate(context.Background(), adapter.GenerateRequest{}) }()
	<-inner.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, adapter.GenerateRequest{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}

type blockingGenerator struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingGenerator) Name() string { return "blocking" }

func (b *blockingGenerator) Generate(context.Context, adapter.GenerateRequest) (adapter.GenerateResult, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return adapter.GenerateResult{}, nil
}

func TestNewLimitedGenerator_ZeroIsPassthrough(t *testing.T) {
	inner := &stubGenerator{name: "x"}
	assert.Same(t, adapter.TextGenerator(inner), NewLimitedGenerator(inner, 0))
}
