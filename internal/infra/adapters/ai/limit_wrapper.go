package ai

import (
	"context"

	"golang.org/x/sync/semaphore"

	"ai-storefront-builder/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.TextGenerator = (*limitedGenerator)(nil)

type limitedGenerator struct {
	inner adapter.TextGenerator
	sem   *semaphore.Weighted
}

// NewLimitedGenerator caps in-flight generation calls. Waiters give up when ctx ends.
func NewLimitedGenerator(inner adapter.TextGenerator, maxConcurrent int) adapter.TextGenerator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGenerator{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (l *limitedGenerator) Name() string { return l.inner.Name() }

func (l *limitedGenerator) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return adapter.GenerateResult{}, err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, req)
}

type limitedTranscriber struct {
	inner adapter.Transcriber
	sem   *semaphore.Weighted
}

func NewLimitedTranscriber(inner adapter.Transcriber, maxConcurrent int) adapter.Transcriber {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedTranscriber{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (l *limitedTranscriber) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.inner.Transcribe(ctx, audio)
}
