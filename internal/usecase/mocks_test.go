package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

// ---- Fakes ----

type recordingDispatcher struct {
	mu    sync.Mutex
	sites []*model.Site
}

func (d *recordingDispatcher) Dispatch(site *model.Site) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sites = append(d.sites, site)
}

type fixedCounter int

func (c fixedCounter) Count(string) int { return int(c) }

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, audio.Body)
	return f.text, nil
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}
