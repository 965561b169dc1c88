// File: internal/usecase/transcription_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
	"ai-storefront-builder/internal/infra/logging"
	"ai-storefront-builder/internal/infra/metrics"
)

var _ TranscriptionUseCase = (*transcriptionUC)(nil)

// TranscriptionUseCase turns a voice recording into prompt text. It is synchronous.
type TranscriptionUseCase interface {
	Transcribe(ctx context.Context, audio adapter.Audio) (string, error)
}

type transcriptionUC struct {
	stt adapter.Transcriber
	log *zerolog.Logger
}

func NewTranscriptionUseCase(stt adapter.Transcriber, logger *zerolog.Logger) *transcriptionUC {
	return &transcriptionUC{stt: stt, log: logger}
}

func (u *transcriptionUC) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	defer logging.TraceDuration(u.log, "TranscriptionUC.Transcribe")()

	if audio.Body == nil {
		metrics.IncTranscription("rejected")
		return "", domain.ErrNoAudio
	}
	text, err := u.stt.Transcribe(ctx, audio)
	if err != nil {
		metrics.IncTranscription("failed")
		logging.With(ctx, u.log).Error().Err(err).Str("filename", audio.Filename).Msg("transcription failed")
		if errors.Is(err, domain.ErrNoAudio) {
			return "", err
		}
		return "", errors.Join(domain.ErrExternalService, err)
	}
	metrics.IncTranscription("ok")
	return text, nil
}
