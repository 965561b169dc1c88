package usecase

import (
	"ai-storefront-builder/internal/domain/model"
)

// GenerationDispatcher hands a freshly created pending site to the background
// generation pipeline. It must not block on the generation itself.
type GenerationDispatcher interface {
	Dispatch(site *model.Site)
}
