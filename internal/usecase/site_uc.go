// File: internal/usecase/site_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/model"
	"ai-storefront-builder/internal/domain/ports/repository"
	portsuc "ai-storefront-builder/internal/domain/ports/usecase"
	"ai-storefront-builder/internal/infra/logging"
	"ai-storefront-builder/internal/infra/metrics"
)

// Compile-time check
var _ SiteUseCase = (*siteUC)(nil)

// SubmitSiteInput is the create-site request body.
type SubmitSiteInput struct {
	Prompt string `json:"prompt" validate:"required,notblank,max=20000"`
}

// SiteUseCase is the create/poll/preview lifecycle of a generated storefront.
type SiteUseCase interface {
	Submit(ctx context.Context, in SubmitSiteInput) (*model.Site, error)
	Get(ctx context.Context, id int64) (*model.Site, error)
	Preview(ctx context.Context, id int64) (string, error)
}

// TokenCounter measures a prompt before it is accepted.
type TokenCounter interface {
	Count(text string) int
}

type siteUC struct {
	sites     repository.SiteRepository
	dispatch  portsuc.GenerationDispatcher
	tokens    TokenCounter
	maxTokens int
	validate  *validator.Validate
	dev       bool
	log       *zerolog.Logger
}

// NewSiteUseCase wires the store and the background dispatcher.
// tokens may be nil; maxPromptTokens <= 0 disables the ceiling.
func NewSiteUseCase(
	sites repository.SiteRepository,
	dispatch portsuc.GenerationDispatcher,
	tokens TokenCounter,
	maxPromptTokens int,
	logger *zerolog.Logger,
) *siteUC {
	return &siteUC{
		sites:     sites,
		dispatch:  dispatch,
		tokens:    tokens,
		maxTokens: maxPromptTokens,
		validate:  newValidator(),
		log:       logger,
	}
}

// SetDevMode controls whether prompts are logged verbatim.
func (u *siteUC) SetDevMode(dev bool) { u.dev = dev }

// Submit validates, stores a pending site, hands it to the generator and
// returns without waiting for generation.
func (u *siteUC) Submit(ctx context.Context, in SubmitSiteInput) (*model.Site, error) {
	defer logging.TraceDuration(u.log, "SiteUC.Submit")()

	if err := u.validate.Struct(in); err != nil {
		return nil, validationMessage(err)
	}
	if u.tokens != nil && u.maxTokens > 0 {
		n := u.tokens.Count(in.Prompt)
		metrics.ObservePromptTokens(n)
		if n > u.maxTokens {
			return nil, domain.NewValidationError(fmt.Sprintf("Prompt is too long (%d tokens, limit %d)", n, u.maxTokens))
		}
	}

	site, err := u.sites.Create(ctx, model.NewSite(in.Prompt))
	if err != nil {
		return nil, err
	}
	metrics.IncSiteSubmitted()
	logging.With(logging.WithSiteID(ctx, site.ID), u.log).Info().
		Str("prompt", logging.Redact(in.Prompt, u.dev)).
		Msg("site submitted")

	u.dispatch.Dispatch(site)
	return site, nil
}

func (u *siteUC) Get(ctx context.Context, id int64) (*model.Site, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	return u.sites.Get(ctx, id)
}

// Preview returns the stored markup, or ErrNotReady while there is none.
func (u *siteUC) Preview(ctx context.Context, id int64) (string, error) {
	site, err := u.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !site.HasCode() {
		return "", domain.ErrNotReady
	}
	return *site.Code, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// whitespace-only prompts carry nothing to generate from
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// validationMessage reduces validator output to the first human-readable message.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("Invalid input")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return domain.NewValidationError(fe.Field() + " is required")
	case "max":
		return domain.NewValidationError(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return domain.NewValidationError(fe.Field() + " is invalid")
	}
}
