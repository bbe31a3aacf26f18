package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/study-ai/backend/internal/config"
)

var (
	ErrMissingCredential = errors.New("no API key configured")
	ErrNoModelAvailable  = errors.New("no configured model could be initialized")
	errEmptyResponse     = errors.New("model returned an empty response")
)

// Completer issues a single prompt-in, text-out completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

type Completion struct {
	Text         string
	Model        string
	PromptTokens int
	OutputTokens int
}

// Backend opens models for one provider. Open is the initialization step;
// an error there lets the gateway move on to the next preferred model.
type Backend interface {
	Name() string
	Open(ctx context.Context, model string) (Model, error)
}

// Model is an initialized model handle.
type Model interface {
	ID() string
	Generate(ctx context.Context, prompt string) (*Completion, error)
}

// ModelLister is implemented by backends that can enumerate remote models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Gateway selects a model from an ordered preference list and issues one
// completion per call. It keeps no state between calls.
type Gateway struct {
	backend Backend
	models  []string
}

// New builds a gateway for the configured provider. A provider that needs
// a key and has none fails here with ErrMissingCredential.
func New(ctx context.Context, cfg config.GatewayConfig) (*Gateway, error) {
	if cfg.NeedsCredential() && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %s", ErrMissingCredential, cfg.Provider)
	}

	var backend Backend
	switch cfg.Provider {
	case "gemini":
		b, err := newGeminiBackend(ctx, cfg.APIKey, cfg.VerifyModels)
		if err != nil {
			return nil, err
		}
		backend = b
	case "anthropic":
		backend = newAnthropicBackend(cfg.APIKey)
	case "openai":
		backend = newOpenAIBackend(cfg.APIKey, cfg.BaseURL, cfg.VerifyModels)
	case "cli":
		backend = newCLIBackend(cfg.CLIPath)
	case "mock":
		backend = newMockBackend()
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}

	log.Printf("[gateway] provider %s, model preference %v", backend.Name(), cfg.Models)
	return NewWithBackend(backend, cfg.Models)
}

func NewWithBackend(backend Backend, models []string) (*Gateway, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no models configured for provider %s", backend.Name())
	}
	return &Gateway{backend: backend, models: append([]string(nil), models...)}, nil
}

func (g *Gateway) Provider() string { return g.backend.Name() }

func (g *Gateway) Models() []string { return append([]string(nil), g.models...) }

// Complete opens the first model that initializes and sends it the prompt.
// A failure of the completion request itself is classified and returned;
// it is never retried on the next model.
func (g *Gateway) Complete(ctx context.Context, prompt string) (*Completion, error) {
	model, err := g.selectModel(ctx)
	if err != nil {
		return nil, err
	}

	completion, err := model.Generate(ctx, prompt)
	if err != nil {
		return nil, Classify(model.ID(), err)
	}
	if completion.Text == "" {
		return nil, &Error{Kind: KindUnknown, Model: model.ID(), Err: errEmptyResponse}
	}
	log.Printf("[gateway] %s returned %d characters", model.ID(), len(completion.Text))
	return completion, nil
}

func (g *Gateway) selectModel(ctx context.Context) (Model, error) {
	var initErrs []error
	for _, id := range g.models {
		model, err := g.backend.Open(ctx, id)
		if err == nil {
			return model, nil
		}
		log.Printf("[gateway] model %s failed to initialize: %v", id, err)
		initErrs = append(initErrs, fmt.Errorf("%s: %w", id, err))
	}
	return nil, &Error{
		Kind: KindModelUnavailable,
		Err:  fmt.Errorf("%w: %w", ErrNoModelAvailable, errors.Join(initErrs...)),
	}
}

// ListModels returns the provider's remote model catalogue when the
// backend supports it, and the configured preference list otherwise.
func (g *Gateway) ListModels(ctx context.Context) ([]string, error) {
	lister, ok := g.backend.(ModelLister)
	if !ok {
		return g.Models(), nil
	}
	names, err := lister.ListModels(ctx)
	if err != nil {
		return nil, Classify("", err)
	}
	return names, nil
}

type unconfigured struct {
	err error
}

// Unconfigured returns a Completer that always fails with err. It lets a
// process start without a credential and report the problem per request.
func Unconfigured(err error) Completer {
	return unconfigured{err: err}
}

func (u unconfigured) Complete(context.Context, string) (*Completion, error) {
	return nil, u.err
}
