package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"proteomorphic/src/internal/config"
)

// Service owns the process-wide embedding backend. It is loaded once and is
// read-only afterwards, so Embed may be called from any number of requests.
type Service struct {
	cfg config.EmbeddingConfig

	once     sync.Once
	backend  Embedder
	device   string
	loadErr  error
	provider string
}

func NewService(cfg config.EmbeddingConfig) *Service {
	return &Service{cfg: cfg, provider: cfg.Provider}
}

// NewServiceWith wraps an already constructed backend, mostly for tests and
// embedding the analyzer in other programs.
func NewServiceWith(e Embedder, device string) *Service {
	s := &Service{backend: e, device: device, provider: "custom"}
	s.once.Do(func() {})
	return s
}

// Load initialises the backend on first call. Later calls return the result
// of the first one.
func (s *Service) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.backend, s.device, s.loadErr = open(ctx, s.cfg)
		if s.loadErr != nil {
			slog.Warn("embedding model not loaded, falling back to rule-based analysis", "provider", s.cfg.Provider, "error", s.loadErr)
			s.backend = nil
			return
		}
		if s.backend != nil {
			slog.Info("embedding model loaded", "provider", s.cfg.Provider, "device", s.device)
		}
	})
	return s.loadErr
}

func open(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, string, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, "", nil
	case "static":
		e, err := LoadStaticEmbedderMsgPack(cfg.Path)
		if err != nil {
			return nil, "", err
		}
		return e, "cpu", nil
	case "esm":
		c, err := DialESM(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, "", err
		}
		return c, c.Device(), nil
	case "openai", "openai-compatible":
		if cfg.Provider == "openai-compatible" && cfg.URL == "" {
			return nil, "", fmt.Errorf("openai-compatible provider requires embedding.url")
		}
		return NewOpenAIEmbedder(cfg.APIKey, cfg.URL, cfg.Model), "remote", nil
	default:
		fn, err := chromemFunc(cfg.Provider, cfg.APIKey, cfg.URL, cfg.Model)
		if err != nil {
			return nil, "", err
		}
		return FromEmbeddingFunc(fn), "remote", nil
	}
}

// Loaded reports whether a backend is ready.
func (s *Service) Loaded() bool {
	return s != nil && s.backend != nil
}

// Device is the compute device the backend reports, "cpu" when none is loaded.
func (s *Service) Device() string {
	if !s.Loaded() || s.device == "" {
		return "cpu"
	}
	return s.device
}

func (s *Service) Provider() string {
	if s == nil || s.provider == "" {
		return "none"
	}
	return s.provider
}

func (s *Service) Embed(ctx context.Context, sequence string) ([][]float32, error) {
	if !s.Loaded() {
		return nil, ErrUnavailable
	}
	return s.backend.Embed(ctx, sequence)
}
