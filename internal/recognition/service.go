package recognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/textsnap/internal/config"
	"github.com/lehigh-university-libraries/textsnap/internal/gemini"
	"github.com/lehigh-university-libraries/textsnap/internal/models"
	"github.com/lehigh-university-libraries/textsnap/internal/ollama"
	"github.com/lehigh-university-libraries/textsnap/internal/openai"
	"github.com/lehigh-university-libraries/textsnap/internal/providers"
	"github.com/lehigh-university-libraries/textsnap/internal/tesseract"
	"github.com/lehigh-university-libraries/textsnap/internal/vision"
)

// Service sends normalized pictures to a text recognition provider
type Service struct {
	cfg       *config.Config
	providers map[string]providers.Provider
}

// NewService creates a service with every provider configured from cfg
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg: cfg,
		providers: map[string]providers.Provider{
			config.ProviderVision:    vision.New(cfg.VisionCredentials, cfg.VisionLanguageHints...),
			config.ProviderGemini:    gemini.New(cfg.GeminiAPIKey),
			config.ProviderOpenAI:    openai.New(cfg.OpenAIAPIKey),
			config.ProviderOllama:    ollama.New(cfg.OllamaURL),
			config.ProviderTesseract: tesseract.New(cfg.TesseractLanguages...),
		},
	}
}

// Register replaces the provider used for name
func (s *Service) Register(name string, p providers.Provider) {
	s.providers[name] = p
}

// Recognize uses the configured provider and model
func (s *Service) Recognize(ctx context.Context, img image.Image) (*models.RecognitionResult, error) {
	return s.RecognizeWith(ctx, img, "", "")
}

// RecognizeWith extracts text blocks from img
func (s *Service) RecognizeWith(ctx context.Context, img image.Image, provider, model string) (*models.RecognitionResult, error) {
	// Set defaults if not provided
	if provider == "" {
		provider = s.cfg.Provider
	}
	if model == "" {
		model = s.cfg.ModelFor(provider)
	}

	p, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported recognition provider: %s", provider)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode picture for recognition: %w", err)
	}

	blocks, err := p.ExtractBlocks(ctx, providers.Config{
		Model:       model,
		Temperature: s.cfg.Temperature,
		Prompt:      providers.OCRPrompt,
		Image:       buf.Bytes(),
		MIMEType:    "image/jpeg",
	})
	if err != nil {
		return nil, fmt.Errorf("%s recognition failed: %w", provider, err)
	}
	if blocks == nil {
		blocks = []string{}
	}

	slog.Info("Extracted text blocks", "provider", provider, "model", model, "blocks", len(blocks), "bytes", buf.Len())
	return &models.RecognitionResult{
		Blocks:   blocks,
		Provider: provider,
		Model:    model,
	}, nil
}
