// Package config assembles runtime settings from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/textsnap/internal/storage"
	"gopkg.in/yaml.v3"
)

const (
	ProviderVision    = "vision"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderTesseract = "tesseract"
)

// Providers lists every supported recognition provider
var Providers = []string{ProviderVision, ProviderGemini, ProviderOpenAI, ProviderOllama, ProviderTesseract}

type Config struct {
	Provider string `yaml:"provider"`
	// Model in the file applies to the file's provider. After Load it only
	// holds an explicit TEXTSNAP_MODEL or --model choice for Provider.
	Model               string            `yaml:"model"`
	Models              map[string]string `yaml:"models"`
	Temperature         float64           `yaml:"temperature"`
	PictureDir          string            `yaml:"picture_dir"`
	CaptureCommand      string            `yaml:"capture_command"`
	VisionLanguageHints []string          `yaml:"vision_language_hints"`
	TesseractLanguages  []string          `yaml:"tesseract_languages"`
	OllamaURL           string            `yaml:"ollama_url"`
	OpenAIAPIKey        string            `yaml:"openai_api_key"`
	GeminiAPIKey        string            `yaml:"gemini_api_key"`
	VisionCredentials   string            `yaml:"vision_credentials"`
}

// Load reads path (if not empty), applies environment overrides and fills defaults
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Provider == "" {
		cfg.Provider = ProviderVision
	}
	if cfg.PictureDir == "" {
		dir, err := storage.DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.PictureDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	fileProvider, fileModel := c.Provider, c.Model
	if fileProvider == "" {
		fileProvider = ProviderVision
	}
	c.Model = ""

	setString(&c.Provider, "TEXTSNAP_PROVIDER")
	setString(&c.Model, "TEXTSNAP_MODEL")
	setString(&c.PictureDir, "TEXTSNAP_PICTURE_DIR")
	setString(&c.CaptureCommand, "TEXTSNAP_CAPTURE_COMMAND")
	setString(&c.OllamaURL, "OLLAMA_HOST")
	setString(&c.OllamaURL, "OLLAMA_URL")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.VisionCredentials, "GOOGLE_APPLICATION_CREDENTIALS")

	setList(&c.VisionLanguageHints, "TEXTSNAP_VISION_LANGUAGE_HINTS")
	setList(&c.TesseractLanguages, "TEXTSNAP_TESSERACT_LANGUAGES")

	if t := os.Getenv("TEXTSNAP_TEMPERATURE"); t != "" {
		temperature, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return fmt.Errorf("invalid TEXTSNAP_TEMPERATURE %q: %w", t, err)
		}
		c.Temperature = temperature
	}

	if c.Models == nil {
		c.Models = map[string]string{}
	}
	if fileModel != "" {
		c.Models[fileProvider] = fileModel
	}
	for provider, env := range map[string]string{
		ProviderOpenAI: "OPENAI_MODEL",
		ProviderOllama: "OLLAMA_MODEL",
		ProviderGemini: "GEMINI_MODEL",
	} {
		if model := os.Getenv(env); model != "" {
			c.Models[provider] = model
		}
	}

	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}
}

// Validate checks the provider name and temperature range
func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("unsupported recognition provider: %s (expected one of %s)", c.Provider, strings.Join(Providers, ", "))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	return nil
}

// ModelFor returns the model to use for provider: the explicit model when
// provider is the configured one, then the per-provider model, then the
// built-in default. Per-provider models rank OPENAI_MODEL style variables
// over the file's model over the file's models map.
func (c *Config) ModelFor(provider string) string {
	if c.Model != "" && provider == c.Provider {
		return c.Model
	}
	if model := c.Models[provider]; model != "" {
		return model
	}
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderOllama:
		return "mistral-small3.2:24b"
	case ProviderGemini:
		return "gemini-1.5-flash"
	default:
		return ""
	}
}
