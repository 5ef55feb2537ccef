package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does not leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"TEXTSNAP_PROVIDER", "TEXTSNAP_MODEL", "TEXTSNAP_PICTURE_DIR", "TEXTSNAP_CAPTURE_COMMAND",
		"TEXTSNAP_VISION_LANGUAGE_HINTS", "TEXTSNAP_TESSERACT_LANGUAGES", "TEXTSNAP_TEMPERATURE", "OLLAMA_HOST", "OLLAMA_URL",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_APPLICATION_CREDENTIALS",
		"OPENAI_MODEL", "OLLAMA_MODEL", "GEMINI_MODEL",
	} {
		t.Setenv(env, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEXTSNAP_PICTURE_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderVision, cfg.Provider)
	assert.Equal(t, "", cfg.ModelFor(ProviderVision))
	assert.Equal(t, "gpt-4o", cfg.ModelFor(ProviderOpenAI))
	assert.Equal(t, "mistral-small3.2:24b", cfg.ModelFor(ProviderOllama))
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "textsnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`provider: ollama
model: llava:13b
temperature: 0.2
picture_dir: `+dir+`
capture_command: fswebcam --no-banner {path}
vision_language_hints: [en, de]
tesseract_languages: [eng, deu]
models:
  openai: gpt-4o-mini
`), 0644))

	t.Run("file only", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, cfg.Provider)
		assert.Equal(t, "llava:13b", cfg.ModelFor(ProviderOllama))
		assert.Equal(t, "gpt-4o-mini", cfg.ModelFor(ProviderOpenAI))
		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, []string{"en", "de"}, cfg.VisionLanguageHints)
		assert.Equal(t, []string{"eng", "deu"}, cfg.TesseractLanguages)
		assert.Equal(t, "fswebcam --no-banner {path}", cfg.CaptureCommand)
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("TEXTSNAP_PROVIDER", "openai")
		t.Setenv("OPENAI_MODEL", "gpt-4.1")
		t.Setenv("OLLAMA_HOST", "http://gpu:11434")
		t.Setenv("TEXTSNAP_VISION_LANGUAGE_HINTS", "fr, it")
		t.Setenv("TEXTSNAP_TESSERACT_LANGUAGES", "fra,ita")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "gpt-4.1", cfg.ModelFor(ProviderOpenAI))
		assert.Equal(t, "llava:13b", cfg.ModelFor(ProviderOllama))
		assert.Equal(t, "http://gpu:11434", cfg.OllamaURL)
		assert.Equal(t, []string{"fr", "it"}, cfg.VisionLanguageHints)
		assert.Equal(t, []string{"fra", "ita"}, cfg.TesseractLanguages)
	})

	t.Run("file model stays with file provider", func(t *testing.T) {
		t.Setenv("TEXTSNAP_PROVIDER", "openai")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", cfg.ModelFor(ProviderOpenAI))
		assert.Equal(t, "llava:13b", cfg.ModelFor(ProviderOllama))
	})

	t.Run("provider model env beats file model", func(t *testing.T) {
		t.Setenv("OLLAMA_MODEL", "qwen2.5vl")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, cfg.Provider)
		assert.Equal(t, "qwen2.5vl", cfg.ModelFor(ProviderOllama))
	})

	t.Run("explicit model env wins", func(t *testing.T) {
		t.Setenv("TEXTSNAP_PROVIDER", "openai")
		t.Setenv("OPENAI_MODEL", "gpt-4.1")
		t.Setenv("TEXTSNAP_MODEL", "gpt-4.1-mini")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4.1-mini", cfg.ModelFor(ProviderOpenAI))
		assert.Equal(t, "llava:13b", cfg.ModelFor(ProviderOllama))
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unknown provider", env: map[string]string{"TEXTSNAP_PROVIDER": "firebase"}},
		{name: "bad temperature", env: map[string]string{"TEXTSNAP_TEMPERATURE": "hot"}},
		{name: "temperature out of range", env: map[string]string{"TEXTSNAP_TEMPERATURE": "3"}},
		{name: "missing file", file: "does-not-exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TEXTSNAP_PICTURE_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
