package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/textsnap/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "textsnap",
		Short: "Photograph a document and read back the text in it",
		Long: `textsnap takes a picture of a document, turns it upright using its EXIF
orientation and lists the text blocks a recognition service finds in it.

Recognition providers: vision (Google Cloud Vision, default), gemini, openai,
ollama and tesseract (requires a build with -tags tesseract).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return setupLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newCaptureCmd(opts))
	cmd.AddCommand(newRecognizeCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

// recognitionFlags are shared by every command that runs recognition
type recognitionFlags struct {
	provider string
	model    string
}

func (f *recognitionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Recognition provider (vision, gemini, openai, ollama, tesseract)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (defaults to provider's default)")
}

// loadConfig reads the config file and environment, then applies flags
func (o *rootOptions) loadConfig(flags recognitionFlags) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if flags.provider != "" {
		cfg.Provider = flags.provider
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
