package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/textsnap/internal/capture"
	"github.com/lehigh-university-libraries/textsnap/internal/handlers"
	"github.com/lehigh-university-libraries/textsnap/internal/recognition"
	"github.com/lehigh-university-libraries/textsnap/internal/storage"
	"github.com/lehigh-university-libraries/textsnap/internal/workflow"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var flags recognitionFlags
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for capturing and recognizing documents",
		Long: `Starts the textsnap web interface on the specified port.

Open it on a phone to take a picture with the browser's camera, or POST to
/api/capture/device to use the capture program configured on the server.`,
		Example: `  # Start server on default port 8888
  textsnap serve

  # Start server on custom port with Gemini
  textsnap serve --port 3000 --provider gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(flags)
			if err != nil {
				return err
			}

			pictures := storage.New(cfg.PictureDir)
			handler := handlers.New(pictures)
			controller := workflow.New(
				pictures,
				newDeviceCapturer(cfg.CaptureCommand),
				recognition.NewService(cfg),
				handler,
				handler,
			)
			handler.Attach(controller)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := controller.Run(ctx); err != nil {
					slog.Error("Workflow stopped", "err", err)
				}
			}()

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("textsnap interface available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}

// newDeviceCapturer builds the capturer behind /api/capture/device. The
// capture program never reads the server's stdin.
func newDeviceCapturer(commandLine string) *capture.CommandCapturer {
	capturer := capture.NewCommandCapturer(commandLine)
	capturer.Stdin = nil
	return capturer
}
