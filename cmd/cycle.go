package cmd

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/textsnap/internal/capture"
	"github.com/lehigh-university-libraries/textsnap/internal/config"
	"github.com/lehigh-university-libraries/textsnap/internal/console"
	"github.com/lehigh-university-libraries/textsnap/internal/recognition"
	"github.com/lehigh-university-libraries/textsnap/internal/storage"
	"github.com/lehigh-university-libraries/textsnap/internal/workflow"
	"github.com/spf13/cobra"
)

// runCycle wires a controller to the terminal, calls start once the loop is
// running and waits for the cycle to settle
func runCycle(cmd *cobra.Command, cfg *config.Config, capturer capture.Capturer, preview string, start func(*workflow.Controller)) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), preview)
	settled := make(chan workflow.Settlement, 1)
	controller := workflow.New(
		storage.New(cfg.PictureDir),
		capturer,
		recognition.NewService(cfg),
		out,
		out,
		workflow.WithSettledHook(func(s workflow.Settlement) {
			select {
			case settled <- s:
			default:
			}
		}),
	)

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- controller.Run(ctx)
	}()

	start(controller)

	select {
	case s := <-settled:
		if s.Status == workflow.StatusUnavailable {
			slog.Info("Nothing to capture with", "picture_dir", cfg.PictureDir, "command", cfg.CaptureCommand, "err", s.Err)
			return nil
		}
		slog.Debug("Cycle settled", "status", s.Status, "request_id", s.RequestID, "blocks", s.Blocks)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case err := <-loopDone:
		return err
	}
}
