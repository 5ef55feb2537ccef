package cmd

import (
	"github.com/lehigh-university-libraries/textsnap/internal/capture"
	"github.com/lehigh-university-libraries/textsnap/internal/workflow"
	"github.com/spf13/cobra"
)

func newCaptureCmd(opts *rootOptions) *cobra.Command {
	var flags recognitionFlags
	var captureCommand string
	var preview string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Take a picture and list the text recognized in it",
		Long: `Runs the configured capture program, which must write a picture to the
path given by its {path} placeholder, then recognizes the text in that picture.

Exiting the capture program with a non-zero status counts as a canceled capture.
If the capture program cannot be found nothing happens.`,
		Example: `  # Raspberry Pi camera with Cloud Vision
  textsnap capture

  # USB webcam with a local Ollama model
  textsnap capture --capture-command "fswebcam --no-banner {path}" --provider ollama --model llava

  # Keep the upright picture
  textsnap capture --preview upright.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(flags)
			if err != nil {
				return err
			}
			if captureCommand != "" {
				cfg.CaptureCommand = captureCommand
			}

			capturer := capture.NewCommandCapturer(cfg.CaptureCommand)
			return runCycle(cmd, cfg, capturer, preview, func(c *workflow.Controller) {
				c.InitiateCapture(cmd.Context())
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&captureCommand, "capture-command", "", "Capture program and arguments; {path} and {uri} are replaced with the picture destination")
	cmd.Flags().StringVar(&preview, "preview", "", "Save the upright picture to this path")

	return cmd
}
