package cmd

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/textsnap/internal/capture"
	"github.com/lehigh-university-libraries/textsnap/internal/storage"
	"github.com/lehigh-university-libraries/textsnap/internal/workflow"
	"github.com/spf13/cobra"
)

func newRecognizeCmd(opts *rootOptions) *cobra.Command {
	var flags recognitionFlags
	var preview string

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "List the text recognized in an existing picture",
		Long: `Copies the picture into the capture location and runs it through the same
orientation correction and recognition as a fresh capture.`,
		Example: `  textsnap recognize receipt.jpg
  textsnap recognize scan.jpg --provider openai --model gpt-4o`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(flags)
			if err != nil {
				return err
			}

			src, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open picture: %w", err)
			}
			defer src.Close()

			pictures := storage.New(cfg.PictureDir)
			path, _, err := pictures.Write(src)
			if err != nil {
				return err
			}
			req := capture.NewRequest(path, pictures.URI(path))

			// the picture is already on disk, so there is nothing to launch
			return runCycle(cmd, cfg, capture.NewCommandCapturer(cfg.CaptureCommand), preview, func(c *workflow.Controller) {
				c.HandleCaptureResult(capture.Result{Request: req, Outcome: capture.Succeeded})
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&preview, "preview", "", "Save the upright picture to this path")

	return cmd
}
