// Package console renders the workflow on a terminal: notices go to stderr,
// recognized blocks to stdout.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/textsnap/internal/models"
)

// Console implements workflow.View and workflow.Notifier
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	errOut      io.Writer
	previewPath string
}

// New writes blocks to out and notices to errOut. If previewPath is set, the
// upright picture is saved there whenever it changes.
func New(out, errOut io.Writer, previewPath string) *Console {
	return &Console{out: out, errOut: errOut, previewPath: previewPath}
}

func (c *Console) ShowImage(img *models.CapturedImage) {
	if img == nil || c.previewPath == "" {
		return
	}
	if err := imaging.Save(img.Image, c.previewPath); err != nil {
		slog.Warn("Unable to save preview", "path", c.previewPath, "err", err)
		return
	}
	slog.Info("Preview saved", "path", c.previewPath, "rotation", img.Rotation)
}

func (c *Console) SetBlocks(blocks []string) {
	if len(blocks) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, block := range blocks {
		// indent continuation lines under the block number
		text := strings.ReplaceAll(block, "\n", "\n    ")
		fmt.Fprintf(c.out, "%3d %s\n", i+1, text)
	}
}

func (c *Console) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.errOut, "! %s\n", message)
}
