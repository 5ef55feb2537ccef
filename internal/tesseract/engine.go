//go:build tesseract

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/textsnap/internal/providers"
	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether the engine is compiled in
const Enabled = true

// ExtractBlocks returns one entry per block-level layout region
func (t *Tesseract) ExtractBlocks(ctx context.Context, config providers.Config) ([]string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(config.Image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	blocks := make([]string, 0, len(boxes))
	for _, box := range boxes {
		if text := strings.TrimSpace(box.Word); text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks, nil
}
