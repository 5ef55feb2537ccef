//go:build !tesseract

package tesseract

import (
	"context"

	"github.com/lehigh-university-libraries/textsnap/internal/providers"
)

// Enabled reports whether the engine is compiled in
const Enabled = false

func (t *Tesseract) ExtractBlocks(ctx context.Context, config providers.Config) ([]string, error) {
	return nil, ErrUnavailable
}
