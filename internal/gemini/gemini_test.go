package gemini

import (
	"context"
	"testing"

	"github.com/lehigh-university-libraries/textsnap/internal/providers"
	"github.com/stretchr/testify/assert"
)

func TestImageFormat(t *testing.T) {
	tests := []struct {
		mimeType string
		expected string
	}{
		{mimeType: "image/jpeg", expected: "jpeg"},
		{mimeType: "image/png", expected: "png"},
		{mimeType: "", expected: "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.expected, imageFormat(tt.mimeType))
		})
	}
}

func TestExtractBlocksWithoutKey(t *testing.T) {
	_, err := New("").ExtractBlocks(context.Background(), providers.Config{})
	assert.Error(t, err)
}
