package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/textsnap/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	APIKey string
}

// New returns a new Gemini provider
func New(apiKey string) *Gemini {
	return &Gemini{APIKey: apiKey}
}

// ExtractBlocks transcribes the image with a Gemini model
func (g *Gemini) ExtractBlocks(ctx context.Context, config providers.Config) ([]string, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(config.MIMEType), config.Image),
		genai.Text(config.Prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	return providers.SplitBlocks(text.String()), nil
}

// imageFormat turns a MIME type into the short format genai.ImageData expects
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" {
		return "jpeg"
	}
	return format
}
