// Package vision recognizes document text with the Google Cloud Vision API.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/lehigh-university-libraries/textsnap/internal/providers"
	"google.golang.org/api/option"
)

// Client is the subset of vision.ImageAnnotatorClient used here.
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
type Client interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

var _ Client = (*visionapi.ImageAnnotatorClient)(nil)

// Vision is a provider for Google Cloud Vision document text detection
type Vision struct {
	CredentialsFile string
	LanguageHints   []string
	newClient       func(ctx context.Context, opts ...option.ClientOption) (Client, error)
}

// New returns a new Cloud Vision provider. An empty credentialsFile falls
// back to Application Default Credentials.
func New(credentialsFile string, languageHints ...string) *Vision {
	return &Vision{
		CredentialsFile: credentialsFile,
		LanguageHints:   languageHints,
		newClient: func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
			return visionapi.NewImageAnnotatorClient(ctx, opts...)
		},
	}
}

// ExtractBlocks returns one entry per text block detected in the image.
// Model, prompt and temperature do not apply to Cloud Vision.
func (v *Vision) ExtractBlocks(ctx context.Context, config providers.Config) ([]string, error) {
	var opts []option.ClientOption
	if v.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(v.CredentialsFile))
	}

	client, err := v.newClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	defer client.Close()

	var imageContext *visionpb.ImageContext
	if len(v.LanguageHints) > 0 {
		imageContext = &visionpb.ImageContext{LanguageHints: v.LanguageHints}
	}

	resp, err := client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: config.Image},
			Features:     []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			ImageContext: imageContext,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect document text: %w", err)
	}

	responses := resp.GetResponses()
	if len(responses) == 0 {
		return nil, errors.New("failed to detect document text: empty response")
	}
	if status := responses[0].GetError(); status != nil {
		return nil, fmt.Errorf("failed to detect document text: %s (code %d)", status.GetMessage(), status.GetCode())
	}

	return Blocks(responses[0].GetFullTextAnnotation()), nil
}

// Blocks flattens a text annotation into block strings in page order
func Blocks(annotation *visionpb.TextAnnotation) []string {
	blocks := []string{}
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			if text := blockText(block); text != "" {
				blocks = append(blocks, text)
			}
		}
	}
	return blocks
}

func blockText(block *visionpb.Block) string {
	var sb strings.Builder
	for _, paragraph := range block.GetParagraphs() {
		for _, word := range paragraph.GetWords() {
			for _, symbol := range word.GetSymbols() {
				sb.WriteString(symbol.GetText())
				switch symbol.GetProperty().GetDetectedBreak().GetType() {
				case visionpb.TextAnnotation_DetectedBreak_SPACE, visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
					sb.WriteString(" ")
				case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE, visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
					sb.WriteString("\n")
				case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
					sb.WriteString("-\n")
				}
			}
		}
		if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
