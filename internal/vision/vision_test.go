package vision

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/lehigh-university-libraries/textsnap/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/rpc/status"
)

type fakeClient struct {
	annotation *visionpb.TextAnnotation
	status     *status.Status
	empty      bool
	err        error
	got        *visionpb.AnnotateImageRequest
	closed     bool
}

func (f *fakeClient) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	if len(req.GetRequests()) > 0 {
		f.got = req.GetRequests()[0]
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return &visionpb.BatchAnnotateImagesResponse{}, nil
	}
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			FullTextAnnotation: f.annotation,
			Error:              f.status,
		}},
	}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func withBreak(text string, t visionpb.TextAnnotation_DetectedBreak_BreakType) *visionpb.Symbol {
	return &visionpb.Symbol{
		Text: text,
		Property: &visionpb.TextAnnotation_TextProperty{
			DetectedBreak: &visionpb.TextAnnotation_DetectedBreak{Type: t},
		},
	}
}

func word(symbols ...*visionpb.Symbol) *visionpb.Word {
	return &visionpb.Word{Symbols: symbols}
}

func annotation() *visionpb.TextAnnotation {
	return &visionpb.TextAnnotation{
		Pages: []*visionpb.Page{{
			Blocks: []*visionpb.Block{
				{Paragraphs: []*visionpb.Paragraph{{
					Words: []*visionpb.Word{
						word(&visionpb.Symbol{Text: "H"}, withBreak("i", visionpb.TextAnnotation_DetectedBreak_SPACE)),
						word(withBreak("there", visionpb.TextAnnotation_DetectedBreak_LINE_BREAK)),
					},
				}}},
				{Paragraphs: []*visionpb.Paragraph{
					{Words: []*visionpb.Word{word(withBreak("docu", visionpb.TextAnnotation_DetectedBreak_HYPHEN))}},
					{Words: []*visionpb.Word{word(&visionpb.Symbol{Text: "ment"})}},
				}},
				{Paragraphs: []*visionpb.Paragraph{{}}},
			},
		}},
	}
}

func TestBlocks(t *testing.T) {
	assert.Equal(t, []string{"Hi there", "docu-\nment"}, Blocks(annotation()))
	assert.Equal(t, []string{}, Blocks(nil))
}

func TestExtractBlocks(t *testing.T) {
	fake := &fakeClient{annotation: annotation()}
	v := New("", "en")
	v.newClient = func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
		assert.Empty(t, opts)
		return fake, nil
	}

	blocks, err := v.ExtractBlocks(context.Background(), providers.Config{Image: []byte("jpeg")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi there", "docu-\nment"}, blocks)
	require.NotNil(t, fake.got)
	assert.Equal(t, []byte("jpeg"), fake.got.GetImage().GetContent())
	require.Len(t, fake.got.GetFeatures(), 1)
	assert.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, fake.got.GetFeatures()[0].GetType())
	assert.Equal(t, []string{"en"}, fake.got.GetImageContext().GetLanguageHints())
	assert.True(t, fake.closed)
}

func TestExtractBlocksNoText(t *testing.T) {
	v := New("")
	v.newClient = func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
		return &fakeClient{}, nil
	}

	blocks, err := v.ExtractBlocks(context.Background(), providers.Config{})
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestExtractBlocksErrors(t *testing.T) {
	t.Run("client creation", func(t *testing.T) {
		v := New("creds.json")
		v.newClient = func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
			assert.Len(t, opts, 1)
			return nil, errors.New("no credentials")
		}
		_, err := v.ExtractBlocks(context.Background(), providers.Config{})
		assert.ErrorContains(t, err, "no credentials")
	})

	t.Run("detection", func(t *testing.T) {
		fake := &fakeClient{err: errors.New("quota exceeded")}
		v := New("")
		v.newClient = func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
			return fake, nil
		}
		_, err := v.ExtractBlocks(context.Background(), providers.Config{})
		assert.ErrorContains(t, err, "quota exceeded")
		assert.True(t, fake.closed)
	})

	t.Run("image error", func(t *testing.T) {
		fake := &fakeClient{status: &status.Status{Code: 3, Message: "bad image data"}}
		v := New("")
		v.newClient = func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
			return fake, nil
		}
		_, err := v.ExtractBlocks(context.Background(), providers.Config{})
		assert.ErrorContains(t, err, "bad image data")
	})

	t.Run("no responses", func(t *testing.T) {
		v := New("")
		v.newClient = func(ctx context.Context, opts ...option.ClientOption) (Client, error) {
			return &fakeClient{empty: true}, nil
		}
		_, err := v.ExtractBlocks(context.Background(), providers.Config{})
		assert.ErrorContains(t, err, "empty response")
	})
}
