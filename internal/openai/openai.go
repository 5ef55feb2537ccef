package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/textsnap/internal/providers"
)

// DefaultBaseURL is the public OpenAI API
const DefaultBaseURL = "https://api.openai.com/v1"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	APIKey     string
	BaseURL    string
	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(apiKey string) *OpenAI {
	return &OpenAI{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// ExtractBlocks transcribes the image with a vision-capable chat model
func (o *OpenAI) ExtractBlocks(ctx context.Context, config providers.Config) ([]string, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	mimeType := config.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": config.Model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": config.Prompt,
					},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(config.Image),
						},
					},
				},
			},
		},
		"max_tokens":  2000,
		"temperature": config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := strings.TrimRight(o.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from OpenAI")
	}

	return providers.SplitBlocks(response.Choices[0].Message.Content), nil
}
