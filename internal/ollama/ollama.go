package ollama

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

// DefaultURL is used when no Ollama host is configured
const DefaultURL = "http://localhost:11434"

// Ollama is a provider for Ollama
type Ollama struct {
	URL        string
	httpClient *http.Client
}

// New returns a new Ollama provider
func New(url string) *Ollama {
	if url == "" {
		url = DefaultURL
	}
	return &Ollama{
		URL: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ExtractBlocks transcribes the image with a vision model served by Ollama
func (o *Ollama) ExtractBlocks(ctx context.Context, config providers.Config) ([]string, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  config.Model,
		"prompt": config.Prompt,
		"images": []string{base64.StdEncoding.EncodeToString(config.Image)},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": config.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.URL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return providers.SplitBlocks(response.Response), nil
}
