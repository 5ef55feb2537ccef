package providers

import (
	"context"
	"strings"
)

// Config represents the configuration for a recognition request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	MIMEType    string
}

// Provider defines the interface for a text recognition provider
type Provider interface {
	ExtractBlocks(ctx context.Context, config Config) ([]string, error)
}

// OCRPrompt asks a vision-capable LLM to transcribe a photographed document
// with blank lines between text blocks
const OCRPrompt = `You are performing OCR (Optical Character Recognition) on a photograph of a document.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Capitalization
- Punctuation
- Special characters
- Reading order

INSTRUCTIONS:
1. Read the image carefully from top to bottom
2. Group text that belongs together (a paragraph, a heading, a caption, a table cell) into one block
3. Separate blocks with exactly one empty line
4. Do not add any interpretation, commentary, or explanations
5. If no text is visible, respond with nothing

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:".`

// SplitBlocks splits provider output into blocks separated by blank lines.
// Whitespace-only blocks are dropped.
func SplitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	blocks := []string{}
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return blocks
}
