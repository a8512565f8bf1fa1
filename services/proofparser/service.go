package proofparser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// ProofParseResult is the structured data extracted from a payment-proof
// image. Extraction is advisory only: the audit entry for the upload is
// recorded whether or not parsing succeeds.
type ProofParseResult struct {
	Amount    int64  `json:"amount"`
	PaidAt    string `json:"paid_at"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

// Service extracts payment details from transfer-receipt images using the
// Gemini Vision API.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// ParseProof sends the proof image to Gemini and returns the extracted
// payment details.
func (s *Service) ParseProof(ctx context.Context, imageBytes []byte, mimeType string) (*ProofParseResult, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found in environment variables")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	prompt := `Analyze this bank/e-wallet payment receipt image and extract the following information. Return ONLY valid JSON.

			Extract these fields from the image. If a field is missing or unclear, use 0 or an empty string.

			Required JSON format:
			{
			"amount": number,        // Transferred amount, digits only, no separators
			"paid_at": string,       // Transfer date/time as printed on the receipt
			"method": string,        // Bank or e-wallet name
			"reference": string      // Transaction/reference number
			}`

	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     imageBytes,
			}},
		},
	}

	result, err := client.Models.GenerateContent(
		ctx,
		"gemini-2.5-flash-lite",
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with OCR: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated by OCR")
	}

	responseText := result.Candidates[0].Content.Parts[0].Text
	if responseText == "" {
		return nil, fmt.Errorf("empty response from OCR")
	}

	jsonText := extractJSONFromMarkdown(responseText)

	var parsed ProofParseResult
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, response: %s", err, jsonText)
	}

	return &parsed, nil
}

// extractJSONFromMarkdown extracts JSON content from markdown code blocks
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 1 {
			return strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	return text
}

// IsValidImageType checks if the provided content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
	return validTypes[contentType]
}
