// internal/letter/gemini.go
//
// Gemini-backed implementation of the TextModel interface.

package letter

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel calls the Gemini API through the official SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel constructs a client for the named model (e.g. "gemini-2.0-flash").
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiModel{client: client, model: model}, nil
}

// GenerateText sends the prompt and concatenates the text parts of the first
// candidate.
func (m *GeminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.GenerativeModel(m.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini: response has no text parts")
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (m *GeminiModel) Close() error { return m.client.Close() }
