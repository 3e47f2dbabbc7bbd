package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator performs a single text generation call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// GeneratorFactory builds a Generator bound to one user's API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

type geminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiFactory returns a factory creating Gemini clients for the given
// model and system instruction.
func NewGeminiFactory(modelName, systemInstruction string) GeneratorFactory {
	if modelName == "" {
		modelName = DefaultModel
	}

	return func(ctx context.Context, apiKey string) (Generator, error) {
		client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}

		model := client.GenerativeModel(modelName)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}

		return &geminiGenerator{client: client, model: model}, nil
	}
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	return responseText(resp)
}

// responseText returns the model text, or an error when the prompt was
// blocked or the candidate carries no text.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("empty response from AI")
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	text := extractText(resp)
	if text != "" {
		return text, nil
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("empty response from AI (finish reason: %s)", resp.Candidates[0].FinishReason)
	}
	return "", fmt.Errorf("empty response from AI")
}

func (g *geminiGenerator) Close() error {
	return g.client.Close()
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}
