package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

var _ adapter.InterviewGenerator = (*GeminiGenerator)(nil)

type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxPrompt int
}

// NewGeminiGenerator creates a generator using the official SDK.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, maxPromptTokens int) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: c, model: model, maxPrompt: maxPromptTokens}, nil
}

func (g *GeminiGenerator) GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (adapter.InterviewPlan, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(userPrompt(jobDescription, candidateDescription, g.maxPrompt)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0.4),
		},
	)
	if err != nil {
		return adapter.InterviewPlan{}, err
	}
	if resp.UsageMetadata != nil {
		metrics.AddPromptTokens("gemini", int(resp.UsageMetadata.PromptTokenCount))
	}
	text := resp.Text()
	if text == "" {
		return adapter.InterviewPlan{}, errors.New("gemini: empty response")
	}
	return parsePlan(text)
}
