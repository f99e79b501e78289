package ai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.InterviewGenerator = (*OpenAIGenerator)(nil)

// OpenAIGenerator asks a Chat Completions model for a JSON interview plan.
type OpenAIGenerator struct {
	client    openai.Client
	model     string
	maxPrompt int
}

func NewOpenAIGenerator(apiKey, baseURL, model string, maxPromptTokens int) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGenerator{
		client:    openai.NewClient(opts...),
		model:     model,
		maxPrompt: maxPromptTokens,
	}, nil
}

func (o *OpenAIGenerator) GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (adapter.InterviewPlan, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(jobDescription, candidateDescription, o.maxPrompt)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		return adapter.InterviewPlan{}, err
	}
	metrics.AddPromptTokens("openai", int(resp.Usage.PromptTokens))
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return parsePlan(c.Message.Content)
		}
	}
	return adapter.InterviewPlan{}, errors.New("no choice content")
}
