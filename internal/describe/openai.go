package describe

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const chatModel = openai.ChatModelGPT4_1Mini

// OpenAI describes breeds with the OpenAI chat completions API.
type OpenAI struct {
	usageTracker
	client *openai.Client
}

func NewOpenAI(apiKey string, opts ...option.RequestOption) *OpenAI {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAI{client: &client}
}

func (p *OpenAI) Name() string {
	return chatModel
}

func (p *OpenAI) Describe(ctx context.Context, breed string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage(breed)),
		},
		MaxTokens: openai.Int(maxDescriptionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	p.track(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := clean(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
