package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig configures the OpenAI provider. BaseURL may point at any
// chat-completions compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIProvider implements Provider over the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a provider from config. The API key is required.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Validate() error {
	if p.client == nil {
		return fmt.Errorf("openai: provider not configured")
	}
	return nil
}

func (p *OpenAIProvider) Classify(ctx context.Context, lines []string) ([]Label, error) {
	resp, err := p.complete(ctx, classifySystem, classifyUserPrompt(lines))
	if err != nil {
		return nil, err
	}
	return parseLabels(resp, len(lines))
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt, title, subtitle string) (string, error) {
	return p.complete(ctx, generateSystem, generateUserPrompt(prompt, title, subtitle))
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
