package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"

	"github.com/yourusername/storefront-api/internal/config"
)

const analysisPrompt = `You are a product cataloguer for an online store.
Look at the product photo and answer with a single JSON object, no markdown:
{"name": "...", "description": "...", "category": "...", "tags": ["..."]}
name: short product title. description: 2-3 sentences for the product page.
category: one generic store category. tags: up to 8 lowercase search tags.`

// ImageAnalysis — предложения vision-модели для карточки товара
type ImageAnalysis struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// ImageAnalyzer анализирует изображение по ссылке
type ImageAnalyzer interface {
	Analyze(ctx context.Context, imageURL string) (*ImageAnalysis, error)
}

// NewImageAnalyzer выбирает провайдера по конфигурации; без ключа возвращает nil
func NewImageAnalyzer(cfg config.AIConfig) ImageAnalyzer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if cfg.Provider == "anthropic" {
		return NewAnthropicAnalyzer(cfg)
	}
	return NewOpenAIAnalyzer(cfg)
}

func analysisTimeout(cfg config.AIConfig) time.Duration {
	if cfg.TimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(cfg.TimeoutSec) * time.Second
}

// OpenAIAnalyzer использует chat completions с картинкой во входном сообщении
type OpenAIAnalyzer struct {
	client openai.Client
	model  string
}

// NewOpenAIAnalyzer создаёт анализатор на OpenAI-совместимом API
func NewOpenAIAnalyzer(cfg config.AIConfig) *OpenAIAnalyzer {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(cfg.APIKey),
		openaioption.WithMaxRetries(0),
		openaioption.WithRequestTimeout(analysisTimeout(cfg)),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		opts = append(opts, openaioption.WithBaseURL(base))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAnalyzer{client: openai.NewClient(opts...), model: model}
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, imageURL string) (*ImageAnalysis, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(analysisPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageURL}),
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: empty response")
	}
	return parseImageAnalysis(resp.Choices[0].Message.Content)
}

// AnthropicAnalyzer использует Messages API с блоком изображения по URL
type AnthropicAnalyzer struct {
	client anthropic.Client
	model  string
}

// NewAnthropicAnalyzer создаёт анализатор на Anthropic API
func NewAnthropicAnalyzer(cfg config.AIConfig) *AnthropicAnalyzer {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
		anthropicoption.WithRequestTimeout(analysisTimeout(cfg)),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		opts = append(opts, anthropicoption.WithBaseURL(base))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	return &AnthropicAnalyzer{client: anthropic.NewClient(opts...), model: model}
}

func (a *AnthropicAnalyzer) Analyze(ctx context.Context, imageURL string) (*ImageAnalysis, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: imageURL}),
				anthropic.NewTextBlock(analysisPrompt),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic message: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseImageAnalysis(text.String())
}

// parseImageAnalysis достаёт JSON-объект из ответа модели, в том числе из блока ```json
func parseImageAnalysis(content string) (*ImageAnalysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("model response has no JSON object")
	}

	var analysis ImageAnalysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	analysis.Name = strings.TrimSpace(analysis.Name)
	analysis.Description = strings.TrimSpace(analysis.Description)
	analysis.Category = strings.TrimSpace(analysis.Category)
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	return &analysis, nil
}
