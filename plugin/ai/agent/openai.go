package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/topicinsights/topicinsights/plugin/ai"
)

// OpenAIAgent implements Agent against any OpenAI-compatible chat API.
type OpenAIAgent struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter

	maxTokens   int
	temperature float32
}

var _ Agent = (*OpenAIAgent)(nil)

// NewOpenAIAgent creates an agent from the LLM configuration.
// Outbound calls are rate limited to cfg.RequestsPerMin.
func NewOpenAIAgent(cfg *ai.LLMConfig) (*OpenAIAgent, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 60
	}

	return &OpenAIAgent{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (a *OpenAIAgent) AnalyzeTopic(ctx context.Context, topic string, extra map[string]any) (*TopicAnalysis, error) {
	resp, err := a.chat(ctx, analystSystemPrompt, analyzeTopicPrompt(topic, extra), nil)
	if err != nil {
		return nil, errors.Wrap(err, "topic analysis failed")
	}
	return &TopicAnalysis{
		Analysis:   resp.Choices[0].Message.Content,
		Model:      a.model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func (a *OpenAIAgent) SummarizeContent(ctx context.Context, content string, maxLength int) (string, error) {
	resp, err := a.chat(ctx, summarizerSystemPrompt, summarizePrompt(content, maxLength), nil)
	if err != nil {
		return "", errors.Wrap(err, "summarization failed")
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *OpenAIAgent) ExtractEntities(ctx context.Context, content string) ([]Entity, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	resp, err := a.chat(ctx, extractorSystemPrompt, extractEntitiesPrompt(content), format)
	if err != nil {
		return nil, errors.Wrap(err, "entity extraction failed")
	}

	var parsed struct {
		Entities []Entity `json:"entities"`
	}
	raw := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode extracted entities")
	}
	return parsed.Entities, nil
}

func (a *OpenAIAgent) GenerateQuestions(ctx context.Context, content string, numQuestions int) ([]string, error) {
	if numQuestions <= 0 {
		numQuestions = 3
	}
	resp, err := a.chat(ctx, questionsSystemPrompt, generateQuestionsPrompt(content, numQuestions), nil)
	if err != nil {
		return nil, errors.Wrap(err, "question generation failed")
	}

	questions := []string{}
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == numQuestions {
			break
		}
	}
	return questions, nil
}

func (a *OpenAIAgent) Close() error {
	return nil
}

func (a *OpenAIAgent) chat(ctx context.Context, system, user string, format *openai.ChatCompletionResponseFormat) (*openai.ChatCompletionResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	}
	if format != nil {
		req.ResponseFormat = format
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}
	return &resp, nil
}
