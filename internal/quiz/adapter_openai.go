package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/readalong/internal/api"
)

// OpenAISource generates questions with a chat completion
type OpenAISource struct {
	client *openai.Client
	config Config
}

func NewOpenAISource(cfg Config) *OpenAISource {
	return &OpenAISource{
		client: openai.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// newOpenAISourceWithClient is used by tests to point at a fake server
func newOpenAISourceWithClient(client *openai.Client, cfg Config) *OpenAISource {
	return &OpenAISource{client: client, config: cfg}
}

func (s *OpenAISource) Generate(ctx context.Context, req Request) ([]api.Question, error) {
	if strings.TrimSpace(req.Passage) == "" {
		return nil, errors.New("openai quiz: passage text required")
	}

	level := req.Level
	if level == "" {
		level = s.config.Level
	}
	style := req.Style
	if style == "" {
		style = s.config.Style
	}

	model := s.config.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(level, style, s.config.Count)},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(req.Passage)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		log.Printf("openai-quiz: API call failed after %v: %v", duration, err)
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: no response choices")
	}

	questions, err := parseQuestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	log.Printf("openai-quiz: generated %d questions in %v", len(questions), duration)
	return questions, nil
}

func parseQuestions(content string) ([]api.Question, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var payload struct {
		Questions []api.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("openai quiz: decode questions: %w", err)
	}
	if len(payload.Questions) == 0 {
		return nil, errors.New("openai quiz: response had no questions")
	}
	return payload.Questions, nil
}
