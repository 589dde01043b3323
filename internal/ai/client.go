package ai

import (
	"context"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second

	roleSystem = openai.ChatMessageRoleSystem
	roleUser   = openai.ChatMessageRoleUser
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	Messages    []Message
	Temperature float32
	// JSONMode asks the API to constrain the output to a JSON object.
	JSONMode bool
}

// Completer sends one chat completion on behalf of the caller's API key and
// returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, apiKey string, req CompletionRequest) (string, error)
}

// OpenAIClient implements Completer against an OpenAI-compatible endpoint.
// The API key is supplied per call and is not retained.
type OpenAIClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOpenAIClient returns a client for model. baseURL may be left empty for the
// default OpenAI URL.
func NewOpenAIClient(baseURL, model string, timeout time.Duration) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, apiKey string, req CompletionRequest) (string, error) {
	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cfg.HTTPClient = c.http
	client := openai.NewClientWithConfig(cfg)

	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
