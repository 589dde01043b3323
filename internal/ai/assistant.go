package ai

import (
	"context"
	"log"
	"strings"
)

const (
	DefaultTranslateTemperature = 0.3
	DefaultReplyTemperature     = 0.7
)

// ReplyRequest is the input of one drafting request. APIKey is the caller's
// own credential; it is forwarded to the completion API and never stored.
type ReplyRequest struct {
	Message    string `json:"message"`
	SenderName string `json:"senderName"`
	APIKey     string `json:"apiKey"`
}

// Validate reports message and apiKey when they are missing or blank.
func (r ReplyRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Message) == "" {
		missing = append(missing, "message")
	}
	if strings.TrimSpace(r.APIKey) == "" {
		missing = append(missing, "apiKey")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Options tunes the sampling temperature of each step. Zero falls back to the
// step default.
type Options struct {
	TranslateTemperature float32
	ReplyTemperature     float32
}

// Assistant drafts replies to an incoming message: it translates the message,
// then asks for three reply variants. The two calls are issued in that order
// and either failing aborts the request.
type Assistant struct {
	llm           Completer
	translateTemp float32
	replyTemp     float32
}

func NewAssistant(llm Completer, opts Options) *Assistant {
	if opts.TranslateTemperature == 0 {
		opts.TranslateTemperature = DefaultTranslateTemperature
	}
	if opts.ReplyTemperature == 0 {
		opts.ReplyTemperature = DefaultReplyTemperature
	}
	return &Assistant{
		llm:           llm,
		translateTemp: opts.TranslateTemperature,
		replyTemp:     opts.ReplyTemperature,
	}
}

// Draft runs one request. It returns a *ValidationError before any upstream
// call when required fields are missing, and a *StepError when either
// completion call fails.
func (a *Assistant) Draft(ctx context.Context, req ReplyRequest) (*ReplyResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sender := strings.TrimSpace(req.SenderName)
	if sender == "" {
		sender = DefaultSenderName
	}

	translation, err := a.translate(ctx, req.APIKey, req.Message)
	if err != nil {
		return nil, err
	}

	options, degraded, err := a.replyOptions(ctx, req.APIKey, req.Message, sender)
	if err != nil {
		return nil, err
	}
	if degraded {
		log.Printf("assistant: reply output missing a valid responses list, returning none")
	}

	return &ReplyResult{
		Translation: translation,
		Responses:   options,
		Degraded:    degraded,
	}, nil
}

func (a *Assistant) translate(ctx context.Context, apiKey, message string) (string, error) {
	text, err := a.llm.Complete(ctx, apiKey, CompletionRequest{
		Messages:    BuildTranslationMessages(message),
		Temperature: a.translateTemp,
	})
	if err != nil {
		return "", newStepError(StepTranslate, err)
	}
	return strings.TrimSpace(text), nil
}

func (a *Assistant) replyOptions(ctx context.Context, apiKey, message, sender string) ([]ReplyOption, bool, error) {
	raw, err := a.llm.Complete(ctx, apiKey, CompletionRequest{
		Messages:    BuildReplyMessages(message, sender),
		Temperature: a.replyTemp,
		JSONMode:    true,
	})
	if err != nil {
		return nil, false, newStepError(StepReplies, err)
	}

	options, degraded, err := parseReplyOptions(raw)
	if err != nil {
		return nil, false, newStepError(StepReplies, err)
	}
	return options, degraded, nil
}
