package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorType categorizes upstream failures for logs and the outcome ledger.
type ErrorType string

const (
	ErrAuth      ErrorType = "auth_error"   // 401/403, bad or revoked API key
	ErrRateLimit ErrorType = "rate_limit"   // 429, quota or RPM exhausted
	ErrServer    ErrorType = "server_error" // 5xx from the completion API
	ErrTimeout   ErrorType = "timeout"      // client timeout or context deadline
	ErrCanceled  ErrorType = "canceled"     // caller went away
	ErrBadOutput ErrorType = "bad_output"   // no choices, unparsable JSON
	ErrRequest   ErrorType = "bad_request"  // other 4xx (model not found, etc.)
	ErrUnknown   ErrorType = "unknown"
)

// Step names one of the two completion calls made per request.
type Step string

const (
	StepTranslate Step = "translate"
	StepReplies   Step = "replies"
)

// ErrNoChoices is returned when the completion API answers without any choice.
var ErrNoChoices = errors.New("openai: empty choices in completion response")

// ValidationError reports required request fields that were missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

// StepError attributes an upstream failure to the step that produced it.
// Error returns the underlying message unchanged so it can be shown to the user.
type StepError struct {
	Step Step
	Type ErrorType
	Err  error
}

func (e *StepError) Error() string { return e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

func newStepError(step Step, err error) *StepError {
	return &StepError{Step: step, Type: Classify(err), Err: err}
}

// Classify inspects an upstream error and returns its ErrorType. Typed errors
// from the OpenAI client are preferred; the message text is a fallback.
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		synErr *json.SyntaxError
		netErr net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	case errors.As(err, &apiErr):
		return classifyStatus(apiErr.HTTPStatusCode)
	case errors.As(err, &reqErr):
		return classifyStatus(reqErr.HTTPStatusCode)
	case errors.Is(err, ErrNoChoices), errors.As(err, &synErr):
		return ErrBadOutput
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrTimeout
	}

	raw := err.Error()
	switch {
	case containsAny(raw, "context deadline exceeded", "timeout"):
		return ErrTimeout
	case containsAny(raw, "401", "unauthorized", "invalid api key", "incorrect api key"):
		return ErrAuth
	case containsAny(raw, "429", "rate limit", "too many requests"):
		return ErrRateLimit
	case containsAny(raw, "500", "502", "503", "504", "server error"):
		return ErrServer
	default:
		return ErrUnknown
	}
}

func classifyStatus(code int) ErrorType {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrAuth
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	case code >= 500:
		return ErrServer
	case code >= 400:
		return ErrRequest
	default:
		return ErrUnknown
	}
}

func containsAny(s string, patterns ...string) bool {
	lower := strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
