// Package main is the AWS Lambda entry point. It serves the generate endpoint
// behind a Lambda Function URL or a direct invocation with the JSON body as
// payload.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/lojasmm/dmassist/internal/ai"
	"github.com/lojasmm/dmassist/internal/api"
	"github.com/lojasmm/dmassist/internal/config"
)

// DirectResponse is returned to direct (non-HTTP) invocations.
type DirectResponse struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

type app struct {
	api *api.Handler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	llm := ai.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)
	assistant := ai.NewAssistant(llm, ai.Options{
		TranslateTemperature: cfg.TranslateTemperature,
		ReplyTemperature:     cfg.ReplyTemperature,
	})

	// No outcome ledger: the Lambda filesystem does not outlive the instance.
	a := &app{api: api.NewHandler(assistant, nil)}
	lambda.Start(a.handleRequest)
}

func (a *app) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	var furl events.LambdaFunctionURLRequest
	if err := json.Unmarshal(event, &furl); err == nil && furl.RequestContext.HTTP.Method != "" {
		return a.handleFunctionURL(ctx, furl), nil
	}

	status, payload := a.api.Process(ctx, invocationID(ctx), event)
	return DirectResponse{StatusCode: status, Body: payload}, nil
}

func (a *app) handleFunctionURL(ctx context.Context, req events.LambdaFunctionURLRequest) events.LambdaFunctionURLResponse {
	if req.RequestContext.HTTP.Method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, api.ErrorResponse{Error: "method not allowed"})
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, api.ErrorResponse{Error: "invalid base64 body"})
		}
		body = decoded
	}

	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = invocationID(ctx)
	}

	status, payload := a.api.Process(ctx, requestID, body)
	return jsonResponse(status, payload)
}

func jsonResponse(status int, payload any) events.LambdaFunctionURLResponse {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("lambda: encoding response: %v", err)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return ""
}
