package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

const (
	// WarmupSource identifies scheduled warmup events
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the async
	// self-invocations to land on other instances
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent is the scheduled event payload that keeps instances warm.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// IsWarmupEvent reports whether event is a warmup ping.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var w WarmupEvent
	if err := json.Unmarshal(event, &w); err != nil || w.Source != WarmupSource {
		return nil, false
	}
	if w.Concurrency < 0 {
		w.Concurrency = 0
	}
	return &w, true
}

// HandleWarmup answers a warmup ping, self-invoking Concurrency extra copies
// when asked to.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent) (DirectResponse, error) {
	warmed := 1

	if warmup.Concurrency > 0 {
		if err := selfInvoke(ctx, warmup.Concurrency); err != nil {
			log.Printf("lambda: warmup self-invoke: %v", err)
		} else {
			warmed += warmup.Concurrency
		}
	}

	time.Sleep(WarmupDelay)

	return DirectResponse{
		StatusCode: 200,
		Body:       WarmupResponse{Status: "warm", InstancesWarmed: warmed},
	}, nil
}

// selfInvoke asynchronously invokes this function count times with a
// zero-concurrency warmup payload so the children do not fan out again.
func selfInvoke(ctx context.Context, count int) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	client := lambdasdk.NewFromConfig(cfg)
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")

	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for range count {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return firstErr
}
