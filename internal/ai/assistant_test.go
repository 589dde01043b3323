package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type stubReply struct {
	text string
	err  error
}

// stubCompleter answers calls in order and records every request it saw.
type stubCompleter struct {
	replies []stubReply
	calls   []CompletionRequest
	keys    []string
}

func (s *stubCompleter) Complete(ctx context.Context, apiKey string, req CompletionRequest) (string, error) {
	s.calls = append(s.calls, req)
	s.keys = append(s.keys, apiKey)
	if len(s.calls) > len(s.replies) {
		return "", errors.New("unexpected call")
	}
	r := s.replies[len(s.calls)-1]
	return r.text, r.err
}

const threeOptions = `{"responses":[` +
	`{"label":"Формальный вариант","text":"Здравствуйте!"},` +
	`{"label":"Дружелюбный вариант","text":"Привет!"},` +
	`{"label":"Краткий вариант","text":"Ждём фильм."}]}`

func TestDraft_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		req     ReplyRequest
		missing []string
	}{
		{"missing message", ReplyRequest{APIKey: "sk-test"}, []string{"message"}},
		{"blank message", ReplyRequest{Message: "   ", APIKey: "sk-test"}, []string{"message"}},
		{"missing api key", ReplyRequest{Message: "hi"}, []string{"apiKey"}},
		{"both missing", ReplyRequest{SenderName: "Anna"}, []string{"message", "apiKey"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			llm := &stubCompleter{}
			_, err := NewAssistant(llm, Options{}).Draft(context.Background(), tc.req)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !reflect.DeepEqual(vErr.Fields, tc.missing) {
				t.Errorf("Fields = %v, want %v", vErr.Fields, tc.missing)
			}
			if len(llm.calls) != 0 {
				t.Errorf("expected no upstream calls, got %d", len(llm.calls))
			}
		})
	}
}

func TestDraft_Success(t *testing.T) {
	llm := &stubCompleter{replies: []stubReply{
		{text: "  Привет, я хотел бы подать свой фильм\n"},
		{text: threeOptions},
	}}
	a := NewAssistant(llm, Options{})

	res, err := a.Draft(context.Background(), ReplyRequest{
		Message:    "Hi, I'd love to submit my film",
		SenderName: "Anna",
		APIKey:     "sk-test",
	})
	if err != nil {
		t.Fatalf("Draft() error: %v", err)
	}

	if res.Translation != "Привет, я хотел бы подать свой фильм" {
		t.Errorf("Translation = %q", res.Translation)
	}
	want := []ReplyOption{
		{Label: "Формальный вариант", Text: "Здравствуйте!"},
		{Label: "Дружелюбный вариант", Text: "Привет!"},
		{Label: "Краткий вариант", Text: "Ждём фильм."},
	}
	if !reflect.DeepEqual(res.Responses, want) {
		t.Errorf("Responses = %+v, want %+v", res.Responses, want)
	}
	if res.Degraded {
		t.Error("expected non-degraded result")
	}

	if len(llm.calls) != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", len(llm.calls))
	}
	for i, k := range llm.keys {
		if k != "sk-test" {
			t.Errorf("call %d used key %q", i, k)
		}
	}

	translate, replies := llm.calls[0], llm.calls[1]
	if translate.JSONMode || translate.Temperature != DefaultTranslateTemperature {
		t.Errorf("translate call: JSONMode=%v Temperature=%v", translate.JSONMode, translate.Temperature)
	}
	if !replies.JSONMode || replies.Temperature != DefaultReplyTemperature {
		t.Errorf("replies call: JSONMode=%v Temperature=%v", replies.JSONMode, replies.Temperature)
	}
	if !strings.Contains(translate.Messages[1].Content, `"Hi, I'd love to submit my film"`) {
		t.Errorf("translation prompt does not quote the message verbatim: %q", translate.Messages[1].Content)
	}
	if !strings.Contains(replies.Messages[1].Content, "Anna") {
		t.Errorf("reply prompt does not mention the sender: %q", replies.Messages[1].Content)
	}
}

func TestDraft_PlaceholderSender(t *testing.T) {
	for _, sender := range []string{"", "  "} {
		llm := &stubCompleter{replies: []stubReply{{text: "перевод"}, {text: threeOptions}}}
		_, err := NewAssistant(llm, Options{}).Draft(context.Background(), ReplyRequest{
			Message:    "hello",
			SenderName: sender,
			APIKey:     "sk-test",
		})
		if err != nil {
			t.Fatalf("Draft() error: %v", err)
		}
		if got := llm.calls[1].Messages[1].Content; !strings.Contains(got, DefaultSenderName) {
			t.Errorf("sender %q: prompt missing placeholder: %q", sender, got)
		}
	}
}

func TestDraft_MissingResponsesDegrades(t *testing.T) {
	llm := &stubCompleter{replies: []stubReply{{text: "перевод"}, {text: `{"answers":[]}`}}}

	res, err := NewAssistant(llm, Options{}).Draft(context.Background(), ReplyRequest{Message: "hi", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("Draft() error: %v", err)
	}
	if res.Translation != "перевод" {
		t.Errorf("Translation = %q", res.Translation)
	}
	if res.Responses == nil || len(res.Responses) != 0 {
		t.Errorf("expected empty non-nil responses, got %#v", res.Responses)
	}
	if !res.Degraded {
		t.Error("expected degraded result")
	}
}

func TestDraft_StepFailures(t *testing.T) {
	boom := errors.New("upstream exploded")

	tests := []struct {
		name      string
		replies   []stubReply
		step      Step
		wantCalls int
		wantMsg   string
	}{
		{"translation fails", []stubReply{{err: boom}}, StepTranslate, 1, "upstream exploded"},
		{"replies fail", []stubReply{{text: "ok"}, {err: boom}}, StepReplies, 2, "upstream exploded"},
		{"replies not json", []stubReply{{text: "ok"}, {text: "{not json"}}, StepReplies, 2, "reply options"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			llm := &stubCompleter{replies: tc.replies}
			res, err := NewAssistant(llm, Options{}).Draft(context.Background(), ReplyRequest{Message: "hi", APIKey: "sk-test"})
			if res != nil {
				t.Errorf("expected no partial result, got %+v", res)
			}

			var stepErr *StepError
			if !errors.As(err, &stepErr) {
				t.Fatalf("expected StepError, got %v", err)
			}
			if stepErr.Step != tc.step {
				t.Errorf("Step = %q, want %q", stepErr.Step, tc.step)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.wantMsg)
			}
			if len(llm.calls) != tc.wantCalls {
				t.Errorf("calls = %d, want %d", len(llm.calls), tc.wantCalls)
			}
		})
	}
}

func TestDraft_Idempotent(t *testing.T) {
	req := ReplyRequest{Message: "hi", SenderName: "Anna", APIKey: "sk-test"}
	a := NewAssistant(&stubCompleter{}, Options{TranslateTemperature: 0.2, ReplyTemperature: 0.9})

	var first *ReplyResult
	for i := 0; i < 3; i++ {
		a.llm = &stubCompleter{replies: []stubReply{{text: "привет"}, {text: threeOptions}}}
		res, err := a.Draft(context.Background(), req)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if first == nil {
			first = res
			continue
		}
		if !reflect.DeepEqual(first, res) {
			t.Errorf("run %d: %+v differs from %+v", i, res, first)
		}
	}
}
