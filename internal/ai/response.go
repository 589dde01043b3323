package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ReplyOption is one labeled candidate reply.
type ReplyOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ReplyResult is the combined output of one drafting request.
type ReplyResult struct {
	Translation string        `json:"translation"`
	Responses   []ReplyOption `json:"responses"`
	// Degraded is set when the reply output did not match the expected shape
	// and Responses was replaced with an empty list.
	Degraded bool `json:"-"`
}

type replyOptionEntry struct {
	Label *string `json:"label"`
	Text  *string `json:"text"`
}

// parseReplyOptions checks the structured reply output against the expected
// {"responses":[{"label","text"}]} shape. Syntactically invalid JSON is an
// error. Valid JSON of any other shape yields an empty list and degraded=true.
// Empty output is read as "{}".
func parseReplyOptions(raw string) (opts []ReplyOption, degraded bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return []ReplyOption{}, true, nil
		}
		return nil, false, fmt.Errorf("reply options: %w", err)
	}

	field, ok := fields["responses"]
	if !ok {
		return []ReplyOption{}, true, nil
	}

	var entries []replyOptionEntry
	if err := json.Unmarshal(field, &entries); err != nil || entries == nil {
		return []ReplyOption{}, true, nil
	}

	opts = make([]ReplyOption, 0, len(entries))
	for _, r := range entries {
		if r.Label == nil || r.Text == nil {
			return []ReplyOption{}, true, nil
		}
		opts = append(opts, ReplyOption{Label: *r.Label, Text: *r.Text})
	}
	return opts, false, nil
}
