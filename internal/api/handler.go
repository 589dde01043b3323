package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lojasmm/dmassist/internal/ai"
	"github.com/lojasmm/dmassist/internal/store"
)

const (
	maxBodyBytes        = 64 << 10
	defaultOutcomeLimit = 50
	maxOutcomeLimit     = 500

	msgMissingFields = "Необходимо предоставить сообщение и API ключ"
	msgInvalidBody   = "Некорректный JSON в теле запроса"
	msgDefaultError  = "Произошла ошибка при обработке запроса"
)

// Drafter turns one ReplyRequest into a ReplyResult.
type Drafter interface {
	Draft(ctx context.Context, req ai.ReplyRequest) (*ai.ReplyResult, error)
}

// OutcomeStore records and lists per-request diagnostics.
type OutcomeStore interface {
	Record(o store.Outcome) error
	Recent(limit int) ([]store.Outcome, error)
}

type Handler struct {
	drafter  Drafter
	outcomes OutcomeStore
}

// NewHandler returns a Handler. outcomes may be nil, in which case nothing is
// recorded and the outcomes listing reports 404.
func NewHandler(d Drafter, outcomes OutcomeStore) *Handler {
	return &Handler{drafter: d, outcomes: outcomes}
}

// GenerateResponse is the 200 body of POST /api/generate.
type GenerateResponse struct {
	Translation string           `json:"translation"`
	Responses   []ai.ReplyOption `json:"responses"`
}

// ErrorResponse is the body of every non-200 answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleGenerate serves POST /api/generate.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	status, payload := h.Process(r.Context(), middleware.GetReqID(r.Context()), body)
	writeJSON(w, status, payload)
}

// Process runs one generate request from its raw JSON body and returns the
// HTTP status with the value to encode as the response body.
func (h *Handler) Process(ctx context.Context, requestID string, body []byte) (int, any) {
	start := time.Now()

	var req ai.ReplyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody}
	}

	result, err := h.drafter.Draft(ctx, req)
	if err != nil {
		status, resp := errorStatus(err)
		h.record(requestID, status, start, nil, err)
		return status, resp
	}

	responses := result.Responses
	if responses == nil {
		responses = []ai.ReplyOption{}
	}
	h.record(requestID, http.StatusOK, start, result, nil)
	return http.StatusOK, GenerateResponse{Translation: result.Translation, Responses: responses}
}

// HandleOutcomes serves GET /api/outcomes?limit=N.
func (h *Handler) HandleOutcomes(w http.ResponseWriter, r *http.Request) {
	if h.outcomes == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "outcome log is disabled"})
		return
	}

	limit := defaultOutcomeLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxOutcomeLimit)
	}

	outcomes, err := h.outcomes.Recent(limit)
	if err != nil {
		log.Printf("api: listing outcomes: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgDefaultError})
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func errorStatus(err error) (int, ErrorResponse) {
	var vErr *ai.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, ErrorResponse{Error: msgMissingFields}
	}

	msg := err.Error()
	if msg == "" {
		msg = msgDefaultError
	}
	return http.StatusInternalServerError, ErrorResponse{Error: msg}
}

func (h *Handler) record(requestID string, status int, start time.Time, result *ai.ReplyResult, err error) {
	o := store.Outcome{
		RequestID:  requestID,
		Status:     status,
		DurationMs: time.Since(start).Milliseconds(),
	}

	var stepErr *ai.StepError
	if errors.As(err, &stepErr) {
		o.FailedStep = string(stepErr.Step)
		o.ErrorType = string(stepErr.Type)
		log.Printf("api: generate failed at %s step (%s): %v", stepErr.Step, stepErr.Type, stepErr.Err)
	}
	if result != nil {
		o.Degraded = result.Degraded
		o.OptionCount = len(result.Responses)
	}

	if h.outcomes == nil {
		return
	}
	if err := h.outcomes.Record(o); err != nil {
		log.Printf("api: failed to record outcome: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
