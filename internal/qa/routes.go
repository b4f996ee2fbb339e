package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// maxBodyBytes caps the size of an inbound question payload.
const maxBodyBytes = 1 << 20

// Answerer is implemented by *Dispatcher.
type Answerer interface {
	Dispatch(ctx context.Context, question string) (*Answer, error)
}

// DispatchRecord summarizes one dispatch for the operator log.
type DispatchRecord struct {
	RequestID string
	Question  string
	Answer    *Answer
	Err       error
	Latency   time.Duration
}

// Recorder persists dispatch summaries. Recording is best effort and never
// changes the response sent to the client.
type Recorder interface {
	RecordDispatch(ctx context.Context, rec DispatchRecord) error
}

// RegisterRoutes mounts the question endpoints on the given router.
// rec may be nil.
func RegisterRoutes(r chi.Router, d Answerer, rec Recorder) {
	r.Post("/api/question-and-answer", handleQuestionAndAnswer(d, rec))
	r.Post("/api/ask", handleAsk(d, rec))
}

// handleQuestionAndAnswer answers with {"response": ...} or {"error": ...}.
func handleQuestionAndAnswer(d Answerer, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answer, err := answerRequest(w, r, d, rec)
		if err != nil {
			writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"response": answer.Text})
	}
}

// handleAsk is the older text-only variant of handleQuestionAndAnswer.
func handleAsk(d Answerer, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answer, err := answerRequest(w, r, d, rec)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err != nil {
			w.WriteHeader(StatusFor(err))
			fmt.Fprintf(w, "error: %s\n", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, answer.Text)
	}
}

// answerRequest validates the body and, only if it is valid, dispatches.
func answerRequest(w http.ResponseWriter, r *http.Request, d Answerer, rec Recorder) (*Answer, error) {
	requestID := middleware.GetReqID(r.Context())

	question, err := readQuestion(w, r)
	if err != nil {
		log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"event":      "validation_failed",
		}).Warn("Request validation failed")
		return nil, err
	}

	start := time.Now()
	answer, err := d.Dispatch(r.Context(), question)
	latency := time.Since(start)

	if rec != nil {
		record := DispatchRecord{
			RequestID: requestID,
			Question:  question,
			Answer:    answer,
			Err:       err,
			Latency:   latency,
		}
		if recErr := rec.RecordDispatch(context.WithoutCancel(r.Context()), record); recErr != nil {
			log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      recErr.Error(),
				"event":      "record_failed",
			}).Warn("Failed to record dispatch")
		}
	}

	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id": requestID,
		"model":      answer.Model,
		"attempts":   len(answer.Attempts),
		"latency_ms": latency.Milliseconds(),
		"event":      "success",
	}).Info("Question answered")
	return answer, nil
}

// readQuestion reads a size-limited body and validates it. A body that
// cannot be read for other reasons is treated as missing.
func readQuestion(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", ErrBodyTooLarge
		}
		body = nil
	}
	return Validate(body)
}

// StatusFor maps a validation or dispatch error to an HTTP status code.
func StatusFor(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var f *Failure
	if errors.As(err, &f) {
		switch f.Kind {
		case FailureExhausted:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
