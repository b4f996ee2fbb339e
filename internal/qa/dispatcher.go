package qa

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/qarelay/internal/llm"
)

// DefaultRequestTimeout bounds a single upstream attempt when Settings
// leaves RequestTimeout unset.
const DefaultRequestTimeout = 30 * time.Second

// Settings is the read-only part of the configuration the dispatcher needs.
type Settings struct {
	APIKey         string
	Models         []string
	SystemPrompt   string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
}

// Outcome classifies a single upstream attempt.
type Outcome string

const (
	// OutcomeSuccess ends the fallback loop with an answer.
	OutcomeSuccess Outcome = "success"
	// OutcomeSoft moves on to the next model: the model rejected the
	// request (HTTP 400) or the call failed before a status was received.
	OutcomeSoft Outcome = "soft_failure"
	// OutcomeHard aborts the loop: any other upstream status.
	OutcomeHard Outcome = "hard_failure"
)

// Attempt records one call against one model.
type Attempt struct {
	Model     string        `json:"model"`
	Status    int           `json:"status,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	LatencyMs int64         `json:"latency_ms"`
	Latency   time.Duration `json:"-"`
}

// Answer is a successful dispatch.
type Answer struct {
	Text     string    `json:"text"`
	Model    string    `json:"model"`
	Attempts []Attempt `json:"attempts"`
}

// FailureKind identifies why a dispatch produced no answer.
type FailureKind string

const (
	FailureCredentials FailureKind = "credentials"
	FailureUpstream    FailureKind = "upstream"
	FailureExhausted   FailureKind = "exhausted"
)

// Failure is the error returned by Dispatch. It never wraps a transport
// error; per-attempt details are kept in Attempts.
type Failure struct {
	Kind     FailureKind
	Status   int
	Attempts []Attempt
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureCredentials:
		return "credentials not configured"
	case FailureUpstream:
		return fmt.Sprintf("upstream error %d", f.Status)
	case FailureExhausted:
		return "no model available"
	default:
		return "dispatch failed"
	}
}

// Dispatcher sends a question to each configured model in priority order
// until one answers. It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	provider llm.Provider
	settings Settings
}

// NewDispatcher creates a Dispatcher. The model list is copied.
func NewDispatcher(provider llm.Provider, settings Settings) *Dispatcher {
	settings.Models = append([]string(nil), settings.Models...)
	if settings.RequestTimeout <= 0 {
		settings.RequestTimeout = DefaultRequestTimeout
	}
	return &Dispatcher{provider: provider, settings: settings}
}

// Models returns the fallback chain in the order it is tried.
func (d *Dispatcher) Models() []string {
	return append([]string(nil), d.settings.Models...)
}

// Messages builds the chat payload for question: the system persona
// followed by the question as the user message.
func (d *Dispatcher) Messages(question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: d.settings.SystemPrompt},
		{Role: llm.RoleUser, Content: question},
	}
}

// Dispatch answers question using the first model that succeeds. A 400
// from a model, or a transport failure, moves on to the next model; any
// other non-success status stops immediately. The returned error is
// always a *Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, question string) (*Answer, error) {
	if d.settings.APIKey == "" {
		log.WithFields(log.Fields{
			"event": "credentials_missing",
		}).Error("Upstream API key is not configured")
		return nil, &Failure{Kind: FailureCredentials}
	}

	messages := d.Messages(question)
	attempts := make([]Attempt, 0, len(d.settings.Models))

	for i, model := range d.settings.Models {
		att, content := d.attempt(ctx, model, messages)
		attempts = append(attempts, att)

		fields := log.Fields{
			"provider":   d.provider.Name(),
			"model":      model,
			"attempt":    i + 1,
			"status":     att.Status,
			"latency_ms": att.LatencyMs,
		}

		switch att.Outcome {
		case OutcomeSuccess:
			fields["event"] = "attempt_succeeded"
			log.WithFields(fields).Debug("Model answered")
			return &Answer{Text: content, Model: model, Attempts: attempts}, nil

		case OutcomeHard:
			fields["event"] = "dispatch_failed"
			fields["error"] = att.Error
			log.WithFields(fields).Error("Upstream rejected request, not falling back")
			return nil, &Failure{Kind: FailureUpstream, Status: att.Status, Attempts: attempts}

		default:
			fields["event"] = "attempt_failed"
			fields["error"] = att.Error
			log.WithFields(fields).Warn("Model unavailable, trying next")
		}
	}

	log.WithFields(log.Fields{
		"event":    "dispatch_failed",
		"provider": d.provider.Name(),
		"attempts": len(attempts),
	}).Error("All models failed")
	return nil, &Failure{Kind: FailureExhausted, Attempts: attempts}
}

// attempt makes one bounded call to the upstream for model.
func (d *Dispatcher) attempt(ctx context.Context, model string, messages []llm.Message) (Attempt, string) {
	ctx, cancel := context.WithTimeout(ctx, d.settings.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := d.provider.Complete(ctx, llm.CompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   d.settings.MaxTokens,
		Temperature: d.settings.Temperature,
	})
	elapsed := time.Since(start)
	if err == nil && resp == nil {
		err = llm.ErrEmptyResponse
	}

	att := Attempt{Model: model, Latency: elapsed, LatencyMs: elapsed.Milliseconds()}
	if err != nil {
		att.Error = err.Error()
		att.Status, _ = llm.StatusCode(err)
		att.Outcome = classify(err)
		return att, ""
	}

	att.Status = http.StatusOK
	att.Outcome = OutcomeSuccess
	return att, resp.Content
}

// classify decides whether a failed attempt permits trying the next model.
// Only HTTP 400 is model-specific; every other status points at the
// account, the request shape or the provider itself.
func classify(err error) Outcome {
	status, ok := llm.StatusCode(err)
	if !ok || status == http.StatusBadRequest {
		return OutcomeSoft
	}
	return OutcomeHard
}
