package audit

import (
	"errors"
	"time"

	"github.com/ziadkadry99/qarelay/internal/qa"
)

// Outcome is the final result of one dispatch.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeCredentials Outcome = "credentials"
	OutcomeUpstream    Outcome = "upstream"
	OutcomeExhausted   Outcome = "exhausted"
)

// Entry is a single dispatch log record. Answers are not stored.
type Entry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	RequestID string       `json:"request_id,omitempty"`
	Question  string       `json:"question"`
	Outcome   Outcome      `json:"outcome"`
	Model     string       `json:"model,omitempty"`
	Status    int          `json:"status,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Attempts  []qa.Attempt `json:"attempts"`
	LatencyMs int64        `json:"latency_ms"`
}

// EntryFromRecord converts a dispatch summary into an audit entry.
func EntryFromRecord(rec qa.DispatchRecord) Entry {
	e := Entry{
		RequestID: rec.RequestID,
		Question:  rec.Question,
		LatencyMs: rec.Latency.Milliseconds(),
	}

	if rec.Err == nil && rec.Answer != nil {
		e.Outcome = OutcomeAnswered
		e.Model = rec.Answer.Model
		e.Attempts = rec.Answer.Attempts
		return e
	}

	if rec.Err != nil {
		e.Reason = rec.Err.Error()
	}
	var f *qa.Failure
	if !errors.As(rec.Err, &f) {
		e.Outcome = OutcomeUpstream
		return e
	}
	e.Attempts = f.Attempts
	e.Status = f.Status
	switch f.Kind {
	case qa.FailureCredentials:
		e.Outcome = OutcomeCredentials
	case qa.FailureExhausted:
		e.Outcome = OutcomeExhausted
	default:
		e.Outcome = OutcomeUpstream
	}
	return e
}
