package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// chatRequest mirrors the JSON body an OpenAI-compatible endpoint receives.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeChoice(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":` +
		mustJSON(content) + `},"finish_reason":"stop"}],"usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`))
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestChatClientSendsRequest(t *testing.T) {
	var (
		got        chatRequest
		authHeader string
		path       string
		ctype      string
	)
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		ctype = r.Header.Get("Content-Type")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		writeChoice(w, "Olá!")
	})

	client := NewChatClient("test-key", srv.URL+"/v1")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model: "llama-3.1-8b-instant",
		Messages: []Message{
			{Role: RoleSystem, Content: "be nice"},
			{Role: RoleUser, Content: "oi"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != "Olá!" {
		t.Errorf("Content = %q, want %q", resp.Content, "Olá!")
	}
	if resp.InputTokens != 7 || resp.OutputTokens != 3 {
		t.Errorf("usage = %d/%d, want 7/3", resp.InputTokens, resp.OutputTokens)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want stop", resp.FinishReason)
	}

	if path != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", path)
	}
	if authHeader != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", authHeader, "Bearer test-key")
	}
	if ctype != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ctype)
	}
	if got.Model != "llama-3.1-8b-instant" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "be nice" {
		t.Errorf("system message = %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "oi" {
		t.Errorf("user message = %+v", got.Messages[1])
	}
	if got.MaxTokens != 500 {
		t.Errorf("max_tokens = %d, want 500", got.MaxTokens)
	}
	if got.Temperature < 0.69 || got.Temperature > 0.71 {
		t.Errorf("temperature = %f, want 0.7", got.Temperature)
	}
}

func TestChatClientSendsZeroTemperature(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		writeChoice(w, "ok")
	})

	_, err := NewChatClient("k", srv.URL).Complete(context.Background(), CompletionRequest{
		Model:       "m",
		MaxTokens:   5,
		Temperature: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := raw["temperature"]
	if !ok {
		t.Fatalf("temperature missing from request body: %v", raw)
	}
	var temp float64
	if err := json.Unmarshal(v, &temp); err != nil {
		t.Fatalf("temperature not a number: %s", v)
	}
	if temp < 0 || temp > 1e-6 {
		t.Errorf("temperature = %g, want effectively 0", temp)
	}
}

func TestChatClientStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error body", http.StatusBadRequest, `{"error":{"message":"The model has been decommissioned","type":"invalid_request_error","code":"model_decommissioned"}}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`},
		{"plain text body", http.StatusInternalServerError, `upstream exploded`},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewChatClient("k", srv.URL).Complete(context.Background(), CompletionRequest{Model: "m"})
			if err == nil {
				t.Fatal("expected error")
			}
			code, ok := StatusCode(err)
			if !ok {
				t.Fatalf("expected a status error, got %T: %v", err, err)
			}
			if code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
		})
	}
}

func TestChatClientEmptyChoices(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","choices":[]}`))
	})

	_, err := NewChatClient("k", srv.URL).Complete(context.Background(), CompletionRequest{Model: "m"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, ok := StatusCode(err); ok {
		t.Error("empty response must not carry a status")
	}
}

func TestChatClientMalformedBody(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [`))
	})

	_, err := NewChatClient("k", srv.URL).Complete(context.Background(), CompletionRequest{Model: "m"})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if _, ok := StatusCode(err); ok {
		t.Errorf("decode failure must not carry a status, got %v", err)
	}
}

func TestChatClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewChatClient("k", url).Complete(context.Background(), CompletionRequest{Model: "m"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if _, ok := StatusCode(err); ok {
		t.Errorf("transport failure must not carry a status, got %v", err)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: 400, Message: "bad model"}
	if err.Error() != "upstream returned status 400: bad model" {
		t.Errorf("Error() = %q", err.Error())
	}
	bare := &StatusError{StatusCode: 503}
	if bare.Error() != "upstream returned status 503" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestStatusCodeUnwrapsWrappedErrors(t *testing.T) {
	base := &StatusError{StatusCode: 502}
	wrapped := errors.Join(errors.New("attempt 1"), base)
	code, ok := StatusCode(wrapped)
	if !ok || code != 502 {
		t.Errorf("StatusCode = %d, %v; want 502, true", code, ok)
	}
}

func TestRoles(t *testing.T) {
	if RoleSystem != "system" {
		t.Errorf("RoleSystem = %q, want 'system'", RoleSystem)
	}
	if RoleUser != "user" {
		t.Errorf("RoleUser = %q, want 'user'", RoleUser)
	}
	if RoleAssistant != "assistant" {
		t.Errorf("RoleAssistant = %q, want 'assistant'", RoleAssistant)
	}
}
