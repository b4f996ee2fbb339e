package llm

import (
	"context"
	"errors"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient implements Provider against any OpenAI-compatible Chat
// Completions endpoint (Groq, OpenRouter, OpenAI, local gateways).
type ChatClient struct {
	client *openai.Client
}

// NewChatClient creates a client for the API rooted at baseURL, e.g.
// "https://api.groq.com/openai/v1". Requests go to baseURL + "/chat/completions".
func NewChatClient(apiKey string, baseURL string) *ChatClient {
	return NewChatClientWithHTTP(apiKey, baseURL, http.DefaultClient)
}

// NewChatClientWithHTTP is NewChatClient with a caller-supplied HTTP client.
func NewChatClientWithHTTP(apiKey string, baseURL string, httpClient *http.Client) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = httpClient
	return &ChatClient{client: openai.NewClientWithConfig(cfg)}
}

func (p *ChatClient) Name() string {
	return "openai-compatible"
}

func (p *ChatClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	// Temperature is omitempty in go-openai; a configured 0 must still be sent.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, convertError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// convertError maps go-openai's HTTP error types onto StatusError and
// passes transport errors through untouched.
func convertError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: http.StatusText(reqErr.HTTPStatusCode), Err: err}
	}
	return err
}
