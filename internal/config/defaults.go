package config

import "time"

// APIKeyEnvVar is the conventional environment variable holding the
// upstream API key. QARELAY_API_KEY takes precedence when both are set.
const APIKeyEnvVar = "GROQ_API_KEY"

// DefaultBaseURL is the OpenAI-compatible endpoint used when none is configured.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModels is the model fallback chain, best first. Upstream retires
// models independently, so the older and cheaper ones stay at the tail.
var DefaultModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"gemma2-9b-it",
}

// DefaultSystemPrompt is the assistant persona sent ahead of every question.
const DefaultSystemPrompt = `Você é o Assistente Pet, um atendente virtual de um pet shop.
Responda em português do Brasil, de forma simpática, objetiva e com no máximo alguns parágrafos curtos.
Ajude com rações, brinquedos, acessórios, higiene, alimentação e bem-estar de cães, gatos e outros pets.
Para sintomas de doença, vacinas ou medicamentos, dê orientações gerais e recomende sempre consultar um médico veterinário.
Se a pergunta não tiver relação com pets, explique educadamente que só pode ajudar com esse assunto.`

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Models:         append([]string(nil), DefaultModels...),
		SystemPrompt:   DefaultSystemPrompt,
		MaxTokens:      500,
		Temperature:    0.7,
		RequestTimeout: 30 * time.Second,
		Port:           5000,
		AuditEnabled:   false,
		AuditPath:      "data/qarelay.db",
		AuditRetention: 30 * 24 * time.Hour,
	}
}
