package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaBaseURL is the default base URL for a local Ollama server.
const DefaultOllamaBaseURL = "http://localhost:11434"

// DefaultModel is used when no model identifier is configured.
const DefaultModel = "llama3.2"

// Ollama calls the Ollama /api/generate endpoint with streaming disabled.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// NewOllama returns a Generator for the Ollama server at baseURL. A zero timeout means none.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return NewOllamaWithClient(baseURL, model, &http.Client{Timeout: timeout})
}

// NewOllamaWithClient is NewOllama with a caller-supplied HTTP client.
func NewOllamaWithClient(baseURL, model string, client *http.Client) *Ollama {
	u := strings.TrimSuffix(baseURL, "/")
	if u == "" {
		u = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Ollama{baseURL: u, model: model, client: client}
}

func (o *Ollama) Model() string { return o.model }

// Generate sends one non-streaming generation request and returns the response text.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", wrapUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", wrapUnavailable(fmt.Errorf("decoding response: %w", err))
	}
	if out.Response == nil {
		return NoResponse, nil
	}
	return *out.Response, nil
}

// Ping checks the server by listing local models.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return wrapUnavailable(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: resp.Status}
	}
	return nil
}
