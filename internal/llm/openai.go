package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAI talks to an OpenAI-compatible chat completions server (vLLM, llama.cpp, LM Studio).
type OpenAI struct {
	model   string
	timeout time.Duration
	client  *openai.Client
}

// NewOpenAI builds a client against baseURL. Local servers usually ignore the key.
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration) (*OpenAI, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if model == "" {
		return nil, fmt.Errorf("model required")
	}
	if apiKey == "" {
		apiKey = "local"
	}
	cli := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &OpenAI{model: model, timeout: timeout, client: &cli}, nil
}

func (c *OpenAI) Model() string { return c.model }

func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAI) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return classifyOpenAIError(ctx, err)
	}
	return nil
}

func classifyOpenAIError(ctx context.Context, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.StatusCode, Body: apiErr.RawJSON()}
	}
	if ctx.Err() != nil {
		return err
	}
	return wrapUnavailable(err)
}
