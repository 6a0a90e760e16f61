// Package openai prompts OpenAI compatible chat completion endpoints. Groq is
// served by the same client pointed at its OpenAI compatible base URL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/koscakluka/ema-avatar/core/llms"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultGroqModel = "llama-3.1-8b-instant"

	GroqBaseURL = "https://api.groq.com/openai/v1"
)

type Client struct {
	provider string
	model    string
	client   openaisdk.Client
	options  []llms.PromptOption
}

type clientConfig struct {
	provider   string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	options    []llms.PromptOption
}

type ClientOption func(*clientConfig)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *clientConfig) { c.apiKey = apiKey }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) { c.baseURL = baseURL }
}

func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *clientConfig) { c.httpClient = httpClient }
}

// WithPromptOptions sets prompt options applied to every prompt before the
// per-call ones.
func WithPromptOptions(opts ...llms.PromptOption) ClientOption {
	return func(c *clientConfig) { c.options = append(c.options, opts...) }
}

// WithGroq points the client at Groq. It sets the base URL and, unless a
// model is given later, the default Groq model.
func WithGroq() ClientOption {
	return func(c *clientConfig) {
		c.provider = "groq"
		c.baseURL = GroqBaseURL
		c.model = DefaultGroqModel
	}
}

func NewClient(opts ...ClientOption) *Client {
	config := clientConfig{provider: "openai", model: DefaultModel}
	for _, opt := range opts {
		opt(&config)
	}

	httpClient := config.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	requestOptions := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if config.apiKey != "" {
		requestOptions = append(requestOptions, option.WithAPIKey(config.apiKey))
	}
	if config.baseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(config.baseURL))
	}

	return &Client{
		provider: config.provider,
		model:    config.model,
		client:   openaisdk.NewClient(requestOptions...),
		options:  config.options,
	}
}

// Prompt sends a single user prompt with the configured instructions and
// returns the trimmed reply. An empty reply becomes llms.FallbackReply.
func (c *Client) Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (string, error) {
	options := llms.NewPromptOptions(slices.Concat(c.options, opts)...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	ctx, span := tracer.Start(ctx, "prompt")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider),
		attribute.String("llm.model", model),
	)

	params := openaisdk.ChatCompletionNewParams{
		Model: model,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(options.Instructions),
			openaisdk.UserMessage(prompt),
		},
		Temperature: openaisdk.Float(options.Temperature),
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = c.convertError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	reply := ""
	if len(response.Choices) > 0 {
		reply = strings.TrimSpace(response.Choices[0].Message.Content)
	}
	if reply == "" {
		logger.InfoContext(ctx, "model returned an empty reply", "provider", c.provider, "model", model)
		return llms.FallbackReply, nil
	}

	return reply, nil
}

// Complete is Prompt with the client's default options.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	return c.Prompt(ctx, text)
}

func (c *Client) convertError(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return &llms.APIError{Provider: c.provider, StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
	}
	return fmt.Errorf("%s: %w", c.provider, err)
}
