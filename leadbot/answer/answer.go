// Package answer asks an OpenAI-compatible chat completions endpoint to answer
// free-form questions about the studio's services.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/m3rciful/leadbot/core/logger"
)

// Responder answers a user's question.
type Responder interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("answer: service disabled")

// ServiceError reports a failed call to the answering service.
type ServiceError struct {
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("answer: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("answer: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Code is the stable error code used in handler logs.
func (e *ServiceError) Code() string { return "ANSWER_SERVICE" }

// DefaultSystemPrompt keeps answers on topic and sends everything else to a human.
const DefaultSystemPrompt = "You are the assistant of a studio that builds Telegram bots to order. " +
	"Answer briefly and only about bot development, pricing, timelines and integrations. " +
	"If the question is about anything else, say that a manager will help and suggest leaving a request via the menu."

// Config configures the client.
type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
	MaxTokens    int
}

// Client sends one chat completion per question, without retries.
type Client struct {
	cfg Config
	api openai.Client
}

// New builds a client. An empty APIKey yields a client that always fails with ErrDisabled.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)
	return &Client{cfg: cfg, api: api}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// Answer implements Responder.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	if !c.Enabled() {
		return "", &ServiceError{Err: ErrDisabled}
	}
	start := time.Now()
	text, err := c.complete(ctx, question)
	if err != nil {
		logger.Warn(ctx, "answer", "complete",
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		return "", err
	}
	logger.Info(ctx, "answer", "complete",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
		slog.Int("answer_len", len([]rune(text))),
	)
	return text, nil
}

func (c *Client) complete(ctx context.Context, question string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.cfg.SystemPrompt),
			openai.UserMessage(question),
		},
		MaxTokens: openai.Int(int64(c.cfg.MaxTokens)),
	})
	if err != nil {
		return "", serviceErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Err: errors.New("empty choices")}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ServiceError{Err: errors.New("empty answer")}
	}
	return text, nil
}

func serviceErr(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "request failed"
		}
		return &ServiceError{Status: apiErr.StatusCode, Err: errors.New(msg)}
	}
	return &ServiceError{Err: err}
}
