package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/morozRed/apitrail/internal/enrich"
	"github.com/morozRed/apitrail/internal/source"
)

var ErrMissingAPIKey = errors.New("anthropic API key is not set (use --api-key or ANTHROPIC_API_KEY)")

type Config struct {
	APIKey         string
	Model          string
	MaxTokens      int
	MaxSourceBytes int
	Retry          RetryConfig
}

// completeFunc sends one prompt and returns the concatenated text reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// Client documents endpoints with the Anthropic Messages API. It reads the
// owning file through a pass confined to the code directory.
type Client struct {
	complete       completeFunc
	sources        *source.Pass
	maxSourceBytes int
	retry          RetryConfig
}

var _ enrich.Collaborator = (*Client)(nil)

func NewClient(cfg Config, sources *source.Pass) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	api := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)
	model := cfg.Model
	maxTokens := int64(cfg.MaxTokens)
	complete := func(ctx context.Context, prompt string) (string, error) {
		resp, err := api.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", err
		}
		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		return text.String(), nil
	}
	return newClient(complete, sources, cfg), nil
}

func newClient(complete completeFunc, sources *source.Pass, cfg Config) *Client {
	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.InitialBackoff == 0 {
		retry = DefaultRetryConfig()
	}
	return &Client{
		complete:       complete,
		sources:        sources,
		maxSourceBytes: cfg.MaxSourceBytes,
		retry:          retry,
	}
}

// Produce implements enrich.Collaborator.
func (c *Client) Produce(ctx context.Context, endpoint enrich.EndpointContext) (string, error) {
	prompt := c.prompt(endpoint)
	var reply string
	err := retryWithBackoff(ctx, c.retry, endpoint.ID, func(attemptCtx context.Context) error {
		text, err := c.complete(attemptCtx, prompt)
		if err != nil {
			return err
		}
		reply = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}
	return reply, nil
}

func (c *Client) prompt(endpoint enrich.EndpointContext) string {
	if c.sources == nil {
		return BuildAnalysisPrompt(endpoint, "", "", false)
	}
	file, err := c.sources.Read(endpoint.File)
	if err != nil || file == nil || file.Binary {
		if err != nil {
			slog.Warn("llm.source_unavailable", "file", endpoint.File, "error", err)
		}
		return BuildAnalysisPrompt(endpoint, "", "", false)
	}
	content, truncated := truncate(file.Content, c.maxSourceBytes)
	return BuildAnalysisPrompt(endpoint, file.Language, content, truncated)
}
