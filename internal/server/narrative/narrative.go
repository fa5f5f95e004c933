// Package narrative turns breach data and a risk score into a short summary
// and remediation advice using an OpenAI-compatible chat model. Generate
// never fails: without a usable model answer it returns Fallback.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultModel = "gpt-5"

	maxCompletionTokens = 1024

	systemPrompt = "You are a cybersecurity expert providing clear, actionable security advice. Be concise and specific."
)

var errNoChoices = errors.New("model returned no choices")

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatCompleter is the part of *openai.Client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	chat    ChatCompleter
	model   string
	timeout time.Duration
	logger  logging.Logger
}

// NewClient builds a Client over the OpenAI API. Without an API key the
// client never calls out and always returns Fallback.
func NewClient(cfg Config, logger logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var chat ChatCompleter
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		oc.HTTPClient = &http.Client{Timeout: timeout}
		chat = openai.NewClientWithConfig(oc)
	}

	return newClient(chat, cfg.Model, timeout, logger)
}

func newClient(chat ChatCompleter, model string, timeout time.Duration, logger logging.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{chat: chat, model: model, timeout: timeout, logger: logger.With("module", "narrative")}
}

// Fallback is the analysis used whenever the model cannot be reached or its
// answer cannot be parsed.
func Fallback() models.Analysis {
	return models.Analysis{
		Summary: "Your email has been found in data breaches. Immediate action is recommended to secure your accounts.",
		Recommendations: []string{
			"Change passwords for all affected accounts immediately",
			"Enable two-factor authentication (2FA) wherever possible",
			"Monitor your accounts for suspicious activity",
			"Use a password manager to create unique, strong passwords",
			"Consider using identity monitoring services",
		},
	}
}

var counts = message.NewPrinter(language.English)

// Prompt renders the user turn sent to the model.
func Prompt(email string, records []*models.BreachRecord, score int) string {
	var b strings.Builder

	b.WriteString("You are a cybersecurity expert analyzing a user's digital footprint.\n\n")
	fmt.Fprintf(&b, "Email: %s\n", email)
	fmt.Fprintf(&b, "Number of breaches: %d\n", len(records))
	fmt.Fprintf(&b, "Risk Score: %d/100\n\n", score)

	b.WriteString("Breaches found:\n")
	for _, r := range records {
		counts.Fprintf(&b, "- %s (%s severity, %d affected accounts)\n", r.Name, r.Severity, r.PwnCount)
	}

	b.WriteString(`
Provide:
1. A concise summary (2-3 sentences) of the security risk level and main concerns
2. 3-5 specific, actionable recommendations to improve security

Respond in JSON format:
{
  "summary": "Brief summary of findings",
  "recommendations": ["Recommendation 1", "Recommendation 2", ...]
}`)

	return b.String()
}

// Generate asks the model for an analysis. It makes one attempt bounded by
// the configured timeout.
func (c *Client) Generate(ctx context.Context, email string, records []*models.BreachRecord, score int) models.Analysis {
	if c.chat == nil {
		c.logger.Warn(ctx, "no LLM credentials configured, using fallback analysis")
		return Fallback()
	}

	analysis, err := c.complete(ctx, Prompt(email, records, score))
	if err != nil {
		c.logger.Warn(ctx, "AI analysis degraded to fallback", "email", common.MaskEmail(email), "error", err)
		return Fallback()
	}
	return analysis
}

func (c *Client) complete(ctx context.Context, prompt string) (models.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat:      &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		MaxCompletionTokens: maxCompletionTokens,
	})
	if err != nil {
		return models.Analysis{}, err
	}
	if len(resp.Choices) == 0 {
		return models.Analysis{}, errNoChoices
	}

	return Parse(resp.Choices[0].Message.Content)
}
