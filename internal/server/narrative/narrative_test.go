package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenario() []*models.BreachRecord {
	return []*models.BreachRecord{
		{Name: "LinkedIn", Severity: models.SeverityHigh, IsSensitive: true, PwnCount: 1_000_001},
		{Name: "Adobe", Severity: models.SeverityMedium, PwnCount: 500_000},
	}
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-5",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(b)
}

// openAIServer fakes the chat completions endpoint and records the last request.
func openAIServer(t *testing.T, status int, body string, last *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if last != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, last)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_ParsesModelAnswer(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := openAIServer(t, http.StatusOK,
		completionBody(`{"summary":"Two breaches, one exposing passwords.","recommendations":["Rotate LinkedIn password","Enable 2FA","Check Adobe account"]}`),
		&req)

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second}, logging.Nop())
	got := c.Generate(context.Background(), "test@example.com", scenario(), 60)

	assert.Equal(t, "Two breaches, one exposing passwords.", got.Summary)
	assert.Equal(t, []string{"Rotate LinkedIn password", "Enable 2FA", "Check Adobe account"}, got.Recommendations)

	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, maxCompletionTokens, req.MaxCompletionTokens)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, systemPrompt, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "Risk Score: 60/100")
	assert.Contains(t, req.Messages[1].Content, "- LinkedIn (high severity, 1,000,001 affected accounts)")
	assert.Contains(t, req.Messages[1].Content, "- Adobe (medium severity, 500,000 affected accounts)")
}

func TestGenerate_FallbackVerbatim(t *testing.T) {
	want := models.Analysis{
		Summary: "Your email has been found in data breaches. Immediate action is recommended to secure your accounts.",
		Recommendations: []string{
			"Change passwords for all affected accounts immediately",
			"Enable two-factor authentication (2FA) wherever possible",
			"Monitor your accounts for suspicious activity",
			"Use a password manager to create unique, strong passwords",
			"Consider using identity monitoring services",
		},
	}
	assert.Equal(t, want, Fallback())

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`},
		{"quota exceeded", http.StatusTooManyRequests, `{"error":{"message":"quota","type":"insufficient_quota"}}`},
		{"malformed JSON content", http.StatusOK, completionBody(`{"summary": "unterminated`)},
		{"prose instead of JSON", http.StatusOK, completionBody(`I cannot help with that.`)},
		{"wrong field types", http.StatusOK, completionBody(`{"summary": 42, "recommendations": "one"}`)},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-5","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := openAIServer(t, tt.status, tt.body, nil)
			c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second}, logging.Nop())

			got := c.Generate(context.Background(), "test@example.com", scenario(), 60)
			assert.Equal(t, want, got)
		})
	}
}

func TestGenerate_MissingCredentials(t *testing.T) {
	c := NewClient(Config{}, logging.Nop())
	assert.Equal(t, Fallback(), c.Generate(context.Background(), "test@example.com", scenario(), 60))
}

type fakeChat struct {
	resp openai.ChatCompletionResponse
	err  error
	wait bool
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.wait {
		<-ctx.Done()
		return openai.ChatCompletionResponse{}, ctx.Err()
	}
	return f.resp, f.err
}

func TestGenerate_TimeoutFallsBack(t *testing.T) {
	c := newClient(&fakeChat{wait: true}, "", 20*time.Millisecond, logging.Nop())

	start := time.Now()
	got := c.Generate(context.Background(), "test@example.com", nil, 0)

	assert.Equal(t, Fallback(), got)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGenerate_TransportError(t *testing.T) {
	c := newClient(&fakeChat{err: errors.New("connection reset")}, "", time.Second, logging.Nop())
	assert.Equal(t, Fallback(), c.Generate(context.Background(), "test@example.com", nil, 0))
}

func TestGenerate_EmptyContentUsesDefaults(t *testing.T) {
	c := newClient(&fakeChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: ""}}},
	}}, "", time.Second, logging.Nop())

	got := c.Generate(context.Background(), "clean@example.com", nil, 0)
	assert.Equal(t, "Analysis completed successfully.", got.Summary)
	assert.Equal(t, defaultRecommendations, got.Recommendations)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    models.Analysis
		wantErr bool
	}{
		{
			name: "plain object",
			in:   `{"summary":"s","recommendations":["a","b","c"]}`,
			want: models.Analysis{Summary: "s", Recommendations: []string{"a", "b", "c"}},
		},
		{
			name: "fenced",
			in:   "```json\n{\"summary\":\"s\",\"recommendations\":[\"a\"]}\n```",
			want: models.Analysis{Summary: "s", Recommendations: []string{"a"}},
		},
		{
			name: "missing summary",
			in:   `{"recommendations":["a"]}`,
			want: models.Analysis{Summary: defaultSummary, Recommendations: []string{"a"}},
		},
		{
			name: "missing recommendations",
			in:   `{"summary":"s"}`,
			want: models.Analysis{Summary: "s", Recommendations: defaultRecommendations},
		},
		{
			name: "trims, drops blanks, caps at five",
			in:   `{"summary":"  s  ","recommendations":[" 1 ","","2","3","4","5","6"]}`,
			want: models.Analysis{Summary: "s", Recommendations: []string{"1", "2", "3", "4", "5"}},
		},
		{
			name: "braces in trailing chatter",
			in:   "{\"summary\":\"s\",\"recommendations\":[\"a\"]}\nNote: use {placeholders} for names.",
			want: models.Analysis{Summary: "s", Recommendations: []string{"a"}},
		},
		{
			name: "second object ignored",
			in:   "Here you go: {\"summary\":\"first\"} and {\"summary\":\"second\"}",
			want: models.Analysis{Summary: "first", Recommendations: defaultRecommendations},
		},
		{name: "no object", in: `nothing here`, wantErr: true},
		{name: "broken object", in: `{"summary":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt_NoBreaches(t *testing.T) {
	p := Prompt("clean@example.com", nil, 0)
	assert.Contains(t, p, "Email: clean@example.com")
	assert.Contains(t, p, "Number of breaches: 0")
	assert.Contains(t, p, "Risk Score: 0/100")
}
