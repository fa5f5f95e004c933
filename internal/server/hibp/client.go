// Package hibp is the breach-intelligence client. It queries the Have I
// Been Pwned v3 API and never fails a scan: any problem is logged and
// reported as "no breaches".
package hibp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/dmitrijs2005/darktrack/internal/server/risk"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://haveibeenpwned.com/api/v3"
	UserAgent      = "DarkTrack-OSINT-Dashboard"
	APIKeyHeader   = "hibp-api-key"

	maxBodyBytes = 8 << 20
)

type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
}

func NewClient(cfg Config, logger logging.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// the API key tier caps requests per minute; a full minute's quota may
	// be spent at once
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rpm := cfg.RequestsPerMinute; rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger.With("module", "hibp"),
	}
}

type apiBreach struct {
	Name         string   `json:"Name"`
	Title        string   `json:"Title"`
	Domain       string   `json:"Domain"`
	BreachDate   string   `json:"BreachDate"`
	AddedDate    string   `json:"AddedDate"`
	ModifiedDate string   `json:"ModifiedDate"`
	PwnCount     int64    `json:"PwnCount"`
	Description  string   `json:"Description"`
	DataClasses  []string `json:"DataClasses"`
	IsVerified   bool     `json:"IsVerified"`
	IsFabricated bool     `json:"IsFabricated"`
	IsSensitive  bool     `json:"IsSensitive"`
	IsRetired    bool     `json:"IsRetired"`
	IsSpamList   bool     `json:"IsSpamList"`
	IsMalware    bool     `json:"IsMalware"`
}

func (b *apiBreach) record() *models.BreachRecord {
	name := b.Title
	if name == "" {
		name = b.Name
	}
	classes := b.DataClasses
	if classes == nil {
		classes = []string{}
	}

	r := &models.BreachRecord{
		Name:         name,
		Domain:       b.Domain,
		BreachDate:   b.BreachDate,
		AddedDate:    b.AddedDate,
		ModifiedDate: b.ModifiedDate,
		PwnCount:     b.PwnCount,
		Description:  b.Description,
		DataClasses:  classes,
		IsVerified:   b.IsVerified,
		IsFabricated: b.IsFabricated,
		IsSensitive:  b.IsSensitive,
		IsRetired:    b.IsRetired,
		IsSpamList:   b.IsSpamList,
		IsMalware:    b.IsMalware,
	}
	r.Severity = risk.ClassifySeverity(r)
	return r
}

// escapeAccount encodes an address as a single path segment, escaping '@'
// and '+' as well.
func escapeAccount(email string) string {
	return strings.ReplaceAll(url.QueryEscape(email), "+", "%20")
}

// Lookup returns the classified breach records for email. It makes a
// single attempt bounded by the configured timeout; on any failure the
// result is empty.
func (c *Client) Lookup(ctx context.Context, email string) []*models.BreachRecord {
	records, err := c.fetch(ctx, email)
	if err != nil {
		c.logger.Warn(ctx, "breach lookup degraded to empty result", "email", common.MaskEmail(email), "error", err)
		return []*models.BreachRecord{}
	}
	return records
}

func (c *Client) fetch(ctx context.Context, email string) ([]*models.BreachRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s is not configured", APIKeyHeader)
	}

	// queueing for a token is bounded by the caller, not the request timeout
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false", c.baseURL, escapeAccount(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		c.logger.Debug(ctx, "no breaches found", "email", common.MaskEmail(email))
		return []*models.BreachRecord{}, nil
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload []apiBreach
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]*models.BreachRecord, 0, len(payload))
	for i := range payload {
		records = append(records, payload[i].record())
	}

	c.logger.Info(ctx, "breach lookup completed", "email", common.MaskEmail(email), "breaches", len(records))
	return records, nil
}
