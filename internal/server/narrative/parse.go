package narrative

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/samber/lo"
)

const maxRecommendations = 5

var errNoJSONObject = errors.New("no JSON object in model output")

const defaultSummary = "Analysis completed successfully."

var defaultRecommendations = []string{
	"Enable two-factor authentication on all accounts",
	"Change passwords for affected accounts",
	"Monitor accounts for suspicious activity",
}

type answer struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// decodeFirstObject decodes the first JSON object in s. Markdown fences and
// chatter around it are ignored, including braces after the object.
func decodeFirstObject(s string, v any) error {
	start := strings.Index(s, "{")
	if start < 0 {
		return errNoJSONObject
	}
	return json.NewDecoder(strings.NewReader(s[start:])).Decode(v)
}

// Parse reads a model answer. Malformed output is an error; a valid object
// that lacks a summary or recommendations gets defaults for the missing part.
// An empty answer counts as an empty object.
func Parse(content string) (models.Analysis, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "{}"
	}

	var a answer
	if err := decodeFirstObject(content, &a); err != nil {
		return models.Analysis{}, err
	}

	recs := lo.Filter(lo.Map(a.Recommendations, func(r string, _ int) string { return strings.TrimSpace(r) }),
		func(r string, _ int) bool { return r != "" })
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	if len(recs) == 0 {
		recs = append([]string(nil), defaultRecommendations...)
	}

	summary := strings.TrimSpace(a.Summary)
	if summary == "" {
		summary = defaultSummary
	}

	return models.Analysis{Summary: summary, Recommendations: recs}, nil
}
