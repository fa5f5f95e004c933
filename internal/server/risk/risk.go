// Package risk classifies breach records and scores a set of them.
package risk

import (
	"strings"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/samber/lo"
)

// SensitiveDataClasses are the data categories that make a breach high
// severity. Matching is a case-insensitive substring test on each label.
var SensitiveDataClasses = []string{
	"Passwords",
	"Credit cards",
	"Social security numbers",
	"Banking information",
	"Financial information",
}

// MediumPwnCountThreshold is the account count above which a breach is at
// least medium severity.
const MediumPwnCountThreshold = 1_000_000

const (
	baseScorePerBreach = 10
	baseScoreCap       = 40
	sensitiveBonus     = 10
	maxScore           = 100
)

var severityPoints = map[models.Severity]int{
	models.SeverityHigh:   20,
	models.SeverityMedium: 10,
	models.SeverityLow:    5,
}

func labelMatches(label, class string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(class))
}

// ExposesClass reports whether any of the record's data classes matches class.
func ExposesClass(r *models.BreachRecord, class string) bool {
	return lo.ContainsBy(r.DataClasses, func(label string) bool { return labelMatches(label, class) })
}

// ClassifySeverity decides high, then medium, else low.
func ClassifySeverity(r *models.BreachRecord) models.Severity {
	sensitive := lo.SomeBy(SensitiveDataClasses, func(class string) bool { return ExposesClass(r, class) })
	if sensitive || r.IsSensitive {
		return models.SeverityHigh
	}
	if r.PwnCount > MediumPwnCountThreshold || !r.IsVerified {
		return models.SeverityMedium
	}
	return models.SeverityLow
}

// Score aggregates records into a 0-100 risk score:
//
//	min(min(n*10, 40) + Σ severity points + 10 per sensitive record, 100)
//
// A record flagged sensitive is already high severity, so it is counted
// twice. Scores depend on that.
func Score(records []*models.BreachRecord) int {
	if len(records) == 0 {
		return 0
	}

	base := min(len(records)*baseScorePerBreach, baseScoreCap)
	severity := lo.SumBy(records, func(r *models.BreachRecord) int { return severityPoints[r.Severity] })
	sensitive := lo.SumBy(records, func(r *models.BreachRecord) int {
		if r.IsSensitive {
			return sensitiveBonus
		}
		return 0
	})

	return min(base+severity+sensitive, maxScore)
}

// Metrics are the per-scan numbers derived from a record set.
type Metrics struct {
	BreachCount           int
	ProfilesDetected      int
	RiskScore             int
	SecuredDataPercentage int
}

// Measure derives Metrics. ProfilesDetected is 1 when anything was found.
func Measure(records []*models.BreachRecord) Metrics {
	score := Score(records)
	profiles := 0
	if len(records) > 0 {
		profiles = 1
	}
	return Metrics{
		BreachCount:           len(records),
		ProfilesDetected:      profiles,
		RiskScore:             score,
		SecuredDataPercentage: maxScore - score,
	}
}
