package risk

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/samber/lo"
)

// Findings derives one exposed-data-class vulnerability per sensitive data
// class that at least one record exposes, in SensitiveDataClasses order.
func Findings(records []*models.BreachRecord) []*models.Vulnerability {
	findings := make([]*models.Vulnerability, 0)

	for _, class := range SensitiveDataClasses {
		exposing := lo.Filter(records, func(r *models.BreachRecord, _ int) bool { return ExposesClass(r, class) })
		if len(exposing) == 0 {
			continue
		}

		names := lo.Map(exposing, func(r *models.BreachRecord, _ int) string { return r.Name })
		total := lo.SumBy(exposing, func(r *models.BreachRecord) int64 { return r.PwnCount })

		noun := "breach"
		if len(exposing) > 1 {
			noun = "breaches"
		}

		findings = append(findings, &models.Vulnerability{
			Kind:        models.VulnerabilityKindExposedDataClass,
			Severity:    models.SeverityHigh,
			Title:       class + " exposed",
			Description: fmt.Sprintf("%s appeared in %d %s: %s.", class, len(exposing), noun, strings.Join(names, ", ")),
			Metadata: map[string]any{
				"dataClass":     class,
				"breaches":      names,
				"totalAccounts": total,
			},
		})
	}

	return findings
}
