package risk

import (
	"testing"

	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name   string
		record models.BreachRecord
		want   models.Severity
	}{
		{
			name:   "password class is high",
			record: models.BreachRecord{DataClasses: []string{"Email addresses", "Passwords"}, IsVerified: true},
			want:   models.SeverityHigh,
		},
		{
			name:   "case-insensitive substring match",
			record: models.BreachRecord{DataClasses: []string{"partial CREDIT CARDS data"}, IsVerified: true},
			want:   models.SeverityHigh,
		},
		{
			name:   "provider sensitive flag is high",
			record: models.BreachRecord{DataClasses: []string{"Email addresses"}, IsSensitive: true, IsVerified: true},
			want:   models.SeverityHigh,
		},
		{
			name:   "high is checked before medium",
			record: models.BreachRecord{DataClasses: []string{"Passwords"}, PwnCount: 2_000_000, IsVerified: false},
			want:   models.SeverityHigh,
		},
		{
			name:   "large verified breach is medium",
			record: models.BreachRecord{DataClasses: []string{"Email addresses"}, PwnCount: 1_000_001, IsVerified: true},
			want:   models.SeverityMedium,
		},
		{
			name:   "exactly one million is not medium by count",
			record: models.BreachRecord{DataClasses: []string{"Email addresses"}, PwnCount: 1_000_000, IsVerified: true},
			want:   models.SeverityLow,
		},
		{
			name:   "unverified is medium",
			record: models.BreachRecord{DataClasses: []string{"Usernames"}, PwnCount: 10},
			want:   models.SeverityMedium,
		},
		{
			name:   "small verified benign breach is low",
			record: models.BreachRecord{DataClasses: []string{"Usernames"}, PwnCount: 10, IsVerified: true},
			want:   models.SeverityLow,
		},
		{
			name:   "no data classes, verified",
			record: models.BreachRecord{IsVerified: true},
			want:   models.SeverityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySeverity(&tt.record))
		})
	}
}

func TestScore_Empty(t *testing.T) {
	assert.Equal(t, 0, Score(nil))
	assert.Equal(t, 0, Score([]*models.BreachRecord{}))
}

func TestScore_LinkedInAdobeScenario(t *testing.T) {
	records := []*models.BreachRecord{
		{Name: "LinkedIn", Severity: models.SeverityHigh, IsSensitive: true, PwnCount: 1_000_001},
		{Name: "Adobe", Severity: models.SeverityMedium, PwnCount: 500_000},
	}

	// base 20, severity 20+10, sensitive 10
	assert.Equal(t, 60, Score(records))

	m := Measure(records)
	assert.Equal(t, Metrics{BreachCount: 2, ProfilesDetected: 1, RiskScore: 60, SecuredDataPercentage: 40}, m)
}

func TestScore_SensitiveRecordCountedTwice(t *testing.T) {
	plainHigh := []*models.BreachRecord{{Severity: models.SeverityHigh}}
	flaggedHigh := []*models.BreachRecord{{Severity: models.SeverityHigh, IsSensitive: true}}

	assert.Equal(t, 30, Score(plainHigh))
	assert.Equal(t, 40, Score(flaggedHigh))
}

func TestScore_BaseCapsAtFour(t *testing.T) {
	low := func(n int) []*models.BreachRecord {
		out := make([]*models.BreachRecord, n)
		for i := range out {
			out[i] = &models.BreachRecord{Severity: models.SeverityLow}
		}
		return out
	}

	assert.Equal(t, 15, Score(low(1)))
	assert.Equal(t, 60, Score(low(4)))
	assert.Equal(t, 65, Score(low(5)))
	assert.Equal(t, 100, Score(low(20)))
}

func TestScore_BoundsAndMonotonic(t *testing.T) {
	for _, sev := range []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh} {
		for _, sensitive := range []bool{false, true} {
			prev := 0
			var records []*models.BreachRecord
			for n := 1; n <= 15; n++ {
				records = append(records, &models.BreachRecord{Severity: sev, IsSensitive: sensitive})
				got := Score(records)
				assert.Greater(t, got, 0)
				assert.LessOrEqual(t, got, 100)
				assert.GreaterOrEqual(t, got, prev, "score must not drop as breaches are added")
				prev = got
			}
		}
	}
}

func TestMeasure_Empty(t *testing.T) {
	assert.Equal(t, Metrics{SecuredDataPercentage: 100}, Measure(nil))
}

func TestFindings(t *testing.T) {
	records := []*models.BreachRecord{
		{Name: "LinkedIn", PwnCount: 1_000_001, DataClasses: []string{"Email addresses", "Passwords"}},
		{Name: "Adobe", PwnCount: 500_000, DataClasses: []string{"Password hints", "Passwords", "Credit cards"}},
		{Name: "Forum", PwnCount: 10, DataClasses: []string{"Usernames"}, IsSensitive: true},
	}

	got := Findings(records)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "Passwords exposed", got[0].Title)
		assert.Equal(t, "Passwords appeared in 2 breaches: LinkedIn, Adobe.", got[0].Description)
		assert.Equal(t, models.SeverityHigh, got[0].Severity)
		assert.Equal(t, models.VulnerabilityKindExposedDataClass, got[0].Kind)
		assert.Equal(t, []string{"LinkedIn", "Adobe"}, got[0].Metadata["breaches"])
		assert.Equal(t, int64(1_500_001), got[0].Metadata["totalAccounts"])

		assert.Equal(t, "Credit cards appeared in 1 breach: Adobe.", got[1].Description)
	}

	assert.Empty(t, Findings(nil))
}
