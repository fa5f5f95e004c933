package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/client/client"
	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func (a *App) printScan(s *models.ScanWithBreaches) {
	fmt.Fprintf(a.out, "Scan %s (%s)\n", s.ID, s.CreatedAt.Local().Format(common.DisplayTimeLayout))
	a.printMetrics(s.Email, s.BreachCount, s.ProfilesDetected, s.RiskScore, s.SecuredDataPercentage)
	for _, b := range s.Breaches {
		a.printBreach(&b.BreachRecord)
	}

	var summary string
	if s.AISummary != nil {
		summary = *s.AISummary
	}
	a.printAnalysis(summary, s.AIRecommendations)
}

func (a *App) printResult(r *models.ScanResult) {
	a.printMetrics(r.Email, r.BreachCount, r.ProfilesDetected, r.RiskScore, r.SecuredDataPercentage)
	for _, b := range r.Breaches {
		a.printBreach(b)
	}
	a.printAnalysis(r.Analysis.Summary, r.Analysis.Recommendations)
}

func (a *App) printMetrics(email string, breaches, profiles, risk, secured int) {
	fmt.Fprintf(a.out, "Email:     %s\n", email)
	fmt.Fprintf(a.out, "Breaches:  %d\n", breaches)
	fmt.Fprintf(a.out, "Profiles:  %d\n", profiles)
	fmt.Fprintf(a.out, "Risk:      %d/100 (%d%% secured)\n", risk, secured)
}

func (a *App) printBreach(b *models.BreachRecord) {
	line := printer.Sprintf("  [%-6s] %s, %d accounts", b.Severity, b.Name, b.PwnCount)
	if b.BreachDate != "" {
		line += ", breached " + b.BreachDate
	}
	fmt.Fprintln(a.out, line)
	if len(b.DataClasses) > 0 {
		fmt.Fprintf(a.out, "           exposed: %s\n", strings.Join(b.DataClasses, ", "))
	}
}

func (a *App) printAnalysis(summary string, recs []string) {
	if summary == "" && len(recs) == 0 {
		return
	}
	fmt.Fprintln(a.out)
	if summary != "" {
		fmt.Fprintln(a.out, summary)
	}
	for i, r := range recs {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, r)
	}
}

func (a *App) printHistory(scans []*models.ScanWithBreaches) {
	for _, s := range scans {
		fmt.Fprintf(a.out, "%s  %s  %-32s breaches=%d risk=%d\n",
			s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Email, s.BreachCount, s.RiskScore)
	}
}

// describeError turns an error into the line shown to the user.
func describeError(err error, now time.Time) string {
	var rl *common.RateLimitError
	var verr *common.ValidationError

	switch {
	case errors.As(err, &rl):
		wait := rl.RetryAfter(now).Round(time.Minute)
		return fmt.Sprintf("Quick lookup limit reached. Next lookup available at %s (in %s).",
			rl.NextAvailableAt.Local().Format(common.DisplayTimeLayout), wait)
	case errors.As(err, &verr):
		return "Invalid input: " + verr.Message
	case errors.Is(err, client.ErrTokenExpired):
		return "Your access token has expired."
	case errors.Is(err, client.ErrUnauthorized):
		return "Not authorized. Check your access token."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Try again later."
	case errors.Is(err, common.ErrorNotFound):
		return "Not found."
	}
	return "Error: " + err.Error()
}
