package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/rmd-simulator/internal/store"
)

// RunReport is everything the console report renders for one stored run.
type RunReport struct {
	RunID       string
	Summaries   []store.StrategySummary
	Comparisons []store.PairedComparison
	Buckets     []store.DeathAgeBucket
}

// FormatRunReport renders a run summary for the console.
func FormatRunReport(report RunReport) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RMD STRATEGY COMPARISON")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Run: %s\n", report.RunID)
	fmt.Fprintln(&buf)

	for _, s := range report.Summaries {
		fmt.Fprintf(&buf, "%s (%d trials", s.Strategy, s.Count)
		if s.InvalidCount > 0 {
			fmt.Fprintf(&buf, ", %d invalid excluded", s.InvalidCount)
		}
		fmt.Fprintln(&buf, ")")
		fmt.Fprintf(&buf, "  Terminal wealth: mean=%s std=%s\n", FormatCurrency(s.MeanWealth), FormatCurrency(s.StdWealth))
		fmt.Fprintf(&buf, "  Percentiles: p10=%s p50=%s p90=%s\n", FormatCurrency(s.P10), FormatCurrency(s.P50), FormatCurrency(s.P90))
		fmt.Fprintf(&buf, "  Range: min=%s max=%s\n", FormatCurrency(s.MinWealth), FormatCurrency(s.MaxWealth))
		fmt.Fprintf(&buf, "  Mean taxes=%s  mean RMDs=%s  mean step-up benefit=%s\n",
			FormatCurrency(s.MeanTaxes), FormatCurrency(s.MeanRMDs), FormatCurrency(s.MeanStepUp))
		fmt.Fprintln(&buf)
	}

	for _, c := range report.Comparisons {
		fmt.Fprintf(&buf, "Paired: %s beats %s in %.1f%% of %d trials (%d ties)\n",
			c.StrategyA, c.StrategyB, c.AWinRate()*100, c.Trials, c.Ties)
	}
	if len(report.Comparisons) > 0 {
		fmt.Fprintln(&buf)
	}

	if len(report.Buckets) > 0 {
		fmt.Fprintln(&buf, "By death age:")
		for _, b := range report.Buckets {
			fmt.Fprintf(&buf, "  %s %d-%d: n=%d mean=%s\n",
				b.Strategy, b.AgeLow, b.AgeHigh, b.Count, FormatCurrency(b.MeanWealth))
		}
	}

	return buf.Bytes()
}

// FormatCurrency formats a float amount as USD currency with 2 decimals.
func FormatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
