package health

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

// #region table

// FormatTable renders a portfolio analysis as an aligned text table.
func FormatTable(report PortfolioHealth) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)

	fmt.Fprintln(w, "TEMPLATE\tMICRO\tMESO\tMACRO\tMETA\tM-SCORE\tCOHERENCE\tSIGNAL")
	for _, r := range report.Templates {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.4f\t%.3f\t%s\n",
			r.TemplateID,
			r.Layers["micro"], r.Layers["meso"], r.Layers["macro"], r.Layers["meta"],
			r.MScore, r.Coherence, r.Signal)
	}
	w.Flush()

	fmt.Fprintf(&b, "\nportfolio: %s (avg coherence %.3f)\n", report.PortfolioSignal, report.AvgCoherence)

	if len(report.Coupling) > 0 {
		limit := len(report.Coupling)
		if limit > 8 {
			limit = 8
		}
		b.WriteString("top coupling:\n")
		for _, c := range report.Coupling[:limit] {
			fmt.Fprintf(&b, "  %s ~ %s [%s] %.3f\n", c.TemplateA, c.TemplateB, c.Layer, c.Score)
		}
	}
	return b.String()
}

// #endregion table

// #region json

// FormatJSON renders a portfolio analysis as indented JSON.
func FormatJSON(report PortfolioHealth) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal health report: %w", err)
	}
	return string(data), nil
}

// #endregion json
