package report

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Pool Scan Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Pools | %d |\n", r.Summary.TotalPools))
	sb.WriteString(fmt.Sprintf("| Safe | %d |\n", r.Summary.SafePools))
	sb.WriteString(fmt.Sprintf("| Warning | %d |\n", r.Summary.WarningPools))
	sb.WriteString(fmt.Sprintf("| Danger | %d |\n", r.Summary.DangerPools))
	sb.WriteString(fmt.Sprintf("| Total TVL (USD) | %.2f |\n", r.Summary.TotalTVL))
	sb.WriteString("\n")

	// Opportunities
	sb.WriteString("## Opportunities\n\n")
	if len(r.Opportunities) > 0 {
		sb.WriteString("| Pool | Protocol | Type | TVL | Volume 24h | APR | Score | Reason |\n")
		sb.WriteString("|------|----------|------|-----|------------|-----|-------|--------|\n")
		for _, o := range r.Opportunities {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %.2f | %d | %s |\n",
				o.Name, o.Protocol, o.Type, o.TVL, o.Volume, o.APR, o.Score, o.Reason))
		}
	} else {
		sb.WriteString("No opportunities detected.\n")
	}
	sb.WriteString("\n")

	// Triggered Alerts
	sb.WriteString("## Triggered Alerts\n\n")
	if len(r.Triggered) > 0 {
		sb.WriteString("| Pool | Metric | Condition | Threshold | Observed | Triggered (ms) |\n")
		sb.WriteString("|------|--------|-----------|-----------|----------|----------------|\n")
		for _, t := range r.Triggered {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %d |\n",
				t.PoolID, t.Metric, t.Condition, t.Threshold, t.Observed, t.TriggeredAt))
		}
	} else {
		sb.WriteString("No alerts triggered.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
