package report

import (
	"fmt"
	"strings"
)

// RenderCSV renders the opportunity table as a CSV string.
func RenderCSV(rows []OpportunityRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("pool_id,name,protocol,type,tvl,volume_24h,apr,score,reason\n")

	// Rows
	for _, o := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%.6f,%.6f,%d,%s\n",
			o.PoolID,
			csvEscape(o.Name),
			o.Protocol,
			o.Type,
			o.TVL,
			o.Volume,
			o.APR,
			o.Score,
			csvEscape(o.Reason),
		))
	}

	return sb.String()
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
