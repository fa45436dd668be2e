// Package report renders scan results as Markdown and CSV.
package report

import "time"

// Report is a rendered view of one published refresh.
type Report struct {
	GeneratedAt time.Time

	Summary Summary

	// Opportunities sorted by type priority (hot, active, standard),
	// as published by the detector.
	Opportunities []OpportunityRow

	// Triggered alerts, newest first.
	Triggered []TriggeredRow
}

// Summary describes the pool universe of the refresh.
type Summary struct {
	TotalPools   int
	SafePools    int
	WarningPools int
	DangerPools  int
	TotalTVL     float64
}

// OpportunityRow is one row of the opportunity table.
type OpportunityRow struct {
	PoolID   string
	Name     string
	Protocol string
	Type     string
	TVL      float64
	Volume   float64
	APR      float64
	Score    int
	Reason   string
}

// TriggeredRow is one row of the triggered-alert table.
type TriggeredRow struct {
	PoolID      string
	Metric      string
	Condition   string
	Threshold   float64
	Observed    float64
	TriggeredAt int64 // Unix ms
}
