// Package main runs a one-shot scan: read a raw pool snapshot from a
// JSON file, classify, score and detect opportunities, then write the
// report. Useful for offline analysis and for inspecting what the
// server would publish for a given snapshot.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/config"
	"solana-pool-radar/internal/normalize"
	"solana-pool-radar/internal/opportunity"
	"solana-pool-radar/internal/report"
	"solana-pool-radar/internal/safety"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	poolsPath := flag.String("pools", "", "Path to raw pool snapshot JSON (required)")
	verifiedPath := flag.String("verified", "", "Path to verified mint list JSON (optional)")
	outputDir := flag.String("output-dir", "", "Write report files here instead of stdout")
	csvOut := flag.Bool("csv", false, "Also write the opportunity table as CSV (requires --output-dir)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *poolsPath == "" {
		logger.Fatal().Msg("--pools is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	var raw []normalize.RawPool
	if err := readJSON(*poolsPath, &raw); err != nil {
		logger.Fatal().Err(err).Msg("read pool snapshot")
	}

	verified := map[string]struct{}{}
	if *verifiedPath != "" {
		var mints []string
		if err := readJSON(*verifiedPath, &mints); err != nil {
			logger.Fatal().Err(err).Msg("read verified mints")
		}
		for _, m := range mints {
			verified[m] = struct{}{}
		}
	}

	normalizer := normalize.New(safety.NewClassifier(cfg.Safety.MinUnverifiedTVL))
	detector := opportunity.NewDetector(cfg.Limits.MaxOpportunities)

	res := normalizer.Run(raw, verified)
	opps := detector.Detect(res.Pools)

	logger.Info().
		Int("pools", len(res.Pools)).
		Int("dropped", res.Dropped).
		Int("opportunities", len(opps)).
		Msg("scan complete")

	rep := report.NewGenerator().Generate(res.Pools, opps, nil)
	md := report.RenderMarkdown(rep)

	if *outputDir == "" {
		fmt.Print(md)
		return
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("create output directory")
	}
	mdPath := filepath.Join(*outputDir, "SCAN_REPORT.md")
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		logger.Fatal().Err(err).Msg("write markdown report")
	}
	logger.Info().Str("path", mdPath).Msg("report written")

	if *csvOut {
		csvPath := filepath.Join(*outputDir, "opportunities.csv")
		if err := os.WriteFile(csvPath, []byte(report.RenderCSV(rep.Opportunities)), 0644); err != nil {
			logger.Fatal().Err(err).Msg("write csv report")
		}
		logger.Info().Str("path", csvPath).Msg("csv written")
	}
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
