package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/whatif-advisor/internal/app"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(container *app.Container) *cobra.Command {
	var (
		gate           bool
		diffFile       string
		bicepFile      string
		prTitle        string
		prDescription  string
		patternsFile   string
		agentsDir      string
		skipBuckets    []string
		thresholdFlags []string
		model          string
		fuzzyThreshold float64
		timeout        time.Duration
		debug          bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [what-if file]",
		Short: "Analyze Azure What-If output",
		Long: "Reads What-If output from a file argument (or stdin when the argument is omitted\n" +
			"or '-'), filters noise, and prints the analysis as JSON. With --gate the command\n" +
			"exits non-zero when any risk bucket meets or exceeds its threshold.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			whatIf, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			diff, err := readOptionalFile(diffFile)
			if err != nil {
				return err
			}
			bicep, err := readOptionalFile(bicepFile)
			if err != nil {
				return err
			}
			thresholds, err := parseThresholds(thresholdFlags)
			if err != nil {
				return err
			}

			req := domain.AnalysisRequest{
				Context:        ctx,
				WhatIfText:     whatIf,
				GateMode:       gate,
				DiffText:       diff,
				BicepText:      bicep,
				PRTitle:        prTitle,
				PRDescription:  prDescription,
				ModelOverride:  model,
				PatternsFile:   patternsFile,
				AgentsDir:      agentsDir,
				SkipBuckets:    skipBuckets,
				Thresholds:     thresholds,
				FuzzyThreshold: fuzzyThreshold,
				Debug:          debug,
			}

			result, err := container.AnalyzeService.Run(req)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			if gate && !result.Safe {
				return fmt.Errorf("risk gate failed: %s", strings.Join(result.FailedBuckets, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&gate, "gate", false, "Enable risk gating with per-bucket assessments")
	cmd.Flags().StringVar(&diffFile, "diff", "", "File containing the code diff to include as context")
	cmd.Flags().StringVar(&bicepFile, "bicep", "", "File containing the Bicep template source to include as context")
	cmd.Flags().StringVar(&prTitle, "pr-title", "", "Pull request title, enables intent analysis")
	cmd.Flags().StringVar(&prDescription, "pr-description", "", "Pull request description, enables intent analysis")
	cmd.Flags().StringVar(&patternsFile, "noise-patterns", "", "Extra noise patterns file appended after the built-in set")
	cmd.Flags().StringVar(&agentsDir, "agents-dir", "", "Directory of custom risk bucket agent files")
	cmd.Flags().StringSliceVar(&skipBuckets, "skip", nil, "Bucket IDs to skip (repeatable)")
	cmd.Flags().StringSliceVar(&thresholdFlags, "threshold", nil, "Per-bucket threshold override as bucket=level (repeatable)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().Float64Var(&fuzzyThreshold, "fuzzy-threshold", 0, "Similarity ratio for fuzzy patterns (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override request timeout")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable verbose logging")

	return cmd
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseThresholds(flags []string) (map[string]domain.RiskLevel, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	thresholds := make(map[string]domain.RiskLevel, len(flags))
	for _, flag := range flags {
		bucket, level, found := strings.Cut(flag, "=")
		if !found || bucket == "" {
			return nil, fmt.Errorf("invalid threshold %q: expected bucket=level", flag)
		}
		if !domain.ValidRiskLevel(strings.ToLower(level)) {
			return nil, fmt.Errorf("invalid threshold %q: level must be low|medium|high", flag)
		}
		thresholds[bucket] = domain.NormalizeRiskLevel(level)
	}
	return thresholds, nil
}
