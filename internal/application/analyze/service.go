// Package analyze orchestrates the analysis pipeline end-to-end: noise
// pre-filtering, the reasoner round trip, confidence partitioning, the
// optional reanalysis round, and threshold gating.
package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/whatif-advisor/assets"
	"github.com/doeshing/whatif-advisor/internal/agents"
	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
	"github.com/doeshing/whatif-advisor/internal/noise"
	"github.com/doeshing/whatif-advisor/internal/ports"
	"github.com/doeshing/whatif-advisor/internal/prompt"
	"github.com/doeshing/whatif-advisor/internal/risk"
)

// Service runs one What-If analysis. The pipeline is synchronous and
// single-threaded; the only blocking operations are the (at most two)
// reasoner calls and pattern/agent file reads.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	ReasonerFactory ports.ReasonerFactory
	Logger          ports.Logger
}

// Run processes a single analysis request.
func (s *Service) Run(req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	if s.ConfigProvider == nil || s.ReasonerFactory == nil || s.Logger == nil {
		return domain.AnalysisResult{}, errors.New("analyze.Service dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("load config: %w", err)
	}

	var warnings []string

	// Configuration errors (bad regex, agent collisions, empty bucket
	// set) must surface before any reasoner call is spent.
	patterns, patternWarnings, err := s.loadPatterns(cfg, req)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	warnings = append(warnings, patternWarnings...)
	resourcePatterns, _ := noise.Split(patterns)

	registry, agentWarnings := s.buildRegistry(cfg, req)
	warnings = append(warnings, agentWarnings...)

	var enabledIDs []string
	if req.GateMode {
		skips := req.SkipBuckets
		if len(skips) == 0 {
			skips = cfg.Gate.SkipBuckets
		}
		enabledIDs, err = registry.EnabledIDs(skips, req.HasPRMetadata())
		if err != nil {
			return domain.AnalysisResult{}, err
		}
	}

	fuzzyThreshold := req.FuzzyThreshold
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = cfg.Filter.FuzzyThreshold
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = noise.DefaultFuzzyThreshold
	}

	cleaned, removed := noise.FilterDocument(req.WhatIfText, patterns, fuzzyThreshold)
	s.Logger.Debug("pre-filter complete", map[string]interface{}{
		"lines_removed": removed,
		"patterns":      len(patterns),
	})

	reasoner, err := s.reasonerFor(cfg, req.ModelOverride)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	system := prompt.BuildSystemPrompt(prompt.Options{
		GateMode:      req.GateMode,
		PRTitle:       req.PRTitle,
		PRDescription: req.PRDescription,
		EnabledIDs:    enabledIDs,
		Registry:      registry,
	})
	user := prompt.BuildUserPrompt(cleaned, req.DiffText, req.BicepText, req.PRTitle, req.PRDescription)

	s.Logger.Info("calling reasoner", map[string]interface{}{
		"reasoner": reasoner.Name(),
		"gate":     req.GateMode,
	})
	raw, err := reasoner.Complete(ctx, ports.CompletionRequest{System: system, User: user})
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("reasoner call: %w", err)
	}

	// First-call validation failures are fatal for the run.
	result, err := ParseResult(raw, req.GateMode, enabledIDs, registry)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	result.NoiseLinesRemoved = removed

	// Secondary, coarser filtering layer: demote findings matching
	// resource patterns so partitioning routes them to the noise side.
	result.Reclassified = noise.Reclassify(result.Resources, resourcePatterns)

	trusted, discarded := Partition(result.Resources)
	result.Resources = trusted
	result.Noise = discarded

	if req.GateMode {
		var coord coordinator
		coord.observe(true, len(discarded))
		if coord.pending() {
			s.Logger.Info("noise discarded, rerunning risk assessment", map[string]interface{}{
				"discarded": len(discarded),
			})
			if warning := coord.run(ctx, reasoner, req, trusted, enabledIDs, registry, &result); warning != "" {
				warnings = append(warnings, warning)
				s.Logger.Warn(warning, nil)
			}
		}

		outcome := risk.Evaluate(result.RiskAssessment, enabledIDs, s.thresholds(cfg, req), registry)
		result.RiskAssessment = outcome.Assessment
		result.Safe = outcome.Safe
		result.FailedBuckets = outcome.FailedBuckets
	} else {
		result.Safe = true
	}

	result.Warnings = warnings
	return result, nil
}

// loadPatterns concatenates the built-in pattern set with the user's, in
// that order, never deduplicating or reordering. An unreadable user file
// is a warning, not a failure; an invalid regex in it is fatal.
func (s *Service) loadPatterns(cfg domain.Config, req domain.AnalysisRequest) ([]noise.Pattern, []string, error) {
	patterns, err := noise.ParsePatterns(bytes.NewReader(assets.BuiltinNoisePatterns))
	if err != nil {
		return nil, nil, fmt.Errorf("built-in noise patterns: %w", err)
	}

	userFile := req.PatternsFile
	if userFile == "" {
		userFile = cfg.Filter.PatternsFile
	}
	if userFile == "" {
		return patterns, nil, nil
	}

	userPatterns, err := noise.LoadPatternsFile(userFile)
	if err != nil {
		if errors.Is(err, noise.ErrPatternSource) {
			return patterns, []string{err.Error()}, nil
		}
		// Invalid regex is a configuration error, not a partial load.
		return nil, nil, err
	}
	return append(patterns, userPatterns...), nil, nil
}

// buildRegistry assembles the per-run bucket catalog: built-ins, then
// custom agents, then frozen. Per-agent failures (including identifier
// collisions) are warnings; loading continues with the remainder.
func (s *Service) buildRegistry(cfg domain.Config, req domain.AnalysisRequest) (*buckets.Registry, []string) {
	registry := buckets.NewRegistry()

	dir := req.AgentsDir
	if dir == "" {
		dir = cfg.Gate.AgentsDir
	}

	var warnings []string
	if dir != "" {
		loaded, loadWarnings := agents.LoadDirectory(dir)
		warnings = append(warnings, loadWarnings...)
		for _, bucket := range loaded {
			if err := registry.Register(bucket); err != nil {
				warnings = append(warnings, err.Error())
			}
		}
	}

	registry.Freeze()
	return registry, warnings
}

// thresholds merges configured threshold overrides with per-run ones; the
// request wins per bucket.
func (s *Service) thresholds(cfg domain.Config, req domain.AnalysisRequest) map[string]domain.RiskLevel {
	merged := make(map[string]domain.RiskLevel)
	for id, level := range cfg.Gate.Thresholds {
		merged[id] = domain.NormalizeRiskLevel(level)
	}
	for id, level := range req.Thresholds {
		merged[id] = level
	}
	return merged
}

func (s *Service) reasonerFor(cfg domain.Config, override string) (ports.Reasoner, error) {
	name := override
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	if name == "" && len(cfg.Models) > 0 {
		return s.ReasonerFactory.ForModel(cfg.Models[0])
	}
	for _, model := range cfg.Models {
		if model.Name == name {
			return s.ReasonerFactory.ForModel(model)
		}
	}
	return nil, fmt.Errorf("model %s not configured", name)
}

var _ domain.AnalysisService = (*Service)(nil)
