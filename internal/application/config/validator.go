package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/whatif-advisor/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if cfg.Preferences.DefaultModel != "" {
		if _, ok := findModel(cfg, cfg.Preferences.DefaultModel); !ok {
			return fmt.Errorf("default model %s not found in models list", cfg.Preferences.DefaultModel)
		}
	}
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
	}
	if err := validateFilter(cfg.Filter); err != nil {
		return err
	}
	return validateGate(cfg.Gate)
}

func validateModel(model domain.ModelDefinition) error {
	if model.Name == "" {
		return errors.New("every model needs a name")
	}
	if model.Endpoint == "" {
		return fmt.Errorf("model %s: endpoint must be set", model.Name)
	}
	if model.ModelID == "" {
		return fmt.Errorf("model %s: model_id must be set", model.Name)
	}
	switch model.APIFormat.GetSystemMessageMode() {
	case domain.SystemMessageModeInline, domain.SystemMessageModeSeparate:
	default:
		return fmt.Errorf("model %s: api_format.system_message_mode must be inline|separate, got %s",
			model.Name, model.APIFormat.SystemMessageMode)
	}
	switch model.APIFormat.GetContentWrapper() {
	case domain.ContentWrapperStandard, domain.ContentWrapperAnthropic:
	default:
		return fmt.Errorf("model %s: api_format.content_wrapper must be standard|anthropic, got %s",
			model.Name, model.APIFormat.ContentWrapper)
	}
	return nil
}

func validateFilter(filter domain.FilterSettings) error {
	if filter.FuzzyThreshold != 0 && (filter.FuzzyThreshold <= 0 || filter.FuzzyThreshold > 1) {
		return fmt.Errorf("filter.fuzzy_threshold must be in (0, 1], got %v", filter.FuzzyThreshold)
	}
	return nil
}

func validateGate(gate domain.GateSettings) error {
	for bucket, level := range gate.Thresholds {
		if !domain.ValidRiskLevel(strings.ToLower(level)) {
			return fmt.Errorf("gate.thresholds.%s: must be low|medium|high, got %s", bucket, level)
		}
	}
	return nil
}

func findModel(cfg domain.Config, name string) (domain.ModelDefinition, bool) {
	for _, model := range cfg.Models {
		if model.Name == name {
			return model, true
		}
	}
	return domain.ModelDefinition{}, false
}
