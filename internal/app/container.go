package app

import (
	"context"
	"time"

	"github.com/doeshing/whatif-advisor/internal/application/analyze"
	configvalidate "github.com/doeshing/whatif-advisor/internal/application/config"
	"github.com/doeshing/whatif-advisor/internal/infrastructure/config"
	"github.com/doeshing/whatif-advisor/internal/infrastructure/reasoner"
	"github.com/doeshing/whatif-advisor/internal/pkg/logger"
	"github.com/doeshing/whatif-advisor/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	AnalyzeService *analyze.Service
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := configvalidate.Validate(cfg); err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	factory := reasoner.NewFactory(time.Duration(cfg.Preferences.TimeoutSeconds) * time.Second)

	analyzeService := &analyze.Service{
		ConfigProvider:  cfgLoader,
		ReasonerFactory: factory,
		Logger:          log,
	}

	return &Container{
		AnalyzeService: analyzeService,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
	}, nil
}
