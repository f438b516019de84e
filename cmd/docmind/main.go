package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/docmind/docmind/internal/analysis"
	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/domain"
	"github.com/docmind/docmind/internal/export"
	"github.com/docmind/docmind/internal/observability"
	"github.com/docmind/docmind/internal/prompt"
	"github.com/docmind/docmind/internal/provider/azure"
	"github.com/docmind/docmind/internal/provider/echo"
)

func main() {
	cmd := &cli.Command{
		Name:  "docmind",
		Usage: "AI-assisted document analysis",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Analyze a document file and export the result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "document file to analyze",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "export format: json, csv, markdown or summary",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output path (defaults to the artifact's suggested filename)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "logical model to target",
					},
					&cli.StringSliceFlag{
						Name:  "skip",
						Usage: "secondary facets to skip (summary, keywords, categorization, sentiment)",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "use the deterministic echo service instead of the remote endpoint",
					},
				},
				Action: analyzeAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("docmind: %v", err)
	}
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	logger, err := observability.InitLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	container, err := buildContainer(cmd.Bool("offline"), logger)
	if err != nil {
		return err
	}

	return container.Invoke(func(orchestrator *analysis.Orchestrator, exporter *export.Exporter) error {
		content, err := os.ReadFile(cmd.String("file"))
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		opts := domain.DefaultAnalysisOptions()
		if model := cmd.String("model"); model != "" {
			opts.Model = domain.ModelType(model)
		}
		for _, facet := range cmd.StringSlice("skip") {
			switch facet {
			case domain.FacetSummary:
				opts.SkipSummary = true
			case domain.FacetKeywords:
				opts.SkipKeywords = true
			case domain.FacetCategorization:
				opts.SkipCategorization = true
			case domain.FacetSentiment:
				opts.SkipSentiment = true
			default:
				return fmt.Errorf("unknown facet: %s", facet)
			}
		}

		composite, err := orchestrator.Analyze(ctx, string(content), opts)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		artifact, err := exporter.Export(composite, domain.ExportFormat(cmd.String("format")))
		if err != nil {
			return err
		}

		outPath := cmd.String("output")
		if outPath == "" {
			outPath = artifact.Filename
		}
		if err := os.WriteFile(outPath, []byte(artifact.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}

		fmt.Printf("wrote %s (%s)\n", outPath, artifact.MIMEType)
		return nil
	})
}

func buildContainer(offline bool, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config dependencies: %w", err)
	}

	// Observability
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, fmt.Errorf("failed to provide logger: %w", err)
	}
	if err := container.Provide(observability.NewEventBus, dig.As(new(domain.EventPublisher))); err != nil {
		return nil, fmt.Errorf("failed to provide event bus: %w", err)
	}

	// Prompt registry
	if err := container.Provide(prompt.NewRegistry, dig.As(new(domain.PromptRegistry))); err != nil {
		return nil, fmt.Errorf("failed to provide prompt registry: %w", err)
	}

	// Cost estimation
	if err := container.Provide(domain.NewDefaultPricingRegistry, dig.As(new(domain.PricingRegistry))); err != nil {
		return nil, fmt.Errorf("failed to provide pricing registry: %w", err)
	}
	if err := container.Provide(domain.NewStandardCostCalculator, dig.As(new(domain.CostCalculator))); err != nil {
		return nil, fmt.Errorf("failed to provide cost calculator: %w", err)
	}

	// Completion service
	if offline {
		if err := container.Provide(func() domain.CompletionService {
			return echo.NewService()
		}); err != nil {
			return nil, fmt.Errorf("failed to provide echo service: %w", err)
		}
	} else {
		if err := container.Provide(func(cfg *azure.Config) (domain.CompletionService, error) {
			return azure.NewClient(*cfg)
		}); err != nil {
			return nil, fmt.Errorf("failed to provide completion client: %w", err)
		}
	}

	// Orchestrator and exporter
	if err := container.Provide(func(
		client domain.CompletionService,
		registry domain.PromptRegistry,
		events domain.EventPublisher,
		costs domain.CostCalculator,
		cfg *config.AnalysisConfig,
	) *analysis.Orchestrator {
		return analysis.NewOrchestrator(client, registry, events, costs, analysis.Config{
			MinContentLength: cfg.MinContentLength,
			MaxConcurrency:   cfg.MaxConcurrency,
			DefaultModel:     domain.ModelType(cfg.DefaultModel),
		})
	}); err != nil {
		return nil, fmt.Errorf("failed to provide orchestrator: %w", err)
	}
	if err := container.Provide(export.NewExporter); err != nil {
		return nil, fmt.Errorf("failed to provide exporter: %w", err)
	}

	return container, nil
}
