package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"CardioSense/internal/config"
	"CardioSense/internal/delivery"
	"CardioSense/internal/domain"
	"CardioSense/internal/infrastructure/gateway"
	"CardioSense/internal/infrastructure/probe"
	"CardioSense/internal/infrastructure/storage"
	"CardioSense/internal/logging"
	"CardioSense/internal/normalize"
	"CardioSense/internal/ports"
	"CardioSense/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	orchestrator *usecase.Orchestrator
	warmup       *usecase.Warmup
	db           *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := gateway.NewClient(cfg.API.BaseURL, cfg.API.InferenceTimeout(), cfg.API.DeliveryTimeout())
	normalizer := normalize.New(domain.RiskThresholds{
		Low:  cfg.Risk.LowThreshold,
		High: cfg.Risk.HighThreshold,
	})
	coordinator := delivery.New(client, cfg.Delivery.RestrictedPhrases, baseLogger.With("component", "delivery"))

	var (
		history ports.HistoryRepository
		db      *sql.DB
	)
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("history store unavailable", "error", err)
		} else {
			db = opened
			history = storage.NewPostgresHistory(db)
		}
	}

	orchestrator := usecase.NewOrchestrator(usecase.Deps{
		Client:      client,
		Normalizer:  normalizer,
		Coordinator: coordinator,
		History:     history,
		Logger:      baseLogger.With("component", "orchestrator"),
	})

	var warmup *usecase.Warmup
	if cfg.Warmup.Enabled {
		warmup = usecase.NewWarmup(
			probe.NewPinger(cfg.Warmup.Interval()),
			client,
			baseLogger.With("component", "warmup"),
		)
	}

	return &Application{
		cfg:          cfg,
		logger:       baseLogger,
		orchestrator: orchestrator,
		warmup:       warmup,
		db:           db,
	}
}

// RunOptions parameterize one prediction run.
type RunOptions struct {
	InputPath  string
	Selection  domain.ModelSelection
	OutputDir  string
	ExportXLSX bool
	Email      bool
}

// Run performs one full pipeline pass: load input, predict, export the
// artifact(s), optionally email the report.
func (a *Application) Run(ctx context.Context, opts RunOptions) error {
	defer a.close()

	input, personal, err := LoadPatientFile(opts.InputPath)
	if err != nil {
		return err
	}

	if a.warmup != nil {
		if err := a.warmup.Start(ctx); err != nil {
			a.logger.Warn("warmup probe not started", "error", err)
		} else {
			defer func() { _ = a.warmup.Stop(ctx) }()
		}
	}

	a.logger.Info("requesting prediction", "selection", string(opts.Selection))
	if err := a.orchestrator.Submit(ctx, input, opts.Selection, personal); err != nil {
		return err
	}
	if a.orchestrator.State() == usecase.StateFailed {
		return errors.New(a.orchestrator.FailureMessage())
	}

	result, _ := a.orchestrator.Result()
	for _, rec := range result.Records {
		a.logger.Info("prediction",
			"model", rec.ModelName,
			"positive", rec.PredictedPositive,
			"probability", rec.Probability,
			"risk", rec.RiskTier.String(),
		)
	}
	if result.AgreementNote != "" {
		a.logger.Info("model agreement", "note", result.AgreementNote)
	}

	if err := a.export(opts); err != nil {
		return err
	}

	if opts.Email {
		outcome, err := a.orchestrator.Deliver(ctx)
		if err != nil {
			return fmt.Errorf("deliver report: %w", err)
		}
		switch outcome.Status {
		case domain.DeliverySuccess:
			a.logger.Info("report delivered", "message", outcome.Message)
		case domain.DeliveryRestricted:
			a.logger.Warn("delivery restricted", "message", outcome.Message)
		default:
			a.logger.Error("delivery failed", "message", outcome.Message)
		}
	}

	return nil
}

func (a *Application) export(opts RunOptions) error {
	artifact, err := a.orchestrator.ExportPDF()
	if err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	if err := a.writeArtifact(opts.OutputDir, artifact); err != nil {
		return err
	}

	if opts.ExportXLSX {
		workbook, err := a.orchestrator.ExportXLSX()
		if err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		if err := a.writeArtifact(opts.OutputDir, workbook); err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) writeArtifact(dir string, artifact usecase.Artifact) error {
	path := filepath.Join(dir, artifact.Name)
	if err := os.WriteFile(path, artifact.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", artifact.Name, err)
	}
	a.logger.Info("artifact written", "path", path, "bytes", len(artifact.Content))
	return nil
}

func (a *Application) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close history store", "error", err)
		}
	}
}
