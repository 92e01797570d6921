package main

import (
	"context"
	"flag"
	"os"

	"CardioSense/internal/app"
	"CardioSense/internal/config"
	"CardioSense/internal/logging"
)

func main() {
	var (
		inputPath = flag.String("input", "patient.yaml", "patient input YAML file")
		model     = flag.String("model", "both", "model to query: logistic, randomforest or both")
		outputDir = flag.String("out", ".", "directory for exported report artifacts")
		withXLSX  = flag.Bool("xlsx", false, "additionally export the report as a workbook")
		email     = flag.Bool("email", false, "email the report to the address in the input file")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	selection, err := app.ParseSelection(*model)
	if err != nil {
		logger.Error("invalid model flag", "error", err)
		os.Exit(2)
	}

	application := app.New(cfg, logger)

	err = application.Run(ctx, app.RunOptions{
		InputPath:  *inputPath,
		Selection:  selection,
		OutputDir:  *outputDir,
		ExportXLSX: *withXLSX,
		Email:      *email,
	})
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
