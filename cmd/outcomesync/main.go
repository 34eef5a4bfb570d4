package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/savegress/outcomesync/internal/config"
	"github.com/savegress/outcomesync/internal/pipeline"
	"github.com/savegress/outcomesync/internal/runlog"
)

func main() {
	var (
		surveyPath   = flag.String("survey", "", "path to the raw survey export (.csv or .xlsx)")
		registryPath = flag.String("registry", "", "path to the admissions by date range report")
		outDir       = flag.String("out", "", "output directory for import-ready files")
		configPath   = flag.String("config", "", "path to config file")
		asOf         = flag.String("as-of", "", "reference date override (YYYY-MM-DD)")
		xmlBatches   = flag.Bool("xml", false, "also emit Avatar XML option batches")
	)
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *surveyPath != "" {
		cfg.Inputs.Survey = *surveyPath
	}
	if *registryPath != "" {
		cfg.Inputs.Registry = *registryPath
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *asOf != "" {
		cfg.Registry.AsOf = *asOf
	}
	if *xmlBatches {
		cfg.Output.XMLBatches = true
	}

	if cfg.Inputs.Survey == "" || cfg.Inputs.Registry == "" {
		log.Fatal("both -survey and -registry inputs are required")
	}

	log.Println("Starting OutcomeSync batch...")

	result, err := pipeline.Run(cfg)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}

	log.Printf("Normalized %d survey rows (%d kept, %d dropped as incomplete)",
		result.SurveyStats.Total, result.SurveyStats.Kept, result.SurveyStats.Dropped)
	log.Printf("Reconciled %d respondents: %d unmatched (error ratio %.2f)",
		result.Summary.TotalRecords, result.Summary.ErrorRecords, result.Summary.ErrorRatio)
	for _, path := range result.PathsWritten {
		log.Printf("Wrote %s", path)
	}

	if cfg.RunLog.Enabled {
		appendRunLog(cfg, result)
	}

	log.Println("Batch complete")
}

func appendRunLog(cfg *config.Config, result *pipeline.Result) {
	l, err := runlog.Open(cfg.RunLog.Dir)
	if err != nil {
		log.Printf("Run log unavailable: %v", err)
		return
	}
	defer l.Close()

	if err := l.Append(context.Background(), result.Summary); err != nil {
		log.Printf("Failed to append run summary: %v", err)
		return
	}
	log.Printf("Run summary recorded (batch %s)", result.Summary.BatchID)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = os.Getenv("OUTCOMESYNC_CONFIG")
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Printf("Failed to load config from %s: %v, using defaults", path, err)
			return config.LoadFromEnv()
		}
		return cfg
	}
	return config.LoadFromEnv()
}
