// Package pipeline runs the whole batch: normalize the survey export, load
// the admissions registry, reconcile, score the matched records, and write
// the import-ready files. Single-threaded and synchronous; a run either
// completes deterministically or fails fast on malformed input.
package pipeline

import (
	"fmt"
	"time"

	"github.com/savegress/outcomesync/internal/config"
	"github.com/savegress/outcomesync/internal/export"
	"github.com/savegress/outcomesync/internal/reconcile"
	"github.com/savegress/outcomesync/internal/registry"
	"github.com/savegress/outcomesync/internal/scoring"
	"github.com/savegress/outcomesync/internal/survey"
	"github.com/savegress/outcomesync/internal/tabular"
	"github.com/savegress/outcomesync/pkg/models"
)

// Result is what one completed run produced.
type Result struct {
	Summary      models.RunSummary
	SurveyStats  survey.Stats
	Results      []models.ReconciliationResult
	Scored       []models.ScoredRecord
	PathsWritten []string
}

// Run executes the batch described by cfg.
func Run(cfg *config.Config) (*Result, error) {
	asOf, err := referenceDate(cfg)
	if err != nil {
		return nil, err
	}

	surveyTable, err := tabular.Read(cfg.Inputs.Survey)
	if err != nil {
		return nil, fmt.Errorf("survey input: %w", err)
	}
	respondents, stats, err := survey.Normalize(surveyTable, survey.Options{
		DropIncomplete: !cfg.Normalize.KeepIncomplete,
	})
	if err != nil {
		return nil, fmt.Errorf("survey input: %w", err)
	}

	registryTable, err := tabular.Read(cfg.Inputs.Registry)
	if err != nil {
		return nil, fmt.Errorf("admissions input: %w", err)
	}
	episodes, err := registry.Load(registryTable, registry.Options{
		Programs: cfg.Registry.Programs,
		AsOf:     asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("admissions input: %w", err)
	}

	results := reconcile.New(episodes).Reconcile(respondents)

	var scored []models.ScoredRecord
	for _, res := range results {
		if res.Outcome == models.OutcomeMatched {
			scored = append(scored, scoring.Score(res))
		}
	}

	paths, err := export.WriteAll(cfg.Output.Dir, asOf, scored, results)
	if err != nil {
		return nil, err
	}
	if cfg.Output.XMLBatches {
		xmlPaths, err := export.WriteXMLBatches(cfg.Output.Dir, asOf, scored)
		if err != nil {
			return nil, err
		}
		paths = append(paths, xmlPaths...)
	}

	return &Result{
		Summary:      export.Summary(results, asOf),
		SurveyStats:  stats,
		Results:      results,
		Scored:       scored,
		PathsWritten: paths,
	}, nil
}

func referenceDate(cfg *config.Config) (time.Time, error) {
	if cfg.Registry.AsOf == "" {
		return models.DateOnly(time.Now()), nil
	}
	t, err := time.Parse("2006-01-02", cfg.Registry.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as_of date %q: %w", cfg.Registry.AsOf, err)
	}
	return models.DateOnly(t), nil
}
