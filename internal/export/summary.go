package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/savegress/outcomesync/internal/reconcile"
	"github.com/savegress/outcomesync/pkg/models"
)

// Summary builds the run-level audit record. The batch ID tags the run-log
// row only; it never appears in output tables, so re-running on identical
// inputs yields byte-identical files.
func Summary(results []models.ReconciliationResult, asOf time.Time) models.RunSummary {
	unmatched := 0
	for _, res := range results {
		if res.Outcome != models.OutcomeMatched {
			unmatched++
		}
	}

	return models.RunSummary{
		BatchID:      uuid.New().String(),
		BatchDate:    asOf,
		ErrorRecords: unmatched,
		TotalRecords: len(results),
		ErrorRatio:   reconcile.ErrorRatio(results),
	}
}
