// Package export splits the reconciled, scored dataset into the flat files
// the EHR import templates expect: one CSV per instrument plus an
// unmatched/needs-review file, with date-stamped filenames.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/savegress/outcomesync/internal/instrument"
	"github.com/savegress/outcomesync/pkg/models"
)

// identityColumns lead every output table.
var identityColumns = []string{"name", "pid", "epn", "assess_date"}

// reviewPlaceholder stands in for identifiers the reconciler could not
// derive; the real values are filled in by hand after name correction.
const reviewPlaceholder = "NEEDS REVIEW"

// scoreColumn maps a computed score onto its output header. Some import
// templates name the score column themselves (ARI wants "Total").
type scoreColumn struct {
	Key    string
	Header string
}

var scoreColumns = map[instrument.Instrument][]scoreColumn{
	instrument.DERS: {
		{"ders_overall", "ders_overall"},
		{"ders_clarity", "ders_clarity"},
		{"ders_goals", "ders_goals"},
		{"ders_impulse", "ders_impulse"},
		{"ders_strategies", "ders_strategies"},
		{"ders_nonacceptance", "ders_nonacceptance"},
	},
	instrument.ARI: {
		{"ari", "Total"},
	},
	instrument.DTS: {
		{"dts_overall", "dts_overall"},
		{"dts_tolerance", "dts_tolerance"},
		{"dts_appraisal", "dts_appraisal"},
		{"dts_absorption", "dts_absorption"},
		{"dts_regulation", "dts_regulation"},
	},
	instrument.CEAS: {
		{"ceas_self_engagement", "ceas_self_engagement"},
		{"ceas_self_action", "ceas_self_action"},
		{"ceas_self", "ceas_self"},
		{"ceas_to_engagement", "ceas_to_engagement"},
		{"ceas_to_action", "ceas_to_action"},
		{"ceas_to", "ceas_to"},
		{"ceas_from_engagement", "ceas_from_engagement"},
		{"ceas_from_action", "ceas_from_action"},
		{"ceas_from", "ceas_from"},
	},
	instrument.CAMM: {
		{"camm", "camm"},
	},
}

const (
	cellDateFormat = "2006-01-02"
	fileDateFormat = "01.02.2006"
)

// WriteAll writes one CSV per instrument for the scored records plus the
// unmatched/needs-review CSV, and returns the paths written. Filenames are
// stamped with the run's reference date, matching the import folder
// convention.
func WriteAll(dir string, asOf time.Time, scored []models.ScoredRecord, results []models.ReconciliationResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, code := range instrument.All {
		meta, _ := instrument.Lookup(code)
		headers, rows := InstrumentTable(meta, scored)

		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", meta.FilePrefix, asOf.Format(fileDateFormat)))
		if err := writeCSV(path, headers, rows); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	headers, rows := UnmatchedTable(results)
	path := filepath.Join(dir, fmt.Sprintf("not_matched_%s.csv", asOf.Format(fileDateFormat)))
	if err := writeCSV(path, headers, rows); err != nil {
		return paths, err
	}
	paths = append(paths, path)

	return paths, nil
}

// InstrumentTable builds one instrument's output table: identity columns,
// that instrument's items, its computed scores, then the constant columns
// its import template requires. Rows sort by (name, assessment date).
func InstrumentTable(meta instrument.Meta, scored []models.ScoredRecord) ([]string, [][]string) {
	headers := append([]string{}, identityColumns...)
	headers = append(headers, meta.Items...)
	for _, sc := range scoreColumns[meta.Code] {
		headers = append(headers, sc.Header)
	}
	for _, c := range meta.Constants {
		headers = append(headers, c.Name)
	}

	ordered := append([]models.ScoredRecord{}, scored...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Respondent, ordered[j].Respondent
		if a.NameKey != b.NameKey {
			return a.NameKey < b.NameKey
		}
		return a.AssessDate.Before(b.AssessDate)
	})

	rows := make([][]string, 0, len(ordered))
	for _, rec := range ordered {
		row := make([]string, 0, len(headers))
		row = append(row,
			rec.Respondent.RawName,
			rec.Episode.PatientID,
			rec.Episode.EpisodeNumber,
			rec.Respondent.AssessDate.Format(cellDateFormat),
		)
		for _, id := range meta.Items {
			row = append(row, formatCell(rec.Respondent.Items, id))
		}
		for _, sc := range scoreColumns[meta.Code] {
			row = append(row, formatCell(rec.Scores, sc.Key))
		}
		for _, c := range meta.Constants {
			row = append(row, c.Value)
		}
		rows = append(rows, row)
	}

	return headers, rows
}

// UnmatchedTable builds the needs-review table: raw identity fields with
// placeholder identifiers, the staff-entered values, and the full item set
// so the rows can be re-imported once the names are corrected. Row order is
// the reconciler's triage order.
func UnmatchedTable(results []models.ReconciliationResult) ([]string, [][]string) {
	items := instrument.AllItems()

	headers := append([]string{}, identityColumns...)
	headers = append(headers, "cottage", "entered_pid", "entered_epn")
	headers = append(headers, items...)

	var rows [][]string
	for _, res := range results {
		if res.Outcome == models.OutcomeMatched {
			continue
		}
		row := make([]string, 0, len(headers))
		row = append(row,
			res.Respondent.RawName,
			reviewPlaceholder,
			reviewPlaceholder,
			res.Respondent.AssessDate.Format(cellDateFormat),
			res.Respondent.Cottage,
			res.Respondent.EnteredID,
			res.Respondent.EnteredEpisode,
		)
		for _, id := range items {
			row = append(row, formatCell(res.Respondent.Items, id))
		}
		rows = append(rows, row)
	}

	return headers, rows
}

func formatCell(values map[string]float64, key string) string {
	v, ok := values[key]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
