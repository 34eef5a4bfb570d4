// Package survey turns a raw survey export into canonical respondent
// records: a name key for linkage, the assessment date, and float64 item
// responses keyed by the fixed instrument vocabulary.
package survey

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/savegress/outcomesync/internal/instrument"
	"github.com/savegress/outcomesync/internal/tabular"
	"github.com/savegress/outcomesync/pkg/models"
)

// adminColumns are the survey-platform metadata columns at the head of every
// export. They are validated to guard against column reordering, then
// dropped; nothing downstream uses them.
var adminColumns = []string{
	"Respondent ID",
	"Collector ID",
	"Start Date",
	"End Date",
	"IP Address",
	"Email Address",
	"First Name",
	"Last Name",
	"Custom Data 1",
	"Program",
}

const numAdminColumns = 10

// Respondent-entered and staff-entered fields follow the admin block in
// fixed positions. Their headers are free question text in the export, so
// they are addressed positionally.
const (
	colFirstName = iota + numAdminColumns
	colLastName
	colAssessDate
	colCottage
	colEnteredID
	colEnteredEpisode
	colFirstItem
)

// Options controls normalization policy.
type Options struct {
	// DropIncomplete excludes rows with any missing item response. The
	// exclusion is counted in Stats, never silent.
	DropIncomplete bool
}

// DefaultOptions returns the default normalization policy.
func DefaultOptions() Options {
	return Options{DropIncomplete: true}
}

// Stats reports what normalization did with the raw rows.
type Stats struct {
	Total   int `json:"total"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// Normalize converts the raw survey table into respondent records, sorted by
// (name key, assessment date) ascending. The first data row is the survey
// platform's answer-label sub-header and is skipped.
func Normalize(t *tabular.Table, opts Options) ([]models.RespondentRecord, Stats, error) {
	var stats Stats

	if err := validateSchema(t); err != nil {
		return nil, stats, err
	}

	items := instrument.AllItems()
	records := make([]models.RespondentRecord, 0, len(t.Rows))

	for row := 1; row < len(t.Rows); row++ {
		stats.Total++

		first := t.Cell(row, colFirstName)
		last := t.Cell(row, colLastName)
		if first == "" && last == "" {
			// Blank padding row, or a response with no identity at all.
			stats.Dropped++
			continue
		}

		assessDate, err := tabular.ParseDate(t.Cell(row, colAssessDate))
		if err != nil {
			return nil, stats, fmt.Errorf("survey row %d: %w", row+1, err)
		}

		rec := models.RespondentRecord{
			NameKey:        models.NameKey(last, first),
			RawName:        last + "," + first,
			AssessDate:     assessDate,
			Cottage:        t.Cell(row, colCottage),
			EnteredID:      t.Cell(row, colEnteredID),
			EnteredEpisode: t.Cell(row, colEnteredEpisode),
			Items:          make(map[string]float64, len(items)),
		}

		missing := false
		for i, id := range items {
			cell := t.Cell(row, colFirstItem+i)
			if cell == "" {
				missing = true
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, stats, fmt.Errorf("survey row %d, item %s: bad response %q", row+1, id, cell)
			}
			rec.Items[id] = v
		}

		if missing && opts.DropIncomplete {
			stats.Dropped++
			continue
		}

		records = append(records, rec)
		stats.Kept++
	}

	// Episode matching relies on sorted, deterministic iteration order.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].NameKey != records[j].NameKey {
			return records[i].NameKey < records[j].NameKey
		}
		return records[i].AssessDate.Before(records[j].AssessDate)
	})

	return records, stats, nil
}

func validateSchema(t *tabular.Table) error {
	for i, want := range adminColumns {
		if i >= len(t.Headers) || t.Headers[i] != want {
			return &tabular.MalformedSchemaError{Column: want}
		}
	}
	wantCols := colFirstItem + len(instrument.AllItems())
	if len(t.Headers) < wantCols {
		return &tabular.MalformedSchemaError{
			Detail: fmt.Sprintf("survey export has %d columns, expected %d", len(t.Headers), wantCols),
		}
	}
	return nil
}
