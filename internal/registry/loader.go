// Package registry loads the admissions report into canonical admission
// episodes: one row per continuous admission-to-discharge period, keyed by
// normalized client name.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/savegress/outcomesync/internal/tabular"
	"github.com/savegress/outcomesync/pkg/models"
)

// headerRow is the zero-based data row holding the real column headers. The
// admissions report is a Crystal Reports export with banner rows above it.
const headerRow = 5

var requiredColumns = []string{"Client Name", "PID", "Adm Date", "Disc. Date", "EP#", "Program"}

// programNames maps the report's Program labels onto the canonical enum.
// Only allow-listed programs are loaded; everything else is excluded.
var programNames = map[string]models.Program{
	"Residential Program":          models.ProgramResidential,
	"PHP + Room and Board Program": models.ProgramPHPRoomBoard,
}

// Options controls registry loading.
type Options struct {
	// Programs overrides the default program allow-list.
	Programs []string
	// AsOf is the run's reference date, used as the discharge date for
	// still-admitted clients. Zero means today.
	AsOf time.Time
}

// Load converts the raw admissions report into admission episodes filtered
// to the programs of interest, sorted by admission date descending so the
// most recent admission is always discoverable first.
func Load(t *tabular.Table, opts Options) ([]models.AdmissionEpisode, error) {
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = models.DateOnly(time.Now())
	}

	allowed := programNames
	if len(opts.Programs) > 0 {
		allowed = make(map[string]models.Program, len(opts.Programs))
		for _, name := range opts.Programs {
			prog, ok := programNames[name]
			if !ok {
				prog = models.ProgramOther
			}
			allowed[name] = prog
		}
	}

	if err := t.Rebase(headerRow); err != nil {
		return nil, &tabular.MalformedSchemaError{Detail: err.Error()}
	}

	cols := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		i, err := t.Col(name)
		if err != nil {
			return nil, err
		}
		cols[name] = i
	}

	var episodes []models.AdmissionEpisode
	for row := range t.Rows {
		program, ok := allowed[t.Cell(row, cols["Program"])]
		if !ok {
			continue
		}

		name := t.Cell(row, cols["Client Name"])
		if name == "" {
			continue
		}

		admDate, err := tabular.ParseDate(t.Cell(row, cols["Adm Date"]))
		if err != nil {
			return nil, fmt.Errorf("admissions row %d: %w", row+1, err)
		}

		// An empty discharge date means the client is still admitted.
		discDate := asOf
		if cell := t.Cell(row, cols["Disc. Date"]); cell != "" {
			discDate, err = tabular.ParseDate(cell)
			if err != nil {
				return nil, fmt.Errorf("admissions row %d: %w", row+1, err)
			}
		}

		episodes = append(episodes, models.AdmissionEpisode{
			NameKey:       nameKey(name),
			PatientID:     t.Cell(row, cols["PID"]),
			EpisodeNumber: t.Cell(row, cols["EP#"]),
			AdmissionDate: admDate,
			DischargeDate: discDate,
			Program:       program,
		})
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].AdmissionDate.After(episodes[j].AdmissionDate)
	})

	return episodes, nil
}

// nameKey normalizes the report's "Last,First" client name into the linkage
// key, tolerating stray whitespace around the comma.
func nameKey(clientName string) string {
	last, first, found := strings.Cut(clientName, ",")
	if !found {
		return strings.ToLower(strings.TrimSpace(clientName))
	}
	return models.NameKey(last, first)
}
