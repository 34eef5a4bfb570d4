// Package reconcile matches survey respondents to admissions registry
// episodes. Linkage is exact case-insensitive name-key equality plus
// date-range containment of the assessment date; there is deliberately no
// phonetic or edit-distance fallback, so a misspelled name surfaces in the
// unmatched bucket for manual correction instead of guessing.
package reconcile

import (
	"sort"
	"strings"

	"github.com/savegress/outcomesync/pkg/models"
)

// Reconciler holds the name-key index over registry episodes. Build it once
// per run; it is read-only during reconciliation.
type Reconciler struct {
	index map[string][]models.AdmissionEpisode
}

// New builds a reconciler from the loaded registry. A person may own
// several episodes from repeat admissions; all are indexed.
func New(episodes []models.AdmissionEpisode) *Reconciler {
	index := make(map[string][]models.AdmissionEpisode)
	for _, ep := range episodes {
		index[ep.NameKey] = append(index[ep.NameKey], ep)
	}
	return &Reconciler{index: index}
}

// Reconcile classifies every respondent record. Absence of a match is a
// normal outcome represented in the data, never an error: unmatched rows
// keep their raw name untouched so staff can correct spelling by hand.
//
// Results are ordered for triage: unmatched rows first, then rows whose
// staff-entered ID disagrees with the derived one, then by name key.
func (r *Reconciler) Reconcile(respondents []models.RespondentRecord) []models.ReconciliationResult {
	results := make([]models.ReconciliationResult, 0, len(respondents))

	for _, resp := range respondents {
		res := models.ReconciliationResult{
			Respondent: resp,
			Outcome:    models.OutcomeUnmatched,
		}

		if ep, ok := r.selectEpisode(resp); ok {
			res.Episode = &ep
			res.Outcome = models.OutcomeMatched
		}

		res.IDMatchesEntered, res.EpisodeMatchesEntered = compareEntered(res)
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Outcome != models.OutcomeMatched) != (b.Outcome != models.OutcomeMatched) {
			return a.Outcome != models.OutcomeMatched
		}
		if a.IDMatchesEntered != b.IDMatchesEntered {
			return !a.IDMatchesEntered
		}
		return a.Respondent.NameKey < b.Respondent.NameKey
	})

	return results
}

// selectEpisode finds the candidate episode whose admission window contains
// the assessment date. When overlapping admissions both contain it, the one
// with the latest admission date wins: assessments administered during
// active treatment belong to the current admission.
func (r *Reconciler) selectEpisode(resp models.RespondentRecord) (models.AdmissionEpisode, bool) {
	var best models.AdmissionEpisode
	found := false

	for _, ep := range r.index[resp.NameKey] {
		if !ep.Contains(resp.AssessDate) {
			continue
		}
		if !found || ep.AdmissionDate.After(best.AdmissionDate) {
			best = ep
			found = true
		}
	}

	return best, found
}

// compareEntered checks the staff-entered identifier and episode number
// against the reconciler-derived ones. Disagreement is a data-quality signal
// for reviewers, not a failure. A blank entered value only agrees when there
// is nothing derived to disagree with.
func compareEntered(res models.ReconciliationResult) (idOK, epOK bool) {
	entered := strings.TrimSpace(res.Respondent.EnteredID)
	enteredEp := strings.TrimSpace(res.Respondent.EnteredEpisode)

	if res.Episode == nil {
		return entered == "", enteredEp == ""
	}

	idOK = entered == "" || strings.EqualFold(entered, res.Episode.PatientID)
	epOK = enteredEp == "" || strings.EqualFold(enteredEp, res.Episode.EpisodeNumber)
	return idOK, epOK
}

// ErrorRatio is the share of respondents that could not be reconciled.
func ErrorRatio(results []models.ReconciliationResult) float64 {
	if len(results) == 0 {
		return 0
	}
	unmatched := 0
	for _, res := range results {
		if res.Outcome != models.OutcomeMatched {
			unmatched++
		}
	}
	return float64(unmatched) / float64(len(results))
}
