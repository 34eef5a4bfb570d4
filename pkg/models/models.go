package models

import (
	"strings"
	"time"
)

// Program identifies the treatment program an admission episode belongs to.
type Program string

const (
	ProgramResidential  Program = "residential"
	ProgramPHPRoomBoard Program = "php_room_board"
	ProgramOther        Program = "other"
)

// RespondentRecord is one normalized survey response: a name key for
// linkage, the assessment date, and the full set of per-item answers.
type RespondentRecord struct {
	NameKey        string             `json:"name_key"`
	RawName        string             `json:"raw_name"`
	AssessDate     time.Time          `json:"assess_date"`
	Cottage        string             `json:"cottage,omitempty"`
	Items          map[string]float64 `json:"items"`
	EnteredID      string             `json:"entered_id,omitempty"`
	EnteredEpisode string             `json:"entered_episode,omitempty"`
}

// AdmissionEpisode is one continuous admission-to-discharge treatment
// period from the admissions registry. A person may own several.
type AdmissionEpisode struct {
	NameKey       string    `json:"name_key"`
	PatientID     string    `json:"patient_id"`
	EpisodeNumber string    `json:"episode_number"`
	AdmissionDate time.Time `json:"admission_date"`
	DischargeDate time.Time `json:"discharge_date"`
	Program       Program   `json:"program"`
}

// Contains reports whether d falls inside the episode's admission window,
// inclusive on both ends.
func (e AdmissionEpisode) Contains(d time.Time) bool {
	return !d.Before(e.AdmissionDate) && !d.After(e.DischargeDate)
}

// ReconcileOutcome classifies a reconciliation result.
type ReconcileOutcome string

const (
	OutcomeMatched   ReconcileOutcome = "matched"
	OutcomeUnmatched ReconcileOutcome = "unmatched"
)

// ReconciliationResult pairs a respondent with the episode selected for it,
// if any, plus the audit flags comparing staff-entered identifiers against
// the derived ones.
type ReconciliationResult struct {
	Respondent            RespondentRecord  `json:"respondent"`
	Episode               *AdmissionEpisode `json:"episode,omitempty"`
	Outcome               ReconcileOutcome  `json:"outcome"`
	IDMatchesEntered      bool              `json:"id_matches_entered"`
	EpisodeMatchesEntered bool              `json:"episode_matches_entered"`
}

// NeedsReview reports whether staff-entered identifiers disagree with the
// reconciler-derived ones. It is a data-quality flag for human reviewers,
// orthogonal to the matched/unmatched outcome.
func (r ReconciliationResult) NeedsReview() bool {
	return !r.IDMatchesEntered || !r.EpisodeMatchesEntered
}

// ScoredRecord is a matched reconciliation result plus its computed
// subscale scores, keyed by subscale name.
type ScoredRecord struct {
	ReconciliationResult
	Scores map[string]float64 `json:"scores"`
}

// RunSummary is the audit record for one batch run.
type RunSummary struct {
	BatchID      string    `json:"batch_id"`
	BatchDate    time.Time `json:"batch_date"`
	ErrorRecords int       `json:"error_records"`
	TotalRecords int       `json:"total_records"`
	ErrorRatio   float64   `json:"error_ratio"`
}

// NameKey builds the normalized linkage key from free-text last and first
// names: trimmed, joined with a comma, case-folded.
func NameKey(last, first string) string {
	return strings.ToLower(strings.TrimSpace(last) + "," + strings.TrimSpace(first))
}

// DateOnly truncates t to date precision, dropping any time-of-day carried
// in from spreadsheet cells.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
