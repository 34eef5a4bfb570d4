package reconcile

import (
	"testing"
	"time"

	"github.com/savegress/outcomesync/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func episode(key, pid, epn string, adm, disc time.Time) models.AdmissionEpisode {
	return models.AdmissionEpisode{
		NameKey:       key,
		PatientID:     pid,
		EpisodeNumber: epn,
		AdmissionDate: adm,
		DischargeDate: disc,
		Program:       models.ProgramResidential,
	}
}

func respondent(key string, assess time.Time) models.RespondentRecord {
	return models.RespondentRecord{
		NameKey:    key,
		RawName:    key,
		AssessDate: assess,
	}
}

func TestReconcile_MatchByDateContainment(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("doe,jane", "1001", "E1", date(2024, 1, 1), date(2024, 6, 1)),
	})

	results := r.Reconcile([]models.RespondentRecord{
		respondent("doe,jane", date(2024, 3, 10)),
	})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Outcome != models.OutcomeMatched {
		t.Fatalf("expected matched, got %s", res.Outcome)
	}
	if res.Episode == nil || res.Episode.EpisodeNumber != "E1" {
		t.Errorf("expected episode E1, got %+v", res.Episode)
	}
}

func TestReconcile_NoRegistryEntry(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("smith,john", "1002", "E1", date(2024, 1, 1), date(2024, 6, 1)),
	})

	resp := respondent("smyth,john", date(2024, 2, 1))
	resp.RawName = "Smyth,John"
	results := r.Reconcile([]models.RespondentRecord{resp})

	if results[0].Outcome != models.OutcomeUnmatched {
		t.Errorf("misspelled name should not match, got %s", results[0].Outcome)
	}
	if results[0].Episode != nil {
		t.Error("unmatched result should carry no episode")
	}
	// The raw name must survive untouched so staff can correct it by hand.
	if results[0].Respondent.RawName != "Smyth,John" {
		t.Errorf("raw name modified: %q", results[0].Respondent.RawName)
	}
}

func TestReconcile_NameHitOutsideWindow(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("doe,jane", "1001", "E1", date(2023, 1, 1), date(2023, 6, 1)),
	})

	results := r.Reconcile([]models.RespondentRecord{
		respondent("doe,jane", date(2024, 3, 10)),
	})

	if results[0].Outcome != models.OutcomeUnmatched {
		t.Errorf("a name match without a treatment-window match is not usable, got %s", results[0].Outcome)
	}
}

func TestReconcile_OverlappingEpisodesPicksLatestAdmission(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("doe,jane", "1001", "E1", date(2024, 1, 1), date(2024, 6, 1)),
		episode("doe,jane", "1001", "E2", date(2024, 2, 15), date(2024, 6, 1)),
	})

	results := r.Reconcile([]models.RespondentRecord{
		respondent("doe,jane", date(2024, 3, 10)),
	})

	if results[0].Episode == nil || results[0].Episode.EpisodeNumber != "E2" {
		t.Errorf("expected latest admission E2, got %+v", results[0].Episode)
	}
}

func TestReconcile_WindowBoundsInclusive(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("doe,jane", "1001", "E1", date(2024, 1, 1), date(2024, 6, 1)),
	})

	for _, assess := range []time.Time{date(2024, 1, 1), date(2024, 6, 1)} {
		results := r.Reconcile([]models.RespondentRecord{respondent("doe,jane", assess)})
		if results[0].Outcome != models.OutcomeMatched {
			t.Errorf("assessment on %s should match inclusively", assess.Format("2006-01-02"))
		}
	}
}

func TestReconcile_EnteredIdentifierFlags(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("doe,jane", "1001", "E1", date(2024, 1, 1), date(2024, 6, 1)),
	})

	tests := []struct {
		name       string
		enteredID  string
		enteredEp  string
		wantIDOK   bool
		wantEpOK   bool
		wantReview bool
	}{
		{"agreement", "1001", "E1", true, true, false},
		{"id mismatch", "9999", "E1", false, true, true},
		{"episode mismatch", "1001", "E2", true, false, true},
		{"blank entered values", "", "", true, true, false},
		{"case insensitive", "1001", "e1", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := respondent("doe,jane", date(2024, 3, 10))
			resp.EnteredID = tt.enteredID
			resp.EnteredEpisode = tt.enteredEp

			res := r.Reconcile([]models.RespondentRecord{resp})[0]
			if res.Outcome != models.OutcomeMatched {
				t.Fatalf("expected matched, got %s", res.Outcome)
			}
			if res.IDMatchesEntered != tt.wantIDOK {
				t.Errorf("IDMatchesEntered = %v, want %v", res.IDMatchesEntered, tt.wantIDOK)
			}
			if res.EpisodeMatchesEntered != tt.wantEpOK {
				t.Errorf("EpisodeMatchesEntered = %v, want %v", res.EpisodeMatchesEntered, tt.wantEpOK)
			}
			if res.NeedsReview() != tt.wantReview {
				t.Errorf("NeedsReview = %v, want %v", res.NeedsReview(), tt.wantReview)
			}
		})
	}
}

func TestReconcile_TriageOrdering(t *testing.T) {
	r := New([]models.AdmissionEpisode{
		episode("adams,amy", "1001", "E1", date(2024, 1, 1), date(2024, 6, 1)),
		episode("brown,bob", "1002", "E1", date(2024, 1, 1), date(2024, 6, 1)),
	})

	confirmed := respondent("adams,amy", date(2024, 3, 1))
	mismatched := respondent("brown,bob", date(2024, 3, 1))
	mismatched.EnteredID = "wrong"
	unmatched := respondent("zzz,unknown", date(2024, 3, 1))

	results := r.Reconcile([]models.RespondentRecord{confirmed, mismatched, unmatched})

	got := []string{
		results[0].Respondent.NameKey,
		results[1].Respondent.NameKey,
		results[2].Respondent.NameKey,
	}
	want := []string{"zzz,unknown", "brown,bob", "adams,amy"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("triage order = %v, want %v", got, want)
		}
	}
}

func TestErrorRatio(t *testing.T) {
	var results []models.ReconciliationResult
	for i := 0; i < 100; i++ {
		outcome := models.OutcomeMatched
		if i < 7 {
			outcome = models.OutcomeUnmatched
		}
		results = append(results, models.ReconciliationResult{Outcome: outcome})
	}

	if ratio := ErrorRatio(results); ratio != 0.07 {
		t.Errorf("error ratio = %v, want 0.07", ratio)
	}

	if ratio := ErrorRatio(nil); ratio != 0 {
		t.Errorf("empty batch ratio = %v, want 0", ratio)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	episodes := []models.AdmissionEpisode{
		episode("doe,jane", "1001", "E1", date(2024, 1, 1), date(2024, 3, 1)),
		episode("doe,jane", "1001", "E2", date(2024, 4, 1), date(2024, 8, 1)),
		episode("roe,rick", "1003", "E1", date(2024, 1, 1), date(2024, 8, 1)),
	}
	respondents := []models.RespondentRecord{
		respondent("doe,jane", date(2024, 5, 1)),
		respondent("roe,rick", date(2024, 2, 1)),
		respondent("noone,nancy", date(2024, 2, 1)),
	}

	first := New(episodes).Reconcile(respondents)
	for i := 0; i < 5; i++ {
		again := New(episodes).Reconcile(respondents)
		if len(again) != len(first) {
			t.Fatal("result length changed between runs")
		}
		for j := range first {
			if first[j].Outcome != again[j].Outcome ||
				first[j].Respondent.NameKey != again[j].Respondent.NameKey {
				t.Fatalf("run %d diverged at result %d", i, j)
			}
		}
	}
}
