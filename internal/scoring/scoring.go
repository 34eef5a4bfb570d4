// Package scoring applies the published scoring formulas of the outcome
// measures battery to matched respondent records. Every scorer is a pure
// function over the item responses; a missing response in a to-be-scored
// item set makes that score unavailable rather than silently zero.
package scoring

import (
	"fmt"

	"github.com/savegress/outcomesync/pkg/models"
)

// Subscale item sets. These are the instruments' published scoring keys and
// must not be edited without a new copy of the scoring manual.
var (
	dersClarity       = []string{"ders_1", "ders_2"}
	dersGoals         = []string{"ders_3", "ders_7", "ders_15"}
	dersImpulse       = []string{"ders_4", "ders_8", "ders_11"}
	dersStrategies    = []string{"ders_5", "ders_6", "ders_12", "ders_14", "ders_16"}
	dersNonacceptance = []string{"ders_9", "ders_10", "ders_13"}

	dtsTolerance  = []string{"dts_1", "dts_3", "dts_5"}
	dtsAppraisal  = []string{"dts_6", "dts_7", "dts_9", "dts_10", "dts_11", "dts_12"}
	dtsAbsorption = []string{"dts_2", "dts_4", "dts_15"}
	dtsRegulation = []string{"dts_8", "dts_13", "dts_14"}

	// CEAS items 3, 7 and 11 are filler items, not scored.
	ceasEngagement = []int{1, 2, 4, 5, 6, 8}
	ceasAction     = []int{9, 10, 12, 13}
)

// Score computes every available subscale score for one reconciled record.
// The pipeline applies it to matched results only; unmatched records are
// exported raw for manual correction and never scored.
func Score(res models.ReconciliationResult) models.ScoredRecord {
	scores := make(map[string]float64)
	items := res.Respondent.Items

	scoreDERS(items, scores)
	scoreARI(items, scores)
	scoreDTS(items, scores)
	scoreCEAS(items, scores)
	scoreCAMM(items, scores)

	return models.ScoredRecord{ReconciliationResult: res, Scores: scores}
}

// DERS-16 overall is the sum of all 16 items; each named subscale is the
// sum of its fixed item subset. Lower is better.
func scoreDERS(items map[string]float64, scores map[string]float64) {
	subscales := map[string][]string{
		"ders_overall":       numbered("ders", 1, 16),
		"ders_clarity":       dersClarity,
		"ders_goals":         dersGoals,
		"ders_impulse":       dersImpulse,
		"ders_strategies":    dersStrategies,
		"ders_nonacceptance": dersNonacceptance,
	}
	for name, ids := range subscales {
		v, ok := sum(items, ids)
		put(scores, name, v, ok)
	}
}

// ARI is the sum of items 1-6. Item 7, overall irritability, is
// informational only and excluded from the score.
func scoreARI(items map[string]float64, scores map[string]float64) {
	v, ok := sum(items, numbered("ari", 1, 6))
	put(scores, "ari", v, ok)
}

// DTS subscales are means of their item subsets after reverse-scoring item
// 6; the overall score is the mean of the four subscale means, not an
// item-level mean.
func scoreDTS(items map[string]float64, scores map[string]float64) {
	adjusted := items
	if v, ok := items["dts_6"]; ok {
		adjusted = make(map[string]float64, len(items))
		for k, val := range items {
			adjusted[k] = val
		}
		adjusted["dts_6"] = reverseLikert5(v)
	}

	tol, okT := mean(adjusted, dtsTolerance)
	app, okAp := mean(adjusted, dtsAppraisal)
	abs, okAb := mean(adjusted, dtsAbsorption)
	reg, okR := mean(adjusted, dtsRegulation)

	put(scores, "dts_tolerance", tol, okT)
	put(scores, "dts_appraisal", app, okAp)
	put(scores, "dts_absorption", abs, okAb)
	put(scores, "dts_regulation", reg, okR)
	if okT && okAp && okAb && okR {
		scores["dts_overall"] = (tol + app + abs + reg) / 4
	}
}

// CEAS scores Engagement and Action separately within each direction
// (self-compassion, compassion to others, compassion from others); the
// direction total is their sum.
func scoreCEAS(items map[string]float64, scores map[string]float64) {
	for _, dir := range []string{"self", "to", "from"} {
		eng, okE := sum(items, ceasIDs(dir, ceasEngagement))
		act, okA := sum(items, ceasIDs(dir, ceasAction))
		put(scores, "ceas_"+dir+"_engagement", eng, okE)
		put(scores, "ceas_"+dir+"_action", act, okA)
		if okE && okA {
			scores["ceas_"+dir] = eng + act
		}
	}
}

// CAMM is the sum of all 10 items.
func scoreCAMM(items map[string]float64, scores map[string]float64) {
	v, ok := sum(items, numbered("camm", 1, 10))
	put(scores, "camm", v, ok)
}

// reverseLikert5 mirrors a 1-5 Likert response about the midpoint:
// 1<->5, 2<->4, 3<->3.
func reverseLikert5(v float64) float64 {
	return 6 - v
}

func sum(items map[string]float64, ids []string) (float64, bool) {
	var total float64
	for _, id := range ids {
		v, ok := items[id]
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}

func mean(items map[string]float64, ids []string) (float64, bool) {
	total, ok := sum(items, ids)
	if !ok || len(ids) == 0 {
		return 0, false
	}
	return total / float64(len(ids)), true
}

func put(scores map[string]float64, name string, v float64, ok bool) {
	if ok {
		scores[name] = v
	}
}

func numbered(prefix string, from, to int) []string {
	ids := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		ids = append(ids, fmt.Sprintf("%s_%d", prefix, i))
	}
	return ids
}

func ceasIDs(dir string, nums []int) []string {
	ids := make([]string, 0, len(nums))
	for _, n := range nums {
		ids = append(ids, fmt.Sprintf("ceas_%s_%d", dir, n))
	}
	return ids
}
