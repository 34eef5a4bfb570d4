// Package instrument defines the fixed questionnaire vocabulary shared by
// the normalizer, scorer, and exporter: which items belong to which
// instrument, in which order, and the constant metadata the EHR import
// format requires per instrument.
package instrument

import "fmt"

// Instrument identifies one questionnaire in the outcome measures battery.
type Instrument string

const (
	DERS Instrument = "ders" // Difficulties in Emotion Regulation Scale, 16-item
	ARI  Instrument = "ari"  // Affective Reactivity Index
	DTS  Instrument = "dts"  // Distress Tolerance Scale
	CEAS Instrument = "ceas" // Compassionate Engagement and Action Scales
	CAMM Instrument = "camm" // Child and Adolescent Mindfulness Measure
)

// All lists every instrument in battery order.
var All = []Instrument{DERS, ARI, DTS, CEAS, CAMM}

// ConstantColumn is a fixed literal column required by the import target,
// e.g. an assessment-type code or a draft/final status code.
type ConstantColumn struct {
	Name  string
	Value string
}

// Meta is the per-instrument metadata record: item vocabulary, export file
// prefix, the constant columns the import template expects, and the Avatar
// option/system tags used by the XML batch format.
type Meta struct {
	Code             Instrument
	Items            []string
	FilePrefix       string
	Constants        []ConstantColumn
	OptionIdentifier string
	SystemTag        string
}

var metas = map[Instrument]Meta{
	DERS: {
		Code:             DERS,
		Items:            numbered("ders", 16),
		FilePrefix:       "ders",
		Constants:        []ConstantColumn{{"assessment_type", "15"}, {"draft_final", "D"}},
		OptionIdentifier: "USER119",
		SystemTag:        "SYSTEM.DERS_16",
	},
	ARI: {
		Code:             ARI,
		Items:            numbered("ari", 7),
		FilePrefix:       "ari",
		OptionIdentifier: "USER124",
		SystemTag:        "SYSTEM.ARI",
	},
	DTS: {
		Code:             DTS,
		Items:            numbered("dts", 15),
		FilePrefix:       "dts",
		Constants:        []ConstantColumn{{"status", "D"}},
		OptionIdentifier: "USER130",
		SystemTag:        "SYSTEM.distress_tolerance",
	},
	CEAS: {
		Code:       CEAS,
		Items:      ceasItems(),
		FilePrefix: "ceas",
		Constants:  []ConstantColumn{{"type", "15"}, {"status", "D"}},
		// CEAS has no Avatar XML batch form; it is imported via CSV only.
	},
	CAMM: {
		Code:             CAMM,
		Items:            numbered("camm", 10),
		FilePrefix:       "camm",
		OptionIdentifier: "USER129",
		SystemTag:        "SYSTEM.camm",
	},
}

// Lookup returns the metadata record for an instrument.
func Lookup(code Instrument) (Meta, bool) {
	m, ok := metas[code]
	return m, ok
}

// AllItems returns the full ordered 87-item vocabulary as it appears in the
// survey export: DERS, ARI, DTS, then CEAS (self, from, to), then CAMM.
func AllItems() []string {
	var items []string
	for _, code := range []Instrument{DERS, ARI, DTS, CEAS, CAMM} {
		items = append(items, metas[code].Items...)
	}
	return items
}

func numbered(prefix string, n int) []string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf("%s_%d", prefix, i))
	}
	return items
}

func ceasItems() []string {
	var items []string
	for _, dir := range []string{"self", "from", "to"} {
		for i := 1; i <= 13; i++ {
			items = append(items, fmt.Sprintf("ceas_%s_%d", dir, i))
		}
	}
	return items
}
