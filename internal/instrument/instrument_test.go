package instrument

import "testing"

func TestAllItems(t *testing.T) {
	items := AllItems()

	// 16 DERS + 7 ARI + 15 DTS + 39 CEAS + 10 CAMM
	if len(items) != 87 {
		t.Fatalf("vocabulary size = %d, want 87", len(items))
	}

	// Battery order matters: the survey export columns follow it.
	if items[0] != "ders_1" {
		t.Errorf("first item = %s, want ders_1", items[0])
	}
	if items[16] != "ari_1" {
		t.Errorf("item 16 = %s, want ari_1", items[16])
	}
	if items[23] != "dts_1" {
		t.Errorf("item 23 = %s, want dts_1", items[23])
	}
	if items[38] != "ceas_self_1" {
		t.Errorf("item 38 = %s, want ceas_self_1", items[38])
	}
	if items[51] != "ceas_from_1" {
		t.Errorf("item 51 = %s, want ceas_from_1", items[51])
	}
	if items[64] != "ceas_to_1" {
		t.Errorf("item 64 = %s, want ceas_to_1", items[64])
	}
	if items[86] != "camm_10" {
		t.Errorf("last item = %s, want camm_10", items[86])
	}

	seen := make(map[string]bool, len(items))
	for _, id := range items {
		if seen[id] {
			t.Errorf("duplicate item id %s", id)
		}
		seen[id] = true
	}
}

func TestLookup(t *testing.T) {
	for _, code := range All {
		meta, ok := Lookup(code)
		if !ok {
			t.Fatalf("no metadata for %s", code)
		}
		if meta.FilePrefix == "" {
			t.Errorf("%s has no file prefix", code)
		}
		if len(meta.Items) == 0 {
			t.Errorf("%s has no items", code)
		}
	}

	if _, ok := Lookup(Instrument("nope")); ok {
		t.Error("unknown instrument should not resolve")
	}
}

func TestAvatarTags(t *testing.T) {
	// Fixed option identifiers from the Avatar import configuration.
	want := map[Instrument][2]string{
		DERS: {"USER119", "SYSTEM.DERS_16"},
		ARI:  {"USER124", "SYSTEM.ARI"},
		DTS:  {"USER130", "SYSTEM.distress_tolerance"},
		CAMM: {"USER129", "SYSTEM.camm"},
	}
	for code, tags := range want {
		meta, _ := Lookup(code)
		if meta.OptionIdentifier != tags[0] || meta.SystemTag != tags[1] {
			t.Errorf("%s tags = %s/%s, want %s/%s",
				code, meta.OptionIdentifier, meta.SystemTag, tags[0], tags[1])
		}
	}

	// CEAS is imported via CSV only.
	meta, _ := Lookup(CEAS)
	if meta.OptionIdentifier != "" {
		t.Errorf("CEAS should have no option identifier, got %s", meta.OptionIdentifier)
	}
}
