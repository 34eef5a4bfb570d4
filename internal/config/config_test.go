package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	configContent := `
inputs:
  survey: ./raw/outcome_measures.xlsx
  registry: ./raw/admissions.csv
output:
  dir: ./import_ready
  xml_batches: true
normalize:
  keep_incomplete: true
registry:
  programs:
    - Residential Program
  as_of: "2024-03-15"
run_log:
  enabled: true
  dir: ./data
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Inputs.Survey != "./raw/outcome_measures.xlsx" {
		t.Errorf("survey = %q", cfg.Inputs.Survey)
	}
	if !cfg.Output.XMLBatches {
		t.Error("xml_batches not set")
	}
	if !cfg.Normalize.KeepIncomplete {
		t.Error("keep_incomplete not set")
	}
	if len(cfg.Registry.Programs) != 1 || cfg.Registry.Programs[0] != "Residential Program" {
		t.Errorf("programs = %v", cfg.Registry.Programs)
	}
	if cfg.Registry.AsOf != "2024-03-15" {
		t.Errorf("as_of = %q", cfg.Registry.AsOf)
	}
	if !cfg.RunLog.Enabled {
		t.Error("run log not enabled")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	os.Setenv("TEST_SURVEY_PATH", "/data/survey.csv")
	defer os.Unsetenv("TEST_SURVEY_PATH")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("inputs:\n  survey: ${TEST_SURVEY_PATH}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Inputs.Survey != "/data/survey.csv" {
		t.Errorf("survey = %q, want env-expanded path", cfg.Inputs.Survey)
	}
}

func TestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Dir != "./import_ready" {
		t.Errorf("default output dir = %q", cfg.Output.Dir)
	}
	if cfg.RunLog.Dir != "./data" {
		t.Errorf("default run log dir = %q", cfg.RunLog.Dir)
	}
	if cfg.Normalize.KeepIncomplete {
		t.Error("incomplete rows should be dropped by default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
