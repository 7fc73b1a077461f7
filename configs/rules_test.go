package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	if r.CompanyToken != "troncalnet" {
		t.Fatalf("CompanyToken got=%q want=troncalnet", r.CompanyToken)
	}
	if r.MinReceiptSignals != 3 || r.UniqueMatchRatio != 4 || r.MaxChoiceButtons != 3 {
		t.Fatalf("thresholds got=%d/%v/%d want=3/4/3", r.MinReceiptSignals, r.UniqueMatchRatio, r.MaxChoiceButtons)
	}
	if r.Banks[0].Name != "Banco del Pacífico" {
		t.Fatalf("first bank got=%q, declaration order matters", r.Banks[0].Name)
	}
	if r.Intents[0].Intent != "SIN_INTERNET" {
		t.Fatalf("first intent got=%q want=SIN_INTERNET", r.Intents[0].Intent)
	}
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func TestLoadRules_YAMLOverlay(t *testing.T) {
	path := writeRules(t, "authorized_recipients: [\"perez\"]\nmax_candidates: 7\n")

	r, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(r.AuthorizedRecipients) != 1 || r.AuthorizedRecipients[0] != "perez" {
		t.Fatalf("AuthorizedRecipients got=%v want=[perez]", r.AuthorizedRecipients)
	}
	if r.MaxCandidates != 7 {
		t.Fatalf("MaxCandidates got=%d want=7", r.MaxCandidates)
	}
	// keys absent from the file keep their defaults
	if r.CompanyToken != "troncalnet" || r.MinReceiptSignals != 3 {
		t.Fatalf("defaults lost: token=%q signals=%d", r.CompanyToken, r.MinReceiptSignals)
	}
}

func TestLoadRules_EnvOverrides(t *testing.T) {
	t.Setenv("UNIQUE_MATCH_RATIO", "2.5")
	t.Setenv("MIN_RECEIPT_SIGNALS", "2")

	r, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if r.UniqueMatchRatio != 2.5 || r.MinReceiptSignals != 2 {
		t.Fatalf("overrides got=%v/%d want=2.5/2", r.UniqueMatchRatio, r.MinReceiptSignals)
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	t.Setenv("MIN_RECEIPT_SIGNALS", "9")
	if _, err := LoadRules(""); err == nil {
		t.Fatalf("expected error for min_receipt_signals=9")
	}
}

func TestLoadRules_BadFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadRules(writeRules(t, "banks: {not: [a list")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
