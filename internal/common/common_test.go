package common

import (
	"errors"
	"testing"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Banco del Pacífico": "banco del pacifico",
		"SEÑAL":              "senal",
		"Jardín Azuayo":      "jardin azuayo",
		"":                   "",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Fatalf("Fold(%q) got=%q want=%q", in, got, want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	text := Fold("Transferencia EXITOSA a Rodríguez")
	if !ContainsAny(text, FoldAll([]string{"rodriguez"})) {
		t.Fatalf("expected match in %q", text)
	}
	if ContainsAny(text, []string{"", "quinteros"}) {
		t.Fatalf("unexpected match in %q", text)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"/estdo", "/estado", 1},
		{"señal", "senal", 1},
	}
	for _, c := range cases {
		if got := LevenshteinDistance(c.a, c.b); got != c.want {
			t.Fatalf("LevenshteinDistance(%q,%q) got=%d want=%d", c.a, c.b, got, c.want)
		}
	}
}

func TestClosest(t *testing.T) {
	best, d := Closest("/ayda", []string{"/cancelar", "/ayuda", "/estado"})
	if best != "/ayuda" || d != 1 {
		t.Fatalf("Closest got=%q,%d want=/ayuda,1", best, d)
	}
	if best, d := Closest("x", nil); best != "" || d != -1 {
		t.Fatalf("Closest(empty) got=%q,%d want=\"\",-1", best, d)
	}
}

func TestRequestContextSteps(t *testing.T) {
	rc := NewRequestContext("593987654321", "text")
	if rc.RequestID == "" {
		t.Fatalf("RequestID is empty")
	}

	rc.StartStep("load_state")
	rc.EndStep("success", nil)
	rc.StartStep("ocr")
	rc.EndStep("failed", errors.New("timeout"))
	rc.StartStep("reply")
	rc.Finish()

	if len(rc.Steps) != 3 {
		t.Fatalf("steps got=%d want=3", len(rc.Steps))
	}
	if rc.Steps[1].Error != "timeout" || rc.Steps[2].Status != "skipped" {
		t.Fatalf("steps got=%+v", rc.Steps)
	}

	// ending without a started step is a no-op
	rc.EndStep("success", nil)
	if len(rc.Steps) != 3 {
		t.Fatalf("steps after stray EndStep got=%d want=3", len(rc.Steps))
	}
}
