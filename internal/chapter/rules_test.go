package chapter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNames_Presets(t *testing.T) {
	names, err := Names(PresetNumbered, 3, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Chapter 1", "Chapter 2", "Chapter 3"}; !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}

	names, err = Names(PresetSubject, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != len(SubjectChapters) {
		t.Errorf("expected %d subject chapters, got %d", len(SubjectChapters), len(names))
	}
	names[0] = "mutated"
	if SubjectChapters[0] == "mutated" {
		t.Error("expected subject preset to be copied")
	}

	names, err = Names(PresetCustom, 0, "Introduction\n\n  Basic Concepts  \nAdvanced Topics\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Introduction", "Basic Concepts", "Advanced Topics"}; !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestNames_Errors(t *testing.T) {
	for _, n := range []int{0, 51} {
		if _, err := Names(PresetNumbered, n, ""); err == nil {
			t.Errorf("expected error for count %d", n)
		}
	}
	if _, err := Names("alphabetical", 3, ""); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseKeywords(t *testing.T) {
	got := ParseKeywords(" annuity, perpetuity ,, ,Force of Interest")
	want := []string{"annuity", "perpetuity", "Force of Interest"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := ParseKeywords(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestParseRules(t *testing.T) {
	data := []byte(`
chapters:
  - label: Chapter 10
    keywords: [ruin, surplus]
  - label: Chapter 2
    keywords: "capm, beta"
  - label: ""
    keywords: [orphan]
  - label: Chapter 5
`)
	rules, err := ParseRules(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Rule{
		{Label: "Chapter 10", Keywords: []string{"ruin", "surplus"}},
		{Label: "Chapter 2", Keywords: []string{"capm", "beta"}},
	}
	if !reflect.DeepEqual(rules, want) {
		t.Errorf("expected %+v, got %+v", want, rules)
	}
}

func TestParseRules_Invalid(t *testing.T) {
	if _, err := ParseRules([]byte("chapters: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := ParseRules([]byte("chapters:\n  - label: A\n    keywords: {a: b}\n")); err == nil {
		t.Error("expected error for mapping keywords")
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("chapters:\n  - label: Ch 1\n    keywords: [bond]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Label != "Ch 1" {
		t.Errorf("unexpected rules %+v", rules)
	}

	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
