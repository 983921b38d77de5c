package chapter

import (
	"testing"

	"github.com/dgallion1/pyqbook/internal/paper"
)

func TestAssign_FirstRuleWins(t *testing.T) {
	qs := []paper.Question{
		{Number: 1, Preview: "Explain the CAPM and the security market line."},
		{Number: 2, Preview: "Derive the probability of ruin for a surplus process."},
		{Number: 3, Preview: "Discuss market efficiency under CAPM assumptions."},
	}
	rules := []Rule{
		{Label: "Chapter 2", Keywords: []string{"capm"}},
		{Label: "Chapter 6", Keywords: []string{"Efficiency", "ruin"}},
	}
	Assign(qs, rules)

	want := []string{"Chapter 2", "Chapter 6", "Chapter 2"}
	for i, w := range want {
		if qs[i].Chapter != w {
			t.Errorf("question %d: expected %q, got %q", qs[i].Number, w, qs[i].Chapter)
		}
	}
}

func TestAssign_RuleOrderMatters(t *testing.T) {
	q := []paper.Question{{Preview: "Price a European call option using Black-Scholes."}}
	Assign(q, []Rule{
		{Label: "Derivatives", Keywords: []string{"option"}},
		{Label: "Pricing", Keywords: []string{"price"}},
	})
	if q[0].Chapter != "Derivatives" {
		t.Errorf("expected %q, got %q", "Derivatives", q[0].Chapter)
	}

	Assign(q, []Rule{
		{Label: "Pricing", Keywords: []string{"price"}},
		{Label: "Derivatives", Keywords: []string{"option"}},
	})
	if q[0].Chapter != "Pricing" {
		t.Errorf("expected %q, got %q", "Pricing", q[0].Chapter)
	}
}

func TestAssign_NoMatchKeepsManualChapter(t *testing.T) {
	qs := []paper.Question{
		{Number: 1, Preview: "Describe claims reserving methods.", Chapter: "Chapter 9"},
		{Number: 2, Preview: "Describe the chain ladder method."},
	}
	Assign(qs, []Rule{{Label: "Chapter 1", Keywords: []string{"annuity"}}})

	if qs[0].Chapter != "Chapter 9" {
		t.Errorf("expected manual chapter to survive, got %q", qs[0].Chapter)
	}
	if qs[1].Chapter != "" {
		t.Errorf("expected unassigned, got %q", qs[1].Chapter)
	}
}

func TestAssign_MatchesPreviewOnly(t *testing.T) {
	qs := []paper.Question{{
		Preview: "Calculate the present value.",
		Content: "Q. 1) Calculate the present value.\nUse an annuity factor.",
	}}
	Assign(qs, []Rule{{Label: "Annuities", Keywords: []string{"annuity"}}})
	if qs[0].Chapter != "" {
		t.Errorf("expected content outside preview to be ignored, got %q", qs[0].Chapter)
	}
}

func TestMatch_EmptyKeywordIgnored(t *testing.T) {
	if label, ok := Match("anything at all", []Rule{{Label: "X", Keywords: []string{""}}}); ok {
		t.Errorf("expected no match, got %q", label)
	}
}

func TestReset(t *testing.T) {
	qs := []paper.Question{{Chapter: "A"}, {Chapter: "B"}, {}}
	Reset(qs)
	for i, q := range qs {
		if q.Chapter != "" {
			t.Errorf("question %d: expected cleared chapter, got %q", i, q.Chapter)
		}
	}
}
