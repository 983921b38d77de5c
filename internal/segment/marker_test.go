package segment

import (
	"strings"
	"testing"
)

func TestFindMarkers_ScanOrderAndSpans(t *testing.T) {
	text := "Q. 2) second\nQ.1) first\nQ.  3) third\n**********\ntrailer"
	ms := FindMarkers(text, PageOffsetIndex{})

	if len(ms) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(ms))
	}
	wantNums := []int{2, 1, 3}
	for i, w := range wantNums {
		if ms[i].Number != w {
			t.Errorf("marker[%d]: expected number %d, got %d", i, w, ms[i].Number)
		}
		if ms[i].Seq != i {
			t.Errorf("marker[%d]: expected seq %d, got %d", i, i, ms[i].Seq)
		}
	}
	if ms[0].End != ms[1].Start {
		t.Errorf("expected first span to end at next marker %d, got %d", ms[1].Start, ms[0].End)
	}
	if ms[2].End != strings.Index(text, "**********") {
		t.Errorf("expected last span to end at the star run, got %d", ms[2].End)
	}
}

func TestFindMarkers_LastSpanRunsToEnd(t *testing.T) {
	text := "Q. 1) only question, no terminator"
	ms := FindMarkers(text, PageOffsetIndex{})
	if len(ms) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(ms))
	}
	if ms[0].End != len(text) {
		t.Errorf("expected end %d, got %d", len(text), ms[0].End)
	}
}

func TestFindMarkers_ShortStarRunIgnored(t *testing.T) {
	text := "Q. 1) rate is 5*** per annum ********* done"
	ms := FindMarkers(text, PageOffsetIndex{})
	if ms[0].End != len(text) {
		t.Errorf("expected runs under ten stars to be ignored, end=%d", ms[0].End)
	}
}

func TestFindMarkers_OverflowSkipped(t *testing.T) {
	text := "Q. 99999999999999999999999) huge\nQ. 4) fine"
	ms := FindMarkers(text, PageOffsetIndex{})
	if len(ms) != 1 || ms[0].Number != 4 {
		t.Fatalf("expected only marker 4, got %+v", ms)
	}
	if ms[0].Seq != 0 {
		t.Errorf("expected seq 0, got %d", ms[0].Seq)
	}
}

func TestSortMarkers_StableOnDuplicates(t *testing.T) {
	ms := []Marker{
		{Number: 5, Seq: 0},
		{Number: 3, Seq: 1},
		{Number: 5, Seq: 2},
		{Number: 1, Seq: 3},
	}
	SortMarkers(ms)

	want := []struct{ num, seq int }{{1, 3}, {3, 1}, {5, 0}, {5, 2}}
	for i, w := range want {
		if ms[i].Number != w.num || ms[i].Seq != w.seq {
			t.Errorf("position %d: expected (%d,%d), got (%d,%d)", i, w.num, w.seq, ms[i].Number, ms[i].Seq)
		}
	}
}
