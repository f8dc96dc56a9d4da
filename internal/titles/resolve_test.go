package titles

import (
	"strings"
	"testing"
)

func TestResolveExactMatchWins(t *testing.T) {
	// First candidate is one edit away from the query (similarity 0.95),
	// second is an exact normalized match. Exact must win regardless.
	title := strings.Repeat("a", 20)
	near := strings.Repeat("a", 19) + "b"

	match, ok := Resolve(title, []string{near, "  " + strings.ToUpper(title) + "  "})
	if !ok {
		t.Fatal("expected a match")
	}
	if !match.Exact {
		t.Error("expected an exact match")
	}
	if match.Index != 1 {
		t.Errorf("expected exact candidate at index 1, got %d", match.Index)
	}
	if match.Score != 1 {
		t.Errorf("expected score 1.0 for exact match, got %v", match.Score)
	}
}

func TestResolveFirstExactMatchByOrder(t *testing.T) {
	match, ok := Resolve("The Daily", []string{"the daily", "The Daily", "THE DAILY"})
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Index != 0 {
		t.Errorf("expected first exact candidate to win, got index %d", match.Index)
	}
}

func TestResolveThresholdIsInclusive(t *testing.T) {
	// 10 runes, 1 edit: similarity exactly 0.90
	title := strings.Repeat("a", 10)
	atThreshold := strings.Repeat("a", 9) + "b"

	match, ok := Resolve(title, []string{atThreshold})
	if !ok {
		t.Fatalf("expected similarity 0.90 to be accepted, score %v", match.Score)
	}
	if match.Exact {
		t.Error("did not expect an exact match")
	}
	if match.Score != 0.90 {
		t.Errorf("expected score 0.90, got %v", match.Score)
	}

	// 10 runes, 2 edits: similarity 0.80, below threshold
	belowThreshold := strings.Repeat("a", 8) + "bb"
	if _, ok := Resolve(title, []string{belowThreshold}); ok {
		t.Error("expected similarity 0.80 to be rejected")
	}
}

func TestResolveTieKeepsFirstSeen(t *testing.T) {
	title := strings.Repeat("a", 10)
	tiedA := strings.Repeat("a", 9) + "b"
	tiedB := strings.Repeat("a", 9) + "c"

	match, ok := Resolve(title, []string{tiedA, tiedB})
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Index != 0 {
		t.Errorf("expected tie to keep first-seen candidate, got index %d", match.Index)
	}
}

func TestResolveSkipsEmptyInput(t *testing.T) {
	if _, ok := Resolve("", []string{"The Daily"}); ok {
		t.Error("expected no match for empty title")
	}
	if _, ok := Resolve("   ", []string{"The Daily"}); ok {
		t.Error("expected no match for whitespace-only title")
	}
}

func TestResolveSkipsEmptyCandidates(t *testing.T) {
	match, ok := Resolve("The Daily", []string{"", "  ", "the daily"})
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Index != 2 {
		t.Errorf("expected index 2, got %d", match.Index)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	if _, ok := Resolve("NoSuchShow123", nil); ok {
		t.Error("expected no match for empty candidate list")
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	title := "Crime Junkie"
	candidates := []string{"Crime Junkies", "crime junkie", "Junkie Crime"}

	first, okFirst := Resolve(title, candidates)
	second, okSecond := Resolve(title, candidates)

	if okFirst != okSecond || first != second {
		t.Errorf("resolution not idempotent: (%v, %v) vs (%v, %v)", first, okFirst, second, okSecond)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"the daily", "the daily show"},
		{"crime junkie", "crime junkies"},
		{"", "abc"},
	}

	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Errorf("Similarity(%q, %q) not symmetric", p[0], p[1])
		}
	}
}
