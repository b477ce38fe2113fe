package namematch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpandStateAbbreviation(t *testing.T) {
	got := Expand("NJ Falcons")
	want := []string{"nj falcons", "new jersey falcons"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandNoAbbreviation(t *testing.T) {
	got := Expand("Falcons")
	want := []string{"falcons"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMultipleAbbreviations(t *testing.T) {
	got := Expand("NY vs PA Showcase")
	want := []string{
		"ny vs pa showcase",
		"new york vs pa showcase",
		"ny vs pennsylvania showcase",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreExactSubstringDominates(t *testing.T) {
	original := "nj falcons"
	terms := Expand(original)

	exact := Score("NJ Falcons 14U", "Garden State Hockey", terms, original)
	partial := Score("Jersey Falcons", "Garden State Hockey", terms, original)

	if exact <= partial {
		t.Errorf("exact containment scored %d, partial %d; want exact higher", exact, partial)
	}
	if exact < 100 {
		t.Errorf("exact containment scored %d, want at least 100", exact)
	}
}

func TestScoreExpandedTermHitsPrimaryAndSecondary(t *testing.T) {
	original := "nj falcons"
	terms := Expand(original)

	inPrimary := Score("New Jersey Falcons", "", terms, original)
	inSecondary := Score("Falcons Blue", "New Jersey Falcons Club", terms, original)

	if inPrimary <= 0 || inSecondary <= 0 {
		t.Fatalf("expected positive scores, got primary=%d secondary=%d", inPrimary, inSecondary)
	}
	if inPrimary <= inSecondary {
		t.Errorf("primary-name hit scored %d, secondary-name hit %d; want primary higher", inPrimary, inSecondary)
	}
}

func TestScoreZeroMeansNoMatch(t *testing.T) {
	original := "nj falcons"
	terms := Expand(original)

	if got := Score("Boston Bears", "Massachusetts Hockey", terms, original); got != 0 {
		t.Errorf("Score() = %d, want 0 for unrelated candidate", got)
	}
}

func TestScoreSingleCharacterKeywordsIgnored(t *testing.T) {
	original := "a team"
	terms := Expand(original)

	withA := Score("Alpha Squad", "", terms, original)
	// "a" is too short to count as a keyword; only whole-word "team"
	// matches contribute.
	withTeam := Score("Dream Team", "", terms, original)
	if withTeam <= withA {
		t.Errorf("Score(team hit) = %d, Score(short keyword only) = %d; want team hit higher", withTeam, withA)
	}
}

func TestScoreWordBoundaryBonus(t *testing.T) {
	original := "jets"
	terms := Expand(original)

	wholeWord := Score("Newark Jets", "", terms, original)
	embedded := Score("Jetstream Hockey", "", terms, original)
	if wholeWord <= embedded {
		t.Errorf("whole-word match scored %d, embedded %d; want whole-word higher", wholeWord, embedded)
	}
}
