// Package namematch expands abbreviations in free-text team names and scores
// candidate records by similarity. It is shared by team search, opponent
// search, and manager search, so it carries no caller-specific behavior.
package namematch

import "strings"

// stateNames maps US state abbreviations to their full names. Team names in
// this domain lean heavily on two-letter state prefixes.
var stateNames = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut",
	"de": "delaware", "fl": "florida", "ga": "georgia", "hi": "hawaii",
	"id": "idaho", "il": "illinois", "in": "indiana", "ia": "iowa",
	"ks": "kansas", "ky": "kentucky", "la": "louisiana", "me": "maine",
	"md": "maryland", "ma": "massachusetts", "mi": "michigan",
	"mn": "minnesota", "ms": "mississippi", "mo": "missouri",
	"mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico",
	"ny": "new york", "nc": "north carolina", "nd": "north dakota",
	"oh": "ohio", "ok": "oklahoma", "or": "oregon", "pa": "pennsylvania",
	"ri": "rhode island", "sc": "south carolina", "sd": "south dakota",
	"tn": "tennessee", "tx": "texas", "ut": "utah", "vt": "vermont",
	"va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming",
}

// Expand lower-cases term and returns it plus one variant per two-letter
// state abbreviation appearing as a whole word, with the abbreviation
// replaced by the full state name. The original term is always first.
func Expand(term string) []string {
	lowered := strings.ToLower(strings.TrimSpace(term))
	variants := []string{lowered}

	words := strings.Fields(lowered)
	for i, w := range words {
		full, ok := stateNames[w]
		if !ok {
			continue
		}
		expanded := make([]string, len(words))
		copy(expanded, words)
		expanded[i] = full
		variant := strings.Join(expanded, " ")
		if variant != lowered {
			variants = append(variants, variant)
		}
	}

	return variants
}

// Score rates how well a candidate matches the query. primaryName is the
// candidate's own name and secondaryName an association or parent label.
// expandedTerms must come from Expand(originalTerm). Zero means no match.
func Score(primaryName, secondaryName string, expandedTerms []string, originalTerm string) int {
	primary := strings.ToLower(primaryName)
	secondary := strings.ToLower(secondaryName)
	original := strings.ToLower(strings.TrimSpace(originalTerm))

	score := 0

	if original != "" && strings.Contains(primary, original) {
		score += 100
	}

	for _, term := range expandedTerms {
		if term == "" {
			continue
		}
		if strings.Contains(primary, term) {
			score += 50
		}
		if secondary != "" && strings.Contains(secondary, term) {
			score += 30
		}
	}

	for _, word := range strings.Fields(original) {
		if len(word) <= 1 {
			continue
		}
		if strings.Contains(primary, word) {
			score += 10
		}
		if secondary != "" && strings.Contains(secondary, word) {
			score += 5
		}
	}

	combined := primary + " " + secondary
	for _, word := range strings.Fields(original) {
		if containsWord(combined, word) {
			score += 15
			break
		}
	}

	return score
}

// containsWord reports whether word appears in s delimited by word
// boundaries.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r)
	}) {
		if field == word {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '\'' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
