package services

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ContentNormalizer cleans catalog payloads at the ingestion boundary so the
// core components only ever see fixed-field records with canonical labels.
type ContentNormalizer struct {
	categoryTaxonomy map[string][]string
	whitespaceRegex  *regexp.Regexp
}

func NewContentNormalizer() *ContentNormalizer {
	return &ContentNormalizer{
		categoryTaxonomy: initializeSubjectTaxonomy(),
		whitespaceRegex:  regexp.MustCompile(`\s+`),
	}
}

// CleanText normalizes Unicode to NFC and collapses whitespace runs.
func (cn *ContentNormalizer) CleanText(text string) string {
	cleaned := norm.NFC.String(text)
	cleaned = cn.whitespaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// NormalizeCategory folds a raw category label into the subject taxonomy.
// Labels outside the taxonomy keep their cleaned form; the recommender's
// category space is per-pool, so unknown subjects still one-hot correctly.
func (cn *ContentNormalizer) NormalizeCategory(category string) string {
	cleaned := cn.CleanText(category)
	lowered := strings.ToLower(cleaned)

	for subject, aliases := range cn.categoryTaxonomy {
		if lowered == strings.ToLower(subject) {
			return subject
		}
		for _, alias := range aliases {
			if lowered == alias {
				return subject
			}
		}
	}

	return cleaned
}

// NormalizeDifficulty maps any casing or spacing of the three difficulty
// labels to canonical form; anything unrecognized becomes medium, matching
// the vectorizer's lenient-parsing policy.
func (cn *ContentNormalizer) NormalizeDifficulty(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}

func initializeSubjectTaxonomy() map[string][]string {
	return map[string][]string{
		"Math":      {"maths", "mathematics", "arithmetic", "algebra", "geometry"},
		"Science":   {"sciences", "physics", "chemistry", "biology"},
		"Language":  {"languages", "english", "grammar", "vocabulary", "spelling"},
		"History":   {"histories", "social studies"},
		"Geography": {"geo", "maps"},
		"Coding":    {"programming", "computer science", "cs"},
		"Arts":      {"art", "drawing", "design"},
		"Music":     {"musical", "instruments"},
	}
}
