// Package pipeline turns a raw issue description into presentable text and a
// category. The rule engine is deterministic and runs exactly once per report,
// at submission time; derived fields are never recomputed.
package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"civicpulse/pkg/domain"
)

// Result is the pipeline output stored on a report.
type Result struct {
	CleanText string
	Category  domain.Category
}

// rule pairs a category with its keyword pattern. Order matters: the first
// matching rule wins, so a text mentioning both garbage and a pothole is
// sanitation, not road.
type rule struct {
	category domain.Category
	pattern  *regexp.Regexp
}

var rules = []rule{
	{domain.CategorySanitation, regexp.MustCompile(`(?i)garbage|trash|waste|litter|rubbish`)},
	{domain.CategoryWater, regexp.MustCompile(`(?i)water|leak|pipe|flooding|drain`)},
	{domain.CategoryRoad, regexp.MustCompile(`(?i)road|pothole|street|pavement|sidewalk`)},
	{domain.CategoryElectricity, regexp.MustCompile(`(?i)light|electricity|power|outage|lamp`)},
	{domain.CategoryCorruption, regexp.MustCompile(`(?i)corrupt|bribe|illegal|fraud`)},
	{domain.CategorySafety, regexp.MustCompile(`(?i)danger|unsafe|crime|security|threat`)},
}

// Normalize trims the text and capitalizes the first letter of every
// whitespace-delimited word, leaving the rest of each word (and interior
// whitespace) unchanged.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(trimmed))
	startOfWord := true
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			startOfWord = true
			b.WriteRune(r)
			continue
		}
		if startOfWord {
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Categorize evaluates the ordered keyword rules against the raw text and
// returns the category of the first match, or the uncategorized zero value.
func Categorize(raw string) domain.Category {
	for _, r := range rules {
		if r.pattern.MatchString(raw) {
			return r.category
		}
	}
	return ""
}

// Run applies the full deterministic pipeline.
func Run(raw string) Result {
	return Result{
		CleanText: Normalize(raw),
		Category:  Categorize(raw),
	}
}
