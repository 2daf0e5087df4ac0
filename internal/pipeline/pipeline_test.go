package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"civicpulse/pkg/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims and capitalizes", "  broken street light  ", "Broken Street Light"},
		{"leaves rest of word unchanged", "large POTHOLE on mainSt", "Large POTHOLE On MainSt"},
		{"preserves interior whitespace", "a  b\tc", "A  B\tC"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"single word", "flooding", "Flooding"},
		{"already capitalized", "Garbage Everywhere", "Garbage Everywhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.Category
	}{
		{"road keywords", "Large pothole on Main Street", domain.CategoryRoad},
		{"sanitation keywords", "Garbage piling up near my house", domain.CategorySanitation},
		{"no match is uncategorized", "completely unrelated text", ""},
		{"water keywords", "burst pipe flooding the basement", domain.CategoryWater},
		{"electricity keywords", "power outage since morning", domain.CategoryElectricity},
		{"corruption keywords", "officials demanding a bribe", domain.CategoryCorruption},
		{"safety keywords", "unsafe crossing near school", domain.CategorySafety},
		{"case insensitive", "GARBAGE EVERYWHERE", domain.CategorySanitation},
		{"substring match", "rubbished sidewalks", domain.CategorySanitation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.in))
		})
	}
}

// TestCategorize_RuleOrder pins the tie-breaking order: when a text matches
// several rules, the earliest rule in the list wins.
func TestCategorize_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.Category
	}{
		{"sanitation beats road", "trash all over the road", domain.CategorySanitation},
		{"sanitation beats water", "garbage clogging the drain", domain.CategorySanitation},
		{"water beats road", "water pooling in the pothole", domain.CategoryWater},
		{"road beats electricity", "street light broken", domain.CategoryRoad},
		{"electricity beats safety", "lamp post is a danger", domain.CategoryElectricity},
		{"corruption beats safety", "illegal and unsafe construction", domain.CategoryCorruption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.in))
		})
	}
}

func TestRun(t *testing.T) {
	res := Run("  garbage piling up near my house ")
	assert.Equal(t, "Garbage Piling Up Near My House", res.CleanText)
	assert.Equal(t, domain.CategorySanitation, res.Category)
}
