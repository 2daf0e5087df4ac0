package domain

import dErrors "civicpulse/pkg/domain-errors"

// Category is the classification tag the rule engine assigns to a report.
// The zero value means uncategorized (no rule matched).
type Category string

const (
	CategorySanitation  Category = "sanitation"
	CategoryWater       Category = "water"
	CategoryRoad        Category = "road"
	CategoryElectricity Category = "electricity"
	CategoryCorruption  Category = "corruption"
	CategorySafety      Category = "safety"
)

// CategoryUncategorized is the filter literal clients use to select reports the
// rule engine left unclassified. It is never stored on a report; storage uses
// the empty Category.
const CategoryUncategorized = "uncategorized"

var validCategories = map[Category]bool{
	CategorySanitation:  true,
	CategoryWater:       true,
	CategoryRoad:        true,
	CategoryElectricity: true,
	CategoryCorruption:  true,
	CategorySafety:      true,
}

// ParseCategory constructs a Category from external input.
// The empty string parses to the uncategorized zero value.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	return c, nil
}

// IsValid checks if the category is one of the supported enum values.
// The uncategorized zero value is not a valid stored category tag.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// IsZero reports whether the category is unset (uncategorized).
func (c Category) IsZero() bool {
	return c == ""
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}
