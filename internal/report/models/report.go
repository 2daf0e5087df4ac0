package models

import (
	"strings"
	"time"

	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
)

// MinDescriptionLength is the submission precondition on raw_text.
const MinDescriptionLength = 10

// Location is an optional coordinate pair. Both values are present or the
// location is absent; a half-specified pair is a validation error.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Report is a citizen-submitted civic issue. raw_text, clean_text and category
// are immutable once set; only status changes after creation, and only through
// the lifecycle transition.
type Report struct {
	ID        domain.ReportID `json:"id"`
	AuthorID  domain.UserID   `json:"author_id"`
	RawText   string          `json:"raw_text"`
	CleanText string          `json:"clean_text,omitempty"`
	Category  domain.Category `json:"category,omitempty"`
	Status    domain.Status   `json:"status"`
	Location  *Location       `json:"location,omitempty"`
	ImageRef  string          `json:"image_ref,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewReport constructs a pending report and validates its invariants.
// clean_text and category come from the pipeline, which the caller runs first.
func NewReport(id domain.ReportID, authorID domain.UserID, rawText, cleanText string, category domain.Category, loc *Location, imageRef string, now time.Time) (*Report, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "report id is required")
	}
	if authorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "author id is required")
	}
	if len(strings.TrimSpace(rawText)) < MinDescriptionLength {
		return nil, dErrors.New(dErrors.CodeValidation, "description must be at least 10 characters")
	}
	if !category.IsZero() && !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	return &Report{
		ID:        id,
		AuthorID:  authorID,
		RawText:   rawText,
		CleanText: cleanText,
		Category:  category,
		Status:    domain.StatusPending,
		Location:  loc,
		ImageRef:  imageRef,
		CreatedAt: now,
	}, nil
}

// Vote is one identity's endorsement of a report. (VoterID, ReportID) is
// unique; votes are never mutated or deleted.
type Vote struct {
	ID        domain.VoteID   `json:"id"`
	VoterID   domain.UserID   `json:"voter_id"`
	ReportID  domain.ReportID `json:"report_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// Sort orders for report listings.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortMostVotes Sort = "most_votes"
)

// ParseSort validates a listing sort order; empty defaults to newest.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortMostVotes:
		return Sort(s), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "invalid sort order")
	}
}

// ListFilter narrows and orders a report listing. Zero values mean "no filter".
// Uncategorized selects reports with no category and is expressed via the
// dedicated flag since the empty Category already means "any".
type ListFilter struct {
	Status        domain.Status
	Category      domain.Category
	Uncategorized bool
	Search        string
	Sort          Sort
	Limit         int
}

// ReportWithVotes pairs a report with its derived vote count for listings.
type ReportWithVotes struct {
	Report     *Report `json:"report"`
	VotesCount int     `json:"votes_count"`
}
