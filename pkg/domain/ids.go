package domain

import (
	"github.com/google/uuid"

	dErrors "civicpulse/pkg/domain-errors"
)

// Typed IDs prevent cross-entity mixups at compile time. Construct from external
// input via the ParseXxxID functions; direct casting bypasses validation and is
// reserved for internal code that already holds a valid UUID.
type (
	UserID   uuid.UUID
	ReportID uuid.UUID
	VoteID   uuid.UUID
)

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "id cannot be the nil UUID")
	}
	return u, nil
}

// NewUserID mints a random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewReportID mints a random ReportID.
func NewReportID() ReportID { return ReportID(uuid.New()) }

// NewVoteID mints a random VoteID.
func NewVoteID() VoteID { return VoteID(uuid.New()) }

// ParseUserID validates and returns a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseReportID validates and returns a ReportID from external input.
func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ReportID{}, err
	}
	return ReportID(u), nil
}

// ParseVoteID validates and returns a VoteID from external input.
func ParseVoteID(s string) (VoteID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return VoteID{}, err
	}
	return VoteID(u), nil
}

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id ReportID) String() string { return uuid.UUID(id).String() }
func (id VoteID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VoteID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps typed IDs JSON-friendly as plain UUID strings.
func (id UserID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ReportID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id VoteID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *ReportID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ReportID(u)
	return nil
}

func (id *VoteID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = VoteID(u)
	return nil
}
