// Package service implements the engagement ledger: idempotent voting and
// contribution point accounting. Point awards and votes for a single action
// are expected to be wrapped in one transaction by the caller.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"civicpulse/internal/engagement/metrics"
	reportModels "civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
	"civicpulse/pkg/platform/sentinel"
)

// Point awards per engagement event.
const (
	PointsSubmitReport = 10
	PointsCastVote     = 1
	PointsStatusChange = 3
)

// VoteStore persists votes with a uniqueness guarantee per (voter, report).
type VoteStore interface {
	CreateIfAbsent(ctx context.Context, v *reportModels.Vote) error
	CountByReport(ctx context.Context, reportID domain.ReportID) (int, error)
	CountByReports(ctx context.Context, reportIDs []domain.ReportID) (map[domain.ReportID]int, error)
	HasVoted(ctx context.Context, voterID domain.UserID, reportID domain.ReportID) (bool, error)
}

// UserStore provides the point balance operations the ledger needs.
type UserStore interface {
	IncrementPoints(ctx context.Context, id domain.UserID, delta int) error
}

// Board mirrors point totals into a ranked cache. Mirror failures must not
// fail the ledger operation.
type Board interface {
	IncrBy(ctx context.Context, userID domain.UserID, amount int) error
}

type Ledger struct {
	votes  VoteStore
	users  UserStore
	board  Board
	logger *slog.Logger
	m      *metrics.Metrics
	now    func() time.Time
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) {
		l.m = m
	}
}

// WithBoard attaches a leaderboard mirror.
func WithBoard(b Board) Option {
	return func(l *Ledger) {
		l.board = b
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(votes VoteStore, users UserStore, opts ...Option) *Ledger {
	l := &Ledger{
		votes:  votes,
		users:  users,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CastVote records a vote by voterID on reportID and credits the voter.
// A repeat vote by the same voter on the same report fails with
// CodeAlreadyVoted and leaves the ledger untouched. On success the
// report's current vote count is returned.
func (l *Ledger) CastVote(ctx context.Context, voterID domain.UserID, reportID domain.ReportID) (int, error) {
	vote := &reportModels.Vote{
		ID:        domain.NewVoteID(),
		VoterID:   voterID,
		ReportID:  reportID,
		CreatedAt: l.now().UTC(),
	}

	if err := l.votes.CreateIfAbsent(ctx, vote); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			if l.m != nil {
				l.m.DuplicateVotes.Inc()
			}
			return 0, dErrors.New(dErrors.CodeAlreadyVoted, "user has already voted on this report")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "recording vote")
	}

	if err := l.Credit(ctx, voterID, PointsCastVote); err != nil {
		return 0, err
	}

	count, err := l.votes.CountByReport(ctx, reportID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "counting votes")
	}

	if l.m != nil {
		l.m.VotesCast.Inc()
	}
	l.logger.InfoContext(ctx, "vote cast",
		"voter_id", voterID.String(),
		"report_id", reportID.String(),
		"votes", count,
	)
	return count, nil
}

// Credit adds amount points to the user's balance and mirrors the change to
// the leaderboard. The mirror update is best effort.
func (l *Ledger) Credit(ctx context.Context, userID domain.UserID, amount int) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "credit amount must be positive")
	}

	if err := l.users.IncrementPoints(ctx, userID, amount); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "crediting points")
	}

	if l.m != nil {
		l.m.PointsCredited.Add(float64(amount))
	}

	if l.board != nil {
		if err := l.board.IncrBy(ctx, userID, amount); err != nil {
			l.logger.WarnContext(ctx, "leaderboard mirror update failed",
				"user_id", userID.String(),
				"error", err,
			)
		}
	}
	return nil
}

// HasVoted reports whether voterID has already voted on reportID.
func (l *Ledger) HasVoted(ctx context.Context, voterID domain.UserID, reportID domain.ReportID) (bool, error) {
	voted, err := l.votes.HasVoted(ctx, voterID, reportID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "checking vote state")
	}
	return voted, nil
}

// VoteCounts returns the vote count for each report ID. Reports with no
// votes are present with a zero count.
func (l *Ledger) VoteCounts(ctx context.Context, reportIDs []domain.ReportID) (map[domain.ReportID]int, error) {
	counts, err := l.votes.CountByReports(ctx, reportIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "counting votes")
	}
	for _, id := range reportIDs {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
		}
	}
	return counts, nil
}
