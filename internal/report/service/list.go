package service

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"civicpulse/internal/authz"
	"civicpulse/internal/engagement/leaderboard"
	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
	"civicpulse/pkg/platform/sentinel"
)

// ReportDetail is a single report enriched for the detail view.
type ReportDetail struct {
	models.ReportWithVotes
	HasVoted bool `json:"has_voted"`
}

// LeaderboardEntry is one ranked row of the points leaderboard.
type LeaderboardEntry struct {
	UserID      domain.UserID `json:"user_id"`
	DisplayName string        `json:"display_name,omitempty"`
	Points      int           `json:"points"`
}

// List returns reports matching the filter with their vote counts. Vote
// ordering cannot be pushed into the store, so most_votes sorting pulls the
// unbounded match set, orders by count with recency as tiebreak, and applies
// the limit afterwards.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]models.ReportWithVotes, error) {
	ctx, span := s.tracer.Start(ctx, "report.List")
	defer span.End()

	byVotes := filter.Sort == models.SortMostVotes
	limit := filter.Limit
	if byVotes {
		filter.Sort = models.SortNewest
		filter.Limit = 0
	}

	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing reports")
	}

	ids := make([]domain.ReportID, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	counts, err := s.ledger.VoteCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ReportWithVotes, len(reports))
	for i, r := range reports {
		out[i] = models.ReportWithVotes{Report: r, VotesCount: counts[r.ID]}
	}

	if byVotes {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].VotesCount > out[j].VotesCount
		})
		if limit > 0 && limit < len(out) {
			out = out[:limit]
		}
	}
	return out, nil
}

// Get returns one report with its vote count and whether viewer has voted on
// it. A nil viewer ID means an anonymous caller.
func (s *Service) Get(ctx context.Context, id domain.ReportID, viewer domain.UserID) (*ReportDetail, error) {
	ctx, span := s.tracer.Start(ctx, "report.Get")
	defer span.End()

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading report")
	}

	detail := &ReportDetail{ReportWithVotes: models.ReportWithVotes{Report: report}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.ledger.VoteCounts(gctx, []domain.ReportID{id})
		if err != nil {
			return err
		}
		detail.VotesCount = counts[id]
		return nil
	})
	if !viewer.IsNil() {
		g.Go(func() error {
			voted, err := s.ledger.HasVoted(gctx, viewer, id)
			if err != nil {
				return err
			}
			detail.HasVoted = voted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// AdminQueue is the moderation listing: the same read surface as List, gated
// to moderators and admins.
func (s *Service) AdminQueue(ctx context.Context, actor Actor, filter models.ListFilter) ([]models.ReportWithVotes, error) {
	if actor.Anonymous() || !authz.Allows(actor.Role, authz.ActionViewAdminQueue) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to view the admin queue")
	}
	return s.List(ctx, filter)
}

// Leaderboard returns the top n users by points. The Redis mirror is
// preferred when attached; the user store remains authoritative and serves
// as the fallback.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	ctx, span := s.tracer.Start(ctx, "report.Leaderboard")
	defer span.End()

	if n <= 0 {
		n = 10
	}

	if s.board != nil {
		entries, err := s.board.Top(ctx, n)
		if err == nil && len(entries) > 0 {
			return s.enrichBoard(ctx, entries), nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache read failed, falling back", "error", err)
		}
	}

	users, err := s.users.TopByPoints(ctx, n)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reading leaderboard")
	}
	out := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		out[i] = LeaderboardEntry{UserID: u.ID, DisplayName: u.DisplayName, Points: u.Points}
	}
	return out, nil
}

func (s *Service) enrichBoard(ctx context.Context, entries []leaderboard.Entry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		entry := LeaderboardEntry{UserID: e.UserID, Points: e.Points}
		if u, err := s.users.FindByID(ctx, e.UserID); err == nil {
			entry.DisplayName = u.DisplayName
		}
		out = append(out, entry)
	}
	return out
}
