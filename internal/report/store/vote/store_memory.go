package vote

import (
	"context"
	"sync"

	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
)

type voteKey struct {
	voter  domain.UserID
	report domain.ReportID
}

// InMemory keeps votes in a mutex-guarded map keyed by (voter, report), so the
// check-and-insert for the one-vote-per-user-per-report invariant happens
// under a single lock rather than as a racy check-then-act.
type InMemory struct {
	mu    sync.RWMutex
	votes map[voteKey]*models.Vote
}

func NewInMemory() *InMemory {
	return &InMemory{votes: make(map[voteKey]*models.Vote)}
}

// CreateIfAbsent inserts the vote unless the (voter, report) pair already
// holds one. Returns ErrDuplicate on the second and subsequent attempts, no
// matter how the attempts interleave.
func (s *InMemory) CreateIfAbsent(_ context.Context, v *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey{voter: v.VoterID, report: v.ReportID}
	if _, exists := s.votes[key]; exists {
		return sentinel.ErrDuplicate
	}
	cp := *v
	s.votes[key] = &cp
	return nil
}

// CountByReport recomputes the vote cardinality for a report.
func (s *InMemory) CountByReport(_ context.Context, reportID domain.ReportID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for key := range s.votes {
		if key.report == reportID {
			count++
		}
	}
	return count, nil
}

// CountByReports recomputes vote cardinalities for a set of reports in one pass.
func (s *InMemory) CountByReports(_ context.Context, reportIDs []domain.ReportID) (map[domain.ReportID]int, error) {
	wanted := make(map[domain.ReportID]bool, len(reportIDs))
	for _, id := range reportIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ReportID]int, len(reportIDs))
	for key := range s.votes {
		if wanted[key.report] {
			counts[key.report]++
		}
	}
	return counts, nil
}

// HasVoted reports whether the voter already holds a vote on the report.
func (s *InMemory) HasVoted(_ context.Context, voterID domain.UserID, reportID domain.ReportID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.votes[voteKey{voter: voterID, report: reportID}]
	return ok, nil
}

// Snapshot returns a deep copy of store state for the in-memory tx runner.
func (s *InMemory) Snapshot() []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make([]models.Vote, 0, len(s.votes))
	for _, v := range s.votes {
		snap = append(snap, *v)
	}
	return snap
}

// Restore replaces store state from a snapshot taken earlier.
func (s *InMemory) Restore(snap []models.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = make(map[voteKey]*models.Vote, len(snap))
	for _, v := range snap {
		cp := v
		s.votes[voteKey{voter: v.VoterID, report: v.ReportID}] = &cp
	}
}
