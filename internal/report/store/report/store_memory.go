package report

import (
	"context"
	"sort"
	"strings"
	"sync"

	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
)

// InMemory keeps reports in a mutex-guarded map.
type InMemory struct {
	mu      sync.RWMutex
	reports map[domain.ReportID]*models.Report
}

func NewInMemory() *InMemory {
	return &InMemory{reports: make(map[domain.ReportID]*models.Report)}
}

func (s *InMemory) Create(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[r.ID]; exists {
		return sentinel.ErrDuplicate
	}
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ReportID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// UpdateStatus persists a status change. Only status is mutable post-creation.
func (s *InMemory) UpdateStatus(_ context.Context, id domain.ReportID, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	return nil
}

// List applies filter, search and recency ordering over the report set.
// Vote-count ordering is a service concern (counts are derived from the vote
// store), so most_votes is treated as newest here.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Report
	for _, r := range s.reports {
		if !matches(r, filter) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sortReports(out, filter.Sort)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(r *models.Report, filter models.ListFilter) bool {
	if filter.Status != "" && r.Status != filter.Status {
		return false
	}
	if filter.Uncategorized && !r.Category.IsZero() {
		return false
	}
	if !filter.Category.IsZero() && r.Category != filter.Category {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(r.RawText), needle) &&
			!strings.Contains(strings.ToLower(r.CleanText), needle) {
			return false
		}
	}
	return true
}

func sortReports(reports []*models.Report, order models.Sort) {
	sort.SliceStable(reports, func(i, j int) bool {
		if order == models.SortOldest {
			return reports[i].CreatedAt.Before(reports[j].CreatedAt)
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

// Snapshot returns a deep copy of store state for the in-memory tx runner.
func (s *InMemory) Snapshot() map[domain.ReportID]*models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[domain.ReportID]*models.Report, len(s.reports))
	for id, r := range s.reports {
		cp := *r
		snap[id] = &cp
	}
	return snap
}

// Restore replaces store state from a snapshot taken earlier.
func (s *InMemory) Restore(snap map[domain.ReportID]*models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = make(map[domain.ReportID]*models.Report, len(snap))
	for id, r := range snap {
		cp := *r
		s.reports[id] = &cp
	}
}
