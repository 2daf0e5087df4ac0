package vote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
	txcontext "civicpulse/pkg/platform/tx"
)

// PostgresStore persists votes in PostgreSQL. The UNIQUE (voter_id, report_id)
// index is the authority for the one-vote-per-user-per-report invariant; the
// insert relies on ON CONFLICT DO NOTHING so concurrent duplicates resolve to
// exactly one winner inside the database, never in application code.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

// CreateIfAbsent inserts the vote unless the (voter, report) pair already
// holds one. Returns ErrDuplicate when the unique index rejected the insert.
func (s *PostgresStore) CreateIfAbsent(ctx context.Context, v *models.Vote) error {
	query := `
		INSERT INTO votes (id, voter_id, report_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (voter_id, report_id) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		v.ID.String(), v.VoterID.String(), v.ReportID.String(), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("create vote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create vote: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrDuplicate
	}
	return nil
}

// CountByReport recomputes the vote cardinality by aggregation; there is no
// maintained counter to drift.
func (s *PostgresStore) CountByReport(ctx context.Context, reportID domain.ReportID) (int, error) {
	query := `SELECT COUNT(*) FROM votes WHERE report_id = $1`
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, query, reportID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

// CountByReports recomputes vote cardinalities for a set of reports.
// Reports with no votes are absent from the result map.
func (s *PostgresStore) CountByReports(ctx context.Context, reportIDs []domain.ReportID) (map[domain.ReportID]int, error) {
	if len(reportIDs) == 0 {
		return map[domain.ReportID]int{}, nil
	}
	ids := make([]string, len(reportIDs))
	for i, id := range reportIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT report_id, COUNT(*)
		FROM votes
		WHERE report_id = ANY($1)
		GROUP BY report_id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("count votes by reports: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ReportID]int, len(reportIDs))
	for rows.Next() {
		var idStr string
		var count int
		if err := rows.Scan(&idStr, &count); err != nil {
			return nil, fmt.Errorf("scan vote count: %w", err)
		}
		id, err := domain.ParseReportID(idStr)
		if err != nil {
			return nil, fmt.Errorf("scan vote count id: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// HasVoted reports whether the voter already holds a vote on the report.
func (s *PostgresStore) HasVoted(ctx context.Context, voterID domain.UserID, reportID domain.ReportID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM votes WHERE voter_id = $1 AND report_id = $2)`
	var exists bool
	if err := s.execer(ctx).QueryRowContext(ctx, query, voterID.String(), reportID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("has voted: %w", err)
	}
	return exists, nil
}
