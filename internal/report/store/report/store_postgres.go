package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
	txcontext "civicpulse/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists reports in PostgreSQL. Pure I/O; lifecycle rules and
// authorization live in the services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Report) error {
	query := `
		INSERT INTO reports (id, author_id, raw_text, clean_text, category, status, latitude, longitude, image_ref, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), $10)
	`
	var lat, lon sql.NullFloat64
	if r.Location != nil {
		lat = sql.NullFloat64{Float64: r.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: r.Location.Longitude, Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		r.ID.String(), r.AuthorID.String(), r.RawText, r.CleanText, r.Category.String(),
		r.Status.String(), lat, lon, r.ImageRef, r.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ReportID) (*models.Report, error) {
	query := selectReport + ` WHERE id = $1`
	r, err := scanReportRow(s.execer(ctx).QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.ReportID, status domain.Status) error {
	query := `
		UPDATE reports
		SET status = $2
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, id.String(), status.String())
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List applies filter, search and recency ordering. Vote-count ordering is a
// service concern, so most_votes is treated as newest here.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Report, error) {
	query := selectReport
	var args []any
	var where []string

	if filter.Status != "" {
		args = append(args, filter.Status.String())
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Uncategorized {
		where = append(where, "category IS NULL")
	} else if !filter.Category.IsZero() {
		args = append(args, filter.Category.String())
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(raw_text ILIKE $"+n+" OR clean_text ILIKE $"+n+")")
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	if filter.Sort == models.SortOldest {
		query += " ORDER BY created_at ASC, id"
	} else {
		query += " ORDER BY created_at DESC, id"
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		r, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

const selectReport = `
	SELECT id, author_id, raw_text, COALESCE(clean_text, ''), COALESCE(category, ''), status, latitude, longitude, COALESCE(image_ref, ''), created_at
	FROM reports`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReportRow(row rowScanner) (*models.Report, error) {
	var r models.Report
	var idStr, authorStr, categoryStr, statusStr string
	var lat, lon sql.NullFloat64
	err := row.Scan(&idStr, &authorStr, &r.RawText, &r.CleanText, &categoryStr, &statusStr, &lat, &lon, &r.ImageRef, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}

	id, err := domain.ParseReportID(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan report id: %w", err)
	}
	author, err := domain.ParseUserID(authorStr)
	if err != nil {
		return nil, fmt.Errorf("scan report author: %w", err)
	}
	r.ID = id
	r.AuthorID = author
	r.Category = domain.Category(categoryStr)
	r.Status = domain.Status(statusStr)
	if lat.Valid && lon.Valid {
		r.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return &r, nil
}
