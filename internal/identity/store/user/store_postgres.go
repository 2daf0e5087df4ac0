package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"civicpulse/internal/identity/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
	txcontext "civicpulse/pkg/platform/tx"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL. This store is pure I/O; point
// amounts and authorization live in the services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, role, points, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		u.ID.String(), u.Email, u.DisplayName, u.Role.String(), u.Points, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(display_name, ''), role, points, created_at
		FROM users
		WHERE id = $1
	`
	return scanUser(s.execer(ctx).QueryRowContext(ctx, query, id.String()))
}

// IncrementPoints adds delta atomically at the database, never read-modify-write
// in application code, so concurrent credits are not lost.
func (s *PostgresStore) IncrementPoints(ctx context.Context, id domain.UserID, delta int) error {
	query := `
		UPDATE users
		SET points = points + $2
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, id.String(), delta)
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TopByPoints(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT id, email, COALESCE(display_name, ''), role, points, created_at
		FROM users
		ORDER BY points DESC, id
		LIMIT $1
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top users by points: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*models.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return u, err
}

func scanUserRow(row rowScanner) (*models.User, error) {
	var u models.User
	var idStr, roleStr string
	if err := row.Scan(&idStr, &u.Email, &u.DisplayName, &roleStr, &u.Points, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	uid, err := domain.ParseUserID(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan user id: %w", err)
	}
	u.ID = uid
	u.Role = domain.Role(roleStr)
	return &u, nil
}
