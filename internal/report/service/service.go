// Package service orchestrates the report lifecycle: submission through the
// text pipeline, voting and moderation through the engagement ledger, and the
// public read surface.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"civicpulse/internal/engagement/leaderboard"
	usermodels "civicpulse/internal/identity/models"
	"civicpulse/internal/notify"
	"civicpulse/internal/pipeline"
	"civicpulse/internal/report/metrics"
	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
)

// Actor identifies the authenticated caller of a use case. The zero value is
// an anonymous caller and is denied every mutating action.
type Actor struct {
	ID   domain.UserID
	Role domain.Role
}

func (a Actor) Anonymous() bool { return a.ID.IsNil() }

// ReportStore persists reports.
type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, id domain.ReportID) (*models.Report, error)
	UpdateStatus(ctx context.Context, id domain.ReportID, status domain.Status) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Report, error)
}

// UserStore provides the identity reads the report surface needs.
type UserStore interface {
	FindByID(ctx context.Context, id domain.UserID) (*usermodels.User, error)
	TopByPoints(ctx context.Context, limit int) ([]*usermodels.User, error)
}

// Ledger is the engagement ledger collaborator.
type Ledger interface {
	CastVote(ctx context.Context, voterID domain.UserID, reportID domain.ReportID) (int, error)
	Credit(ctx context.Context, userID domain.UserID, amount int) error
	HasVoted(ctx context.Context, voterID domain.UserID, reportID domain.ReportID) (bool, error)
	VoteCounts(ctx context.Context, reportIDs []domain.ReportID) (map[domain.ReportID]int, error)
}

// Pipeline turns raw text into clean text and a category.
type Pipeline interface {
	Process(ctx context.Context, raw string) pipeline.Result
}

// RankedBoard reads the cached leaderboard.
type RankedBoard interface {
	Top(ctx context.Context, n int) ([]leaderboard.Entry, error)
}

// TxRunner executes fn with commit-or-nothing semantics. The context passed
// to fn carries the transaction; stores pick it up transparently.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	reports  ReportStore
	users    UserStore
	ledger   Ledger
	pipe     Pipeline
	tx       TxRunner
	board    RankedBoard
	notifier notify.Publisher
	logger   *slog.Logger
	m        *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.m = m
	}
}

func WithNotifier(p notify.Publisher) Option {
	return func(s *Service) {
		s.notifier = p
	}
}

// WithBoard attaches the leaderboard cache used by Leaderboard reads.
func WithBoard(b RankedBoard) Option {
	return func(s *Service) {
		s.board = b
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(reports ReportStore, users UserStore, ledger Ledger, pipe Pipeline, tx TxRunner, opts ...Option) *Service {
	s := &Service{
		reports:  reports,
		users:    users,
		ledger:   ledger,
		pipe:     pipe,
		tx:       tx,
		notifier: notify.Noop{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("civicpulse/report"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"kind", event.Kind,
			"report_id", event.ReportID.String(),
			"error", err,
		)
	}
}
