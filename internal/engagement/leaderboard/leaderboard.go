// Package leaderboard keeps a Redis sorted-set mirror of user contribution
// points so that top-contributor queries do not hit the primary store.
// The mirror is advisory; the users table remains the source of truth.
package leaderboard

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
)

const key = "leaderboard:points"

// Entry is a single ranked row from the leaderboard.
type Entry struct {
	UserID domain.UserID
	Points int
}

type Leaderboard struct {
	client *redis.Client
	logger *slog.Logger
}

type Option func(*Leaderboard)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Leaderboard) {
		l.logger = logger
	}
}

func New(client *redis.Client, opts ...Option) *Leaderboard {
	l := &Leaderboard{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IncrBy adds amount to the user's leaderboard score.
func (l *Leaderboard) IncrBy(ctx context.Context, userID domain.UserID, amount int) error {
	if err := l.client.ZIncrBy(ctx, key, float64(amount), userID.String()).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "incrementing leaderboard score")
	}
	return nil
}

// Top returns the n highest-scoring users in descending order.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := l.client.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "reading leaderboard")
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		id, err := domain.ParseUserID(member)
		if err != nil {
			l.logger.Warn("skipping malformed leaderboard member", "member", member)
			continue
		}
		entries = append(entries, Entry{UserID: id, Points: int(row.Score)})
	}
	return entries, nil
}
