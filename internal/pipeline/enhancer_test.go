package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"civicpulse/pkg/domain"
)

type enhancerFunc func(ctx context.Context, raw string) (Result, error)

func (f enhancerFunc) Enhance(ctx context.Context, raw string) (Result, error) {
	return f(ctx, raw)
}

func TestProcessor_NoEnhancerUsesRuleEngine(t *testing.T) {
	p := NewProcessor()
	res := p.Process(context.Background(), "garbage piling up near my house")
	assert.Equal(t, "Garbage Piling Up Near My House", res.CleanText)
	assert.Equal(t, domain.CategorySanitation, res.Category)
}

func TestProcessor_SuccessfulEnhancerSubstitutes(t *testing.T) {
	p := NewProcessor(WithEnhancer(enhancerFunc(func(_ context.Context, _ string) (Result, error) {
		return Result{CleanText: "Uncollected waste on Elm Street.", Category: domain.CategorySanitation}, nil
	})))

	res := p.Process(context.Background(), "garbage near elm street")
	assert.Equal(t, "Uncollected waste on Elm Street.", res.CleanText)
	assert.Equal(t, domain.CategorySanitation, res.Category)
}

func TestProcessor_FailingEnhancerFallsBack(t *testing.T) {
	var calls atomic.Int32
	p := NewProcessor(WithEnhancer(enhancerFunc(func(_ context.Context, _ string) (Result, error) {
		calls.Add(1)
		return Result{}, errors.New("model unavailable")
	})))

	res := p.Process(context.Background(), "garbage piling up near my house")
	assert.Equal(t, "Garbage Piling Up Near My House", res.CleanText)
	assert.Equal(t, domain.CategorySanitation, res.Category)
	// initial attempt plus bounded retries, never unbounded
	assert.Equal(t, int32(3), calls.Load())
}

func TestProcessor_SlowEnhancerTimesOutAndFallsBack(t *testing.T) {
	p := NewProcessor(
		WithAttemptTimeout(10*time.Millisecond),
		WithEnhancer(enhancerFunc(func(ctx context.Context, _ string) (Result, error) {
			<-ctx.Done()
			return Result{}, ctx.Err()
		})),
	)

	res := p.Process(context.Background(), "deep pothole on main road")
	assert.Equal(t, domain.CategoryRoad, res.Category)
	assert.Equal(t, "Deep Pothole On Main Road", res.CleanText)
}

func TestProcessor_InvalidEnhancerCategoryFallsBack(t *testing.T) {
	p := NewProcessor(WithEnhancer(enhancerFunc(func(_ context.Context, _ string) (Result, error) {
		return Result{CleanText: "Pothole report.", Category: "infrastructure"}, nil
	})))

	res := p.Process(context.Background(), "pothole on main road")
	assert.Equal(t, "Pothole report.", res.CleanText)
	assert.Equal(t, domain.CategoryRoad, res.Category)
}
