package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"civicpulse/internal/authz"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
	"civicpulse/pkg/platform/sentinel"
)

// CastVote records the actor's vote on the report and returns the new vote
// count. A repeat vote fails with AlreadyVoted and changes nothing.
func (s *Service) CastVote(ctx context.Context, actor Actor, reportID domain.ReportID) (int, error) {
	ctx, span := s.tracer.Start(ctx, "report.CastVote")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", reportID.String()))

	if actor.Anonymous() || !authz.Allows(actor.Role, authz.ActionVote) {
		return 0, dErrors.New(dErrors.CodeForbidden, "not allowed to vote")
	}

	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "loading report")
	}

	var count int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = s.ledger.CastVote(ctx, actor.ID, reportID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
