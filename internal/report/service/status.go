package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"civicpulse/internal/authz"
	engagement "civicpulse/internal/engagement/service"
	"civicpulse/internal/notify"
	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
	"civicpulse/pkg/platform/sentinel"
)

// ChangeStatus moves the report to target. Any status may transition to any
// other. Setting the current status again is a permitted no-op and credits
// nothing. A real transition credits the moderator and publishes an event
// after commit.
func (s *Service) ChangeStatus(ctx context.Context, actor Actor, reportID domain.ReportID, target domain.Status) (*models.Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.ChangeStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.id", reportID.String()),
		attribute.String("report.target_status", string(target)),
	)

	if actor.Anonymous() || !authz.Allows(actor.Role, authz.ActionChangeStatus) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to change report status")
	}

	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading report")
	}

	if report.Status == target {
		return report, nil
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.reports.UpdateStatus(ctx, reportID, target); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "report not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "updating report status")
		}
		return s.ledger.Credit(ctx, actor.ID, engagement.PointsStatusChange)
	})
	if err != nil {
		return nil, err
	}
	report.Status = target

	if s.m != nil {
		s.m.StatusChanges.WithLabelValues(string(target)).Inc()
	}
	s.logger.InfoContext(ctx, "report status changed",
		"report_id", reportID.String(),
		"status", string(target),
		"actor_id", actor.ID.String(),
	)

	s.publish(ctx, notify.Event{
		Kind:       notify.KindReportStatusChanged,
		ReportID:   report.ID,
		AuthorID:   report.AuthorID,
		Status:     target,
		Category:   report.Category,
		OccurredAt: s.now().UTC(),
	})
	return report, nil
}
