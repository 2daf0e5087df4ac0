package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"civicpulse/internal/authz"
	engagement "civicpulse/internal/engagement/service"
	"civicpulse/internal/notify"
	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
)

// SubmitInput carries a validated submission. ImageRef, if set, is the
// reference returned by the blob store; the service never touches raw bytes.
type SubmitInput struct {
	RawText  string
	Location *models.Location
	ImageRef string
}

// Submit creates a report for the actor. The raw text is run through the
// pipeline once; the report is created pending and the author is credited,
// both inside one unit of work. The submitted event is published after
// commit, best effort.
func (s *Service) Submit(ctx context.Context, actor Actor, input SubmitInput) (*models.Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.Submit")
	defer span.End()

	if actor.Anonymous() || !authz.Allows(actor.Role, authz.ActionSubmitReport) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to submit reports")
	}
	if len(strings.TrimSpace(input.RawText)) < models.MinDescriptionLength {
		return nil, dErrors.New(dErrors.CodeValidation, "description must be at least 10 characters")
	}

	result := s.pipe.Process(ctx, input.RawText)

	report, err := models.NewReport(
		domain.NewReportID(),
		actor.ID,
		input.RawText,
		result.CleanText,
		result.Category,
		input.Location,
		input.ImageRef,
		s.now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("report.id", report.ID.String()),
		attribute.String("report.category", string(report.Category)),
	)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.reports.Create(ctx, report); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "creating report")
		}
		return s.ledger.Credit(ctx, actor.ID, engagement.PointsSubmitReport)
	})
	if err != nil {
		return nil, err
	}

	if s.m != nil {
		s.m.Submitted.Inc()
		category := string(report.Category)
		if report.Category.IsZero() {
			category = string(domain.CategoryUncategorized)
		}
		s.m.Categorized.WithLabelValues(category).Inc()
	}
	s.logger.InfoContext(ctx, "report submitted",
		"report_id", report.ID.String(),
		"author_id", actor.ID.String(),
		"category", string(report.Category),
	)

	s.publish(ctx, notify.Event{
		Kind:       notify.KindReportSubmitted,
		ReportID:   report.ID,
		AuthorID:   report.AuthorID,
		Status:     report.Status,
		Category:   report.Category,
		OccurredAt: report.CreatedAt,
	})
	return report, nil
}
