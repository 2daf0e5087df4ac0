// Package notify publishes report lifecycle events to Kafka. Events are
// emitted after the owning transaction commits, so consumers may rely on
// the referenced report existing.
package notify

import (
	"context"
	"time"

	"civicpulse/pkg/domain"
)

// Event kinds carried on the reports topic.
const (
	KindReportSubmitted     = "report.submitted"
	KindReportStatusChanged = "report.status_changed"
)

// Event is a report lifecycle notification.
type Event struct {
	Kind       string          `json:"kind"`
	ReportID   domain.ReportID `json:"report_id"`
	AuthorID   domain.UserID   `json:"author_id"`
	Status     domain.Status   `json:"status"`
	Category   domain.Category `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Noop discards all events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close()                               {}
