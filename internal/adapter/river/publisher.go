package river

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// AssessmentEventArgs carries a create/update event through the job
// queue. It embeds a full snapshot of the assessment at publish time so
// the worker applies exactly what was published, never a later read.
type AssessmentEventArgs struct {
	Topic            string          `json:"topic"`
	TenantID         string          `json:"tenant_id"`
	AssessmentID     string          `json:"assessment_id"`
	AssessmentNumber string          `json:"assessment_number"`
	UserID           string          `json:"user_id"`
	Snapshot         json.RawMessage `json:"snapshot"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (AssessmentEventArgs) Kind() string { return "assessment.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
// The enqueue is the entire hand-off: delivery is at-least-once and no
// acknowledgment is awaited by callers. Ordering is program order on the
// publishing path only.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues the event with its assessment snapshot.
func (p *Publisher) Publish(ctx context.Context, topic string, request domain.AssessmentRequest) error {
	snapshot, err := json.Marshal(request.Assessment)
	if err != nil {
		return fmt.Errorf("encoding assessment snapshot: %w", err)
	}

	_, err = p.client.Insert(ctx, AssessmentEventArgs{
		Topic:            topic,
		TenantID:         request.Assessment.TenantID,
		AssessmentID:     request.Assessment.ID,
		AssessmentNumber: request.Assessment.AssessmentNumber,
		UserID:           request.RequestInfo.UserID,
		Snapshot:         snapshot,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
