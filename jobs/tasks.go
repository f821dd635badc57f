package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeProposalRender renders the proposal PDF for a generated quote.
	TaskTypeProposalRender = "proposal:render"
)

// ProposalRenderPayload identifies the quote whose proposal should render.
type ProposalRenderPayload struct {
	QuoteID int64 `json:"quote_id"`
}

// NewProposalRenderTask constructs an Asynq task.
func NewProposalRenderTask(payload ProposalRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProposalRender, data), nil
}

// Enqueuer pushes tasks onto the queue; it satisfies the quotes service's
// enqueue dependency.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueProposalRender schedules the proposal PDF for the quote.
func (e *Enqueuer) EnqueueProposalRender(ctx context.Context, quoteID int64) error {
	task, err := NewProposalRenderTask(ProposalRenderPayload{QuoteID: quoteID})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}
