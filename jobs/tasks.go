package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBillingGenerateDue sweeps seed invoices and generates what is due.
	TaskBillingGenerateDue = "billing:generate_due"
	// TaskBillingGenerateSeed generates the next invoice from one seed.
	TaskBillingGenerateSeed = "billing:generate_seed"
)

// GenerateDuePayload parameterises a generation sweep. The run ID keys the
// sweep in logs and in the idempotency table; cron-registered sweeps leave
// it empty since the scheduler re-enqueues the same payload every trigger.
type GenerateDuePayload struct {
	RunID string `json:"run_id,omitempty"`
}

// NewGenerateDueTask constructs the periodic sweep task for the scheduler.
func NewGenerateDueTask() (*asynq.Task, error) {
	data, err := json.Marshal(GenerateDuePayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingGenerateDue, data), nil
}

// NewManualSweepTask constructs a one-off sweep with a fresh run ID so a
// re-delivered task is not processed twice.
func NewManualSweepTask() (*asynq.Task, error) {
	data, err := json.Marshal(GenerateDuePayload{RunID: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingGenerateDue, data), nil
}

// GenerateSeedPayload targets a single seed invoice.
type GenerateSeedPayload struct {
	SeedID int64  `json:"seed_id"`
	Force  bool   `json:"force"`
	RunID  string `json:"run_id"`
}

// NewGenerateSeedTask constructs a single-seed generation task.
func NewGenerateSeedTask(seedID int64, force bool) (*asynq.Task, error) {
	data, err := json.Marshal(GenerateSeedPayload{SeedID: seedID, Force: force, RunID: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingGenerateSeed, data), nil
}
