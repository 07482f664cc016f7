package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrity scans the ledger for posted entries that break double entry.
	TaskGLIntegrity = "ledger:gl_integrity"
)

// GLIntegrityPayload scopes an integrity scan. A zero CompanyID scans every
// company; WindowDays bounds how far back entry dates are inspected.
type GLIntegrityPayload struct {
	CompanyID  int64 `json:"company_id,omitempty"`
	WindowDays int   `json:"window_days"`
}

// NewGLIntegrityTask constructs an Asynq task for the integrity scan.
func NewGLIntegrityTask(companyID int64, windowDays int) (*asynq.Task, error) {
	data, err := json.Marshal(GLIntegrityPayload{CompanyID: companyID, WindowDays: windowDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, data), nil
}
