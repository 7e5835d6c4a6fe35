package sync

import (
	"time"
)

// Trigger identifies what started a sync pass.
type Trigger string

const (
	TriggerConnectivity Trigger = "connectivity"
	TriggerSchedule     Trigger = "schedule"
	TriggerManual       Trigger = "manual"
)

// PassSummary is the outcome of one drain pass.
type PassSummary struct {
	ID            string    `json:"id"`
	TriggeredBy   string    `json:"triggered_by"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Delivered     int       `json:"delivered"`
	Failed        int       `json:"failed"`
	Abandoned     int       `json:"abandoned"`
	RefreshErrors int       `json:"refresh_errors"`
}

// Status is the coordinator's point-in-time state, served by the
// diagnostics API.
type Status struct {
	Running     bool         `json:"running"`
	OutboxDepth int          `json:"outbox_depth"`
	LastPass    *PassSummary `json:"last_pass,omitempty"`
}
