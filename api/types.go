package api

import (
	"time"

	"github.com/d1childress/neoTUI/scanner"
)

// Task statuses, in lifecycle order.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanTask represents one asynchronous port scan managed by the API.
type ScanTask struct {
	// ID is the immutable identifier of the task (UUID v4).
	ID string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	// Status reflects the task lifecycle: pending, running, completed, failed.
	Status string `json:"status" enums:"pending,running,completed,failed" example:"pending"`
	// Host is the hostname or address the scan targets.
	Host string `json:"host" example:"scanme.nmap.org"`
	// Ports is the requested port expression: single port, comma list, or dash range.
	Ports string `json:"ports" example:"20-25"`
	// TimeoutMS is the per-probe connect timeout in milliseconds.
	TimeoutMS int `json:"timeout_ms" example:"300"`
	// Workers bounds the scan's worker pool.
	Workers int `json:"workers" example:"100"`
	// Report is attached once the task reaches the completed status. Open
	// ports are sorted for display; outcomes preserve completion order.
	Report *scanner.Report `json:"report,omitempty"`
	// CreatedAt records when the API accepted the task (UTC).
	CreatedAt time.Time `json:"created_at" format:"date-time"`
	// CompletedAt is set once the task reaches a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty" format:"date-time"`
	// Error explains why the task entered the failed status.
	Error string `json:"error,omitempty" example:"port spec out of range"`
}

// CreateScanRequest is the payload for submitting a new scan task.
type CreateScanRequest struct {
	// Host is the scan target: an IPv4/IPv6 literal or resolvable name.
	Host string `json:"host" binding:"required" example:"scanme.nmap.org"`
	// Ports is the port expression to scan, e.g. "22", "80,443,8080" or "1-1024".
	Ports string `json:"ports" binding:"required" example:"1-1024"`
	// TimeoutMS optionally overrides the per-probe timeout in milliseconds.
	TimeoutMS int `json:"timeout_ms" binding:"omitempty,min=1,max=60000" example:"300"`
	// Workers optionally overrides the worker pool bound.
	Workers int `json:"workers" binding:"omitempty,min=1,max=1024" example:"100"`
}

// ScanAcceptedResponse acknowledges an accepted scan task.
type ScanAcceptedResponse struct {
	// ID is the identifier to poll via GET /scans/{id}.
	ID string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	// Status is always pending immediately after acceptance.
	Status string `json:"status" enums:"pending" example:"pending"`
}

// ErrorResponse is the consistent error payload shape.
type ErrorResponse struct {
	// Error is a human-readable explanation of the failure.
	Error string `json:"error" example:"task not found"`
}
