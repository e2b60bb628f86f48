package models

import "time"

// Scheduled scan statuses. Engines move a scan from pending through started to a terminal state;
// "pause" and "cancel" are requests set by operators that the engine acknowledges with
// "paused" and "cancelled".
const (
	ScanStatusPending   = "pending"
	ScanStatusStarted   = "started"
	ScanStatusPause     = "pause"
	ScanStatusPaused    = "paused"
	ScanStatusCancel    = "cancel"
	ScanStatusCancelled = "cancelled"
	ScanStatusCompleted = "completed"
	ScanStatusError     = "error"
)

// ScanStatuses lists every valid scan_status value.
var ScanStatuses = []string{
	ScanStatusPending, ScanStatusStarted, ScanStatusPause, ScanStatusPaused,
	ScanStatusCancel, ScanStatusCancelled, ScanStatusCompleted, ScanStatusError,
}

// IsTerminalStatus reports whether a scan in this status will not run again.
func IsTerminalStatus(status string) bool {
	switch status {
	case ScanStatusCompleted, ScanStatusCancelled, ScanStatusError:
		return true
	}
	return false
}

// ScheduledScan is one concrete run of a Scan on one engine. Everything up to ExcludedTargets is
// copied from the site at materialization time and never changes afterwards.
type ScheduledScan struct {
	ID                  int        `json:"id"`
	SiteName            string     `json:"site_name"`
	ScanEngine          string     `json:"scan_engine"`
	StartDatetime       time.Time  `json:"start_datetime"`
	ScanBinary          string     `json:"scan_binary"`
	ScanCommand         string     `json:"scan_command"`
	Targets             string     `json:"targets"`
	ExcludedTargets     string     `json:"excluded_targets"`
	ScanStatus          string     `json:"scan_status"`
	CompletedTime       *time.Time `json:"completed_time"`
	ResultFileBaseName  string     `json:"result_file_base_name"`
	ScanBinaryProcessID *int       `json:"scan_binary_process_id"`
}
