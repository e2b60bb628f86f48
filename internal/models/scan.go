package models

import "time"

// Scan schedules a site. Recurrences is a cron spec; when empty the scan runs once at StartTime.
type Scan struct {
	ID          int       `json:"id"`
	Site        int       `json:"site"`
	ScanName    string    `json:"scan_name"`
	EnableScan  bool      `json:"enable_scan"`
	StartTime   time.Time `json:"start_time"`
	Recurrences string    `json:"recurrences"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`
}
