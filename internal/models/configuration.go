package models

import "time"

// Configuration holds console-wide settings. There is normally a single row (id 1).
type Configuration struct {
	ID                  int       `json:"id"`
	EnableScanRetention bool      `json:"enable_scan_retention"`
	ScanRetentionInDays int       `json:"scan_retention_in_days"`
	Created             time.Time `json:"created"`
	LastUpdated         time.Time `json:"last_updated"`
}
