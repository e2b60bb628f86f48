package models

import "time"

// Engine is a scan worker that polls the console for scheduled scans.
type Engine struct {
	ID          int        `json:"id"`
	ScanEngine  string     `json:"scan_engine"`
	Description string     `json:"description"`
	APIToken    string     `json:"api_token"`
	LastCheckin *time.Time `json:"last_checkin"`
	Created     time.Time  `json:"created"`
	LastUpdated time.Time  `json:"last_updated"`
}

// EnginePool groups engines so a site's targets can be spread across them.
type EnginePool struct {
	ID             int       `json:"id"`
	EnginePoolName string    `json:"engine_pool_name"`
	ScanEngines    []int     `json:"scan_engines"`
	Created        time.Time `json:"created"`
	LastUpdated    time.Time `json:"last_updated"`
}
