package models

import "time"

// Supported scan binaries.
const (
	ScanBinaryNmap    = "nmap"
	ScanBinaryMasscan = "masscan"
)

// ScanCommand is a named command line for a scan binary.
type ScanCommand struct {
	ID              int       `json:"id"`
	ScanBinary      string    `json:"scan_binary"`
	ScanCommandName string    `json:"scan_command_name"`
	ScanCommand     string    `json:"scan_command"`
	Created         time.Time `json:"created"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Site is a named set of targets with the command and engine (or engine pool) that scans them.
type Site struct {
	ID                     int       `json:"id"`
	SiteName               string    `json:"site_name"`
	Description            string    `json:"description"`
	Targets                string    `json:"targets"`
	ExcludedTargets        string    `json:"excluded_targets"`
	ScanCommand            int       `json:"scan_command"`
	ScanEngine             *int      `json:"scan_engine"`
	ScanEnginePool         *int      `json:"scan_engine_pool"`
	EmailScanAlerts        bool      `json:"email_scan_alerts"`
	EmailAlertAddresses    string    `json:"email_alert_addresses"`
	EmailScanDiff          bool      `json:"email_scan_diff"`
	EmailScanDiffAddresses string    `json:"email_scan_diff_addresses"`
	Created                time.Time `json:"created"`
	LastUpdated            time.Time `json:"last_updated"`
}
