package models

import "time"

// GloballyExcludedTarget is a set of targets that is never scanned, whatever the site says.
// GloballyExcludedTargets is stored in nmap form (space separated).
type GloballyExcludedTarget struct {
	ID                      int       `json:"id"`
	GloballyExcludedTargets string    `json:"globally_excluded_targets"`
	Note                    string    `json:"note"`
	Created                 time.Time `json:"created"`
	LastUpdated             time.Time `json:"last_updated"`
}
