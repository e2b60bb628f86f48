package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/crucial707/scantron/internal/models"
	"github.com/robfig/cron/v3"
)

var engineNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,255}$`)

// ConfigurationInput is the writable part of the console configuration.
type ConfigurationInput struct {
	EnableScanRetention *bool `json:"enable_scan_retention"`
	ScanRetentionInDays *int  `json:"scan_retention_in_days"`
}

// Configuration validates in. There are no required keys.
func Configuration(in *ConfigurationInput) error {
	fields := make(map[string]string)
	if in.ScanRetentionInDays != nil && (*in.ScanRetentionInDays < 1 || *in.ScanRetentionInDays > 3650) {
		fields["scan_retention_in_days"] = "must be between 1 and 3650"
	}
	return fieldsError(fields)
}

// Apply copies the keys present in in onto c.
func (in *ConfigurationInput) Apply(c *models.Configuration) {
	if in.EnableScanRetention != nil {
		c.EnableScanRetention = *in.EnableScanRetention
	}
	if in.ScanRetentionInDays != nil {
		c.ScanRetentionInDays = *in.ScanRetentionInDays
	}
}

// EngineInput is the writable part of an engine. The API token is generated server side.
type EngineInput struct {
	ScanEngine  *string `json:"scan_engine"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// Engine validates in.
func Engine(in *EngineInput, partial bool) error {
	fields := make(map[string]string)
	required(fields, partial, "scan_engine", in.ScanEngine)
	if _, bad := fields["scan_engine"]; !bad && in.ScanEngine != nil && !engineNameRe.MatchString(*in.ScanEngine) {
		fields["scan_engine"] = "only letters, digits, '.', '_' and '-' are allowed"
	}
	checkStruct(in, fields)
	return fieldsError(fields)
}

// Apply copies the keys present in in onto e.
func (in *EngineInput) Apply(e *models.Engine) {
	if in.ScanEngine != nil {
		e.ScanEngine = *in.ScanEngine
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
}

// EnginePoolInput is the writable part of an engine pool.
type EnginePoolInput struct {
	EnginePoolName *string `json:"engine_pool_name" validate:"omitempty,max=255"`
	ScanEngines    *[]int  `json:"scan_engines"`
}

// EnginePool validates in and removes duplicate engine ids, keeping the first occurrence.
func EnginePool(in *EnginePoolInput, partial bool) error {
	fields := make(map[string]string)
	required(fields, partial, "engine_pool_name", in.EnginePoolName)
	if in.ScanEngines != nil {
		seen := make(map[int]struct{})
		ids := make([]int, 0, len(*in.ScanEngines))
		for _, id := range *in.ScanEngines {
			if id <= 0 {
				fields["scan_engines"] = "invalid id"
				break
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		*in.ScanEngines = ids
	}
	checkStruct(in, fields)
	return fieldsError(fields)
}

// Apply copies the keys present in in onto p.
func (in *EnginePoolInput) Apply(p *models.EnginePool) {
	if in.EnginePoolName != nil {
		p.EnginePoolName = *in.EnginePoolName
	}
	if in.ScanEngines != nil {
		p.ScanEngines = *in.ScanEngines
	}
}

// ScanCommandInput is the writable part of a scan command.
type ScanCommandInput struct {
	ScanBinary      *string `json:"scan_binary" validate:"omitempty,oneof=nmap masscan"`
	ScanCommandName *string `json:"scan_command_name" validate:"omitempty,max=255"`
	ScanCommand     *string `json:"scan_command" validate:"omitempty,max=1024"`
}

// ScanCommand validates in.
func ScanCommand(in *ScanCommandInput, partial bool) error {
	fields := make(map[string]string)
	required(fields, partial, "scan_binary", in.ScanBinary)
	required(fields, partial, "scan_command_name", in.ScanCommandName)
	required(fields, partial, "scan_command", in.ScanCommand)
	checkStruct(in, fields)
	return fieldsError(fields)
}

// Apply copies the keys present in in onto c.
func (in *ScanCommandInput) Apply(c *models.ScanCommand) {
	if in.ScanBinary != nil {
		c.ScanBinary = *in.ScanBinary
	}
	if in.ScanCommandName != nil {
		c.ScanCommandName = *in.ScanCommandName
	}
	if in.ScanCommand != nil {
		c.ScanCommand = *in.ScanCommand
	}
}

// ScanInput is the writable part of a scan.
type ScanInput struct {
	Site        *int       `json:"site"`
	ScanName    *string    `json:"scan_name" validate:"omitempty,max=255"`
	EnableScan  *bool      `json:"enable_scan"`
	StartTime   *time.Time `json:"start_time"`
	Recurrences *string    `json:"recurrences"`
}

// Scan validates in and trims the recurrence spec.
func Scan(in *ScanInput, partial bool) error {
	fields := make(map[string]string)
	if in.Site == nil {
		if !partial {
			fields["site"] = "required"
		}
	} else if *in.Site <= 0 {
		fields["site"] = "invalid id"
	}
	required(fields, partial, "scan_name", in.ScanName)
	if in.StartTime == nil && !partial {
		fields["start_time"] = "required"
	}
	if in.Recurrences != nil {
		*in.Recurrences = strings.TrimSpace(*in.Recurrences)
		if err := Recurrence(*in.Recurrences); err != nil {
			fields["recurrences"] = err.Error()
		}
	}
	checkStruct(in, fields)
	return fieldsError(fields)
}

// Recurrence checks a cron spec: five fields or a descriptor such as "@daily". Empty means
// the scan runs once.
func Recurrence(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return &Error{Message: "invalid cron spec: " + err.Error()}
	}
	return nil
}

// Apply copies the keys present in in onto s.
func (in *ScanInput) Apply(s *models.Scan) {
	if in.Site != nil {
		s.Site = *in.Site
	}
	if in.ScanName != nil {
		s.ScanName = *in.ScanName
	}
	if in.EnableScan != nil {
		s.EnableScan = *in.EnableScan
	}
	if in.StartTime != nil {
		s.StartTime = in.StartTime.UTC()
	}
	if in.Recurrences != nil {
		s.Recurrences = *in.Recurrences
	}
}

// ScheduledScanInput holds the only fields of a scheduled scan that may change after it is
// created. Every other field in the request body is ignored.
type ScheduledScanInput struct {
	ScanStatus          *string    `json:"scan_status" validate:"omitempty,oneof=pending started pause paused cancel cancelled completed error"`
	CompletedTime       *time.Time `json:"completed_time"`
	ResultFileBaseName  *string    `json:"result_file_base_name" validate:"omitempty,max=255"`
	ScanBinaryProcessID *int       `json:"scan_binary_process_id"`
}

// ScheduledScan validates in.
func ScheduledScan(in *ScheduledScanInput) error {
	fields := make(map[string]string)
	if in.ScanStatus != nil && *in.ScanStatus == "" {
		fields["scan_status"] = "may not be blank"
	}
	if in.ScanBinaryProcessID != nil && *in.ScanBinaryProcessID < 0 {
		fields["scan_binary_process_id"] = "must not be negative"
	}
	if in.ResultFileBaseName != nil && strings.ContainsAny(*in.ResultFileBaseName, `/\`) {
		fields["result_file_base_name"] = "must be a file name, not a path"
	}
	checkStruct(in, fields)
	return fieldsError(fields)
}

// Apply copies the keys present in in onto s. A terminal status without a completion time
// is stamped with now.
func (in *ScheduledScanInput) Apply(s *models.ScheduledScan, now time.Time) {
	if in.ScanStatus != nil {
		s.ScanStatus = *in.ScanStatus
	}
	if in.CompletedTime != nil {
		t := in.CompletedTime.UTC()
		s.CompletedTime = &t
	}
	if in.ResultFileBaseName != nil {
		s.ResultFileBaseName = *in.ResultFileBaseName
	}
	if in.ScanBinaryProcessID != nil {
		pid := *in.ScanBinaryProcessID
		s.ScanBinaryProcessID = &pid
	}
	if models.IsTerminalStatus(s.ScanStatus) && s.CompletedTime == nil {
		t := now.UTC()
		s.CompletedTime = &t
	}
}
