package validate

import (
	"errors"

	"github.com/crucial707/scantron/internal/emails"
	"github.com/crucial707/scantron/internal/models"
)

// Messages for site consistency checks.
const (
	MsgAlertsNeedAddress = "Provide an email address if enabling 'Email scan alerts'"
	MsgDiffNeedAddress   = "Provide an email address if enabling 'Email nmap scan diff'"
	MsgEngineAndPool     = "Only select a single scan engine or scan engine pool."
	MsgEngineOrPool      = "Select a single scan engine or scan engine pool."
)

// SiteInput is the writable part of a site.
type SiteInput struct {
	SiteName               *string     `json:"site_name" validate:"omitempty,max=255"`
	Description            *string     `json:"description" validate:"omitempty,max=255"`
	Targets                *string     `json:"targets"`
	ExcludedTargets        *string     `json:"excluded_targets"`
	ScanCommand            *int        `json:"scan_command"`
	ScanEngine             NullableInt `json:"scan_engine"`
	ScanEnginePool         NullableInt `json:"scan_engine_pool"`
	EmailScanAlerts        *bool       `json:"email_scan_alerts"`
	EmailAlertAddresses    *string     `json:"email_alert_addresses"`
	EmailScanDiff          *bool       `json:"email_scan_diff"`
	EmailScanDiffAddresses *string     `json:"email_scan_diff_addresses"`
}

// Site validates the keys present in in and normalizes targets and email lists in place.
// When partial is false the required keys must all be present.
func Site(in *SiteInput, partial bool) error {
	fields := make(map[string]string)
	required(fields, partial, "site_name", in.SiteName)
	required(fields, partial, "targets", in.Targets)
	if in.ScanCommand == nil {
		if !partial {
			fields["scan_command"] = "required"
		}
	} else if *in.ScanCommand <= 0 {
		fields["scan_command"] = "invalid id"
	}
	if in.ScanEngine.Value != nil && *in.ScanEngine.Value <= 0 {
		fields["scan_engine"] = "invalid id"
	}
	if in.ScanEnginePool.Value != nil && *in.ScanEnginePool.Value <= 0 {
		fields["scan_engine_pool"] = "invalid id"
	}
	checkStruct(in, fields)
	if err := fieldsError(fields); err != nil {
		return err
	}

	if in.Targets != nil {
		if err := normalizeTargets("targets", "targets", in.Targets); err != nil {
			return err
		}
	}
	if in.ExcludedTargets != nil {
		if err := normalizeTargets("excluded_targets", "excluded targets", in.ExcludedTargets); err != nil {
			return err
		}
	}

	if in.EmailScanAlerts != nil && in.EmailAlertAddresses != nil {
		if *in.EmailScanAlerts && len(emails.Split(*in.EmailAlertAddresses)) == 0 {
			return fieldError("email_alert_addresses", MsgAlertsNeedAddress)
		}
	}
	if in.EmailAlertAddresses != nil {
		if err := normalizeEmails("email_alert_addresses", in.EmailAlertAddresses); err != nil {
			return err
		}
	}

	if in.EmailScanDiff != nil && in.EmailScanDiffAddresses != nil {
		if *in.EmailScanDiff && len(emails.Split(*in.EmailScanDiffAddresses)) == 0 {
			return fieldError("email_scan_diff_addresses", MsgDiffNeedAddress)
		}
	}
	if in.EmailScanDiffAddresses != nil {
		if err := normalizeEmails("email_scan_diff_addresses", in.EmailScanDiffAddresses); err != nil {
			return err
		}
	}
	return nil
}

func normalizeEmails(field string, s *string) error {
	cleaned, err := emails.ValidateString(*s)
	if err != nil {
		var invErr *emails.InvalidError
		if errors.As(err, &invErr) {
			return fieldError(field, invErr.Error())
		}
		return err
	}
	*s = cleaned
	return nil
}

// Apply copies the keys present in in onto s.
func (in *SiteInput) Apply(s *models.Site) {
	if in.SiteName != nil {
		s.SiteName = *in.SiteName
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Targets != nil {
		s.Targets = *in.Targets
	}
	if in.ExcludedTargets != nil {
		s.ExcludedTargets = *in.ExcludedTargets
	}
	if in.ScanCommand != nil {
		s.ScanCommand = *in.ScanCommand
	}
	if in.ScanEngine.Set {
		s.ScanEngine = in.ScanEngine.Value
	}
	if in.ScanEnginePool.Set {
		s.ScanEnginePool = in.ScanEnginePool.Value
	}
	if in.EmailScanAlerts != nil {
		s.EmailScanAlerts = *in.EmailScanAlerts
	}
	if in.EmailAlertAddresses != nil {
		s.EmailAlertAddresses = *in.EmailAlertAddresses
	}
	if in.EmailScanDiff != nil {
		s.EmailScanDiff = *in.EmailScanDiff
	}
	if in.EmailScanDiffAddresses != nil {
		s.EmailScanDiffAddresses = *in.EmailScanDiffAddresses
	}
}

// SiteRecord checks the merged site has exactly one of engine and engine pool. Email settings are
// only checked by Site, against the keys the request carries.
func SiteRecord(s *models.Site) error {
	switch {
	case s.ScanEngine != nil && s.ScanEnginePool != nil:
		return fieldError("scan_engine", MsgEngineAndPool)
	case s.ScanEngine == nil && s.ScanEnginePool == nil:
		return fieldError("scan_engine", MsgEngineOrPool)
	}
	return nil
}
