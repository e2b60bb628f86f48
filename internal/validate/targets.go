package validate

import (
	"fmt"
	"strings"

	"github.com/crucial707/scantron/internal/targets"
)

// normalizeTargets parses *s in place into nmap form. label names the field in the error message.
func normalizeTargets(field, label string, s *string) error {
	r := targets.Extract(*s)
	if !r.Valid() {
		return fieldError(field, fmt.Sprintf("Invalid %s provided: %s", label, strings.Join(r.InvalidTargets, ",")))
	}
	*s = r.AsNmap()
	return nil
}

// GloballyExcludedTargetInput is the writable part of a globally excluded target.
type GloballyExcludedTargetInput struct {
	GloballyExcludedTargets *string `json:"globally_excluded_targets"`
	Note                    *string `json:"note" validate:"omitempty,max=255"`
}

// GloballyExcludedTarget validates in and normalizes its targets.
func GloballyExcludedTarget(in *GloballyExcludedTargetInput, partial bool) error {
	fields := make(map[string]string)
	required(fields, partial, "globally_excluded_targets", in.GloballyExcludedTargets)
	checkStruct(in, fields)
	if err := fieldsError(fields); err != nil {
		return err
	}
	if in.GloballyExcludedTargets != nil {
		if err := normalizeTargets("globally_excluded_targets", "globally excluded targets", in.GloballyExcludedTargets); err != nil {
			return err
		}
	}
	return nil
}
