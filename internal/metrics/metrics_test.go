package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/v1/sites/123", "/v1/sites/{id}"},
		{"/v1/engines/9/rotate_token", "/v1/engines/{id}/rotate_token"},
		{"/v1/sites", "/v1/sites"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(JobRuns.WithLabelValues("retention", "error"))
	RecordJob("retention", errors.New("boom"))
	if got := testutil.ToFloat64(JobRuns.WithLabelValues("retention", "error")); got != before+1 {
		t.Errorf("retention/error = %v, want %v", got, before+1)
	}
}
