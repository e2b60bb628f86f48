package targets

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_JSON(t *testing.T) {
	t.Setenv("SCANTRON_OUTPUT", "json")

	cmd := checkCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"10.0.0.7/24,", "Example.COM.", "192.168.1.1", "192.168.1.3", "--exclude", "192.168.1.3"})
	require.NoError(t, cmd.Execute())

	var res checkResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, []string{"192.168.1.1", "10.0.0.0/24", "example.com"}, res.Targets)
	assert.Equal(t, "192.168.1.1 10.0.0.0/24 example.com", res.Nmap)
	assert.Equal(t, uint64(1+256+1), res.Hosts)
	assert.Empty(t, res.InvalidTargets)
}

func TestCheck_InvalidTargets(t *testing.T) {
	t.Setenv("SCANTRON_OUTPUT", "table")

	cmd := checkCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"10.0.0.1", "not_a_host"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_a_host")
	assert.Contains(t, out.String(), "invalid")
}
