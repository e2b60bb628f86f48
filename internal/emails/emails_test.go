package emails

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		invalid []string
	}{
		{name: "empty", in: "", want: ""},
		{name: "blank", in: " , ;", want: ""},
		{name: "single", in: "ops@example.com", want: "ops@example.com"},
		{name: "mixed separators", in: "a@example.com; b@example.com\n c@example.com,", want: "a@example.com,b@example.com,c@example.com"},
		{name: "case insensitive duplicates", in: "Ops@Example.com, ops@example.com", want: "Ops@Example.com"},
		{name: "invalid", in: "a@example.com, not-an-email, b@", invalid: []string{"not-an-email", "b@"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateString(tt.in)
			if tt.invalid != nil {
				var invErr *InvalidError
				require.True(t, errors.As(err, &invErr), "expected *InvalidError, got %v", err)
				assert.Equal(t, tt.invalid, invErr.Addresses)
				assert.Equal(t, "", got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidError_Message(t *testing.T) {
	err := &InvalidError{Addresses: []string{"x", "y@"}}
	assert.Equal(t, "Invalid email address(es): x,y@", err.Error())
}
