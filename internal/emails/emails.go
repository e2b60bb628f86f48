// Package emails validates and normalizes the email address lists stored on sites.
package emails

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// InvalidError lists the addresses that failed validation.
type InvalidError struct {
	Addresses []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("Invalid email address(es): %s", strings.Join(e.Addresses, ","))
}

// Split breaks s on commas, semicolons and whitespace and drops empty entries.
func Split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// ValidateString checks every address in s and returns them comma separated, with duplicates
// (compared case-insensitively) removed. An empty s yields "". When any address is invalid an
// *InvalidError naming all of them is returned.
func ValidateString(s string) (string, error) {
	var (
		valid   []string
		invalid []string
		seen    = make(map[string]struct{})
	)
	for _, addr := range Split(s) {
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := validate.Var(addr, "required,email"); err != nil {
			invalid = append(invalid, addr)
			continue
		}
		valid = append(valid, addr)
	}
	if len(invalid) > 0 {
		return "", &InvalidError{Addresses: invalid}
	}
	return strings.Join(valid, ","), nil
}
