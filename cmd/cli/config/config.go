package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".scantron_token"
)

// v holds CLI settings: flags bound by BindFlags, then SCANTRON_* environment variables, then defaults.
var v = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("scantron")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("api-url", defaultAPIURL)
	v.SetDefault("output", "table")
	return v
}

// BindFlags lets the root command's persistent flags override the environment.
func BindFlags(flags *pflag.FlagSet) error {
	for _, name := range []string{"api-url", "output"} {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// APIURL returns the base URL of the Scantron API without a trailing slash.
// It can be overridden with --api-url or SCANTRON_API_URL.
func APIURL() string {
	return strings.TrimRight(v.GetString("api-url"), "/")
}

// Output returns the output format: table (default), json or yaml.
// It can be overridden with --output or SCANTRON_OUTPUT.
func Output() string {
	return strings.ToLower(v.GetString("output"))
}

// TokenPath is where the login token is kept. SCANTRON_TOKEN_FILE overrides the default
// ~/.scantron_token.
func TokenPath() string {
	if p := v.GetString("token-file"); p != "" {
		return p
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, tokenFileName)
}

// SaveToken stores token readable only by the current user.
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0o600)
}

// LoadToken returns the stored token, or "" when none is stored.
func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearToken removes the stored token. It reports whether a token was present.
func ClearToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
