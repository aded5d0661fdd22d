package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/sastops/sastctl/pkg/snyk"
	"github.com/sastops/sastctl/pkg/snykclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// YAML formatting.
	defaultYAMLIndent = 2

	Enabled  = "enabled"
	Disabled = "disabled"
)

// Common static errors used throughout the commands package.
var (
	ErrTokenRequired   = errors.New("no API token provided (set SNYK_TOKEN, use --token, or add it to the config file)")
	ErrGroupIDRequired = errors.New("group ID is required (use --group-id or set 'group' in the config file)")
	ErrNoOrganizations = errors.New("no organizations specified (pass IDs as arguments or use --from-report)")
)

// CreateClient builds a Snyk API client from the resolved configuration.
func CreateClient() (snyk.Client, error) {
	token, err := resolveToken()
	if err != nil {
		return nil, err
	}

	config := &snyk.Config{
		Token:       token,
		APIBaseURL:  viper.GetString("api-url"),
		RESTBaseURL: viper.GetString("rest-api-url"),
		APIVersion:  viper.GetString("api-version"),
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = NewLogger(true)
	}

	return snykclient.New(config)
}

// resolveToken returns the API token from flag, environment, or config file,
// prompting interactively as a last resort.
func resolveToken() (string, error) {
	if token := viper.GetString("token"); token != "" {
		return token, nil
	}

	if !term.IsTerminal(syscall.Stdin) {
		return "", ErrTokenRequired
	}

	fmt.Fprint(os.Stderr, "Snyk API token: ")

	raw, err := term.ReadPassword(syscall.Stdin)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	if len(raw) == 0 {
		return "", ErrTokenRequired
	}

	return string(raw), nil
}

// resolveGroupID returns the group ID from the flag or the config file.
func resolveGroupID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if group := viper.GetString("group"); group != "" {
		return group, nil
	}

	return "", ErrGroupIDRequired
}

// confirm prints a prompt and returns true when the user answers y/Y.
func confirm(prompt string) bool {
	_, _ = fmt.Fprintf(os.Stdout, "%s (y/N): ", prompt)

	var response string

	_, _ = fmt.Scanln(&response)

	return response == "y" || response == "Y"
}

// StandardJSONRenderer creates a standard JSON encoder.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer creates a standard YAML encoder.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultYAMLIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

func enabledWord(enabled bool) string {
	if enabled {
		return Enabled
	}

	return Disabled
}
