package config

import (
	"fmt"
	"strings"
)

// OutputFormat selects how the article listing is rendered
type OutputFormat string

const (
	OutputPretty OutputFormat = "pretty"
	OutputJSON   OutputFormat = "json"
	OutputYAML   OutputFormat = "yaml"
)

// ValidateOutput checks if the given string is a supported output format.
// An empty string selects pretty.
func ValidateOutput(format string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(format)) {
	case "", OutputPretty:
		return OutputPretty, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputYAML:
		return OutputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: must be 'pretty', 'json', or 'yaml'", format)
	}
}

// ValidateLogLevel checks if the given string is a supported log level
func ValidateLogLevel(level string) (string, error) {
	switch l := strings.ToLower(level); l {
	case "debug", "info", "warn", "error":
		return l, nil
	case "":
		return "warn", nil
	default:
		return "", fmt.Errorf("unsupported log level %q: must be 'debug', 'info', 'warn', or 'error'", level)
	}
}
