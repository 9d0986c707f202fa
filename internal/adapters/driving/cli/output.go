package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func parseOutput(s string) (string, error) {
	switch s {
	case outputText, outputJSON, outputYAML:
		return s, nil
	case "":
		return outputText, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (want text, json or yaml)", domain.ErrInvalidInput, s)
	}
}

// render writes v as JSON or YAML, or calls text for the text format.
func render(cmd *cobra.Command, v any, text func()) error {
	format, err := parseOutput(outputFlag)
	if err != nil {
		return err
	}

	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Println(string(data))
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Print(string(data))
	default:
		text()
	}
	return nil
}

// structured reports whether output is JSON or YAML.
func structured() bool {
	return outputFlag == outputJSON || outputFlag == outputYAML
}
