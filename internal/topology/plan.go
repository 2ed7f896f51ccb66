package topology

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/imamik/cephrig/internal/config"
)

// RenderPlan serializes plays as a YAML playbook. Order is preserved.
func RenderPlan(plays []config.Play) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(plays); err != nil {
		return nil, fmt.Errorf("failed to encode playbook: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode playbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtraVars encodes vars as the JSON object passed to --extra-vars. Keys
// are sorted.
func ExtraVars(vars map[string]any) (string, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(vars); err != nil {
		return "", fmt.Errorf("failed to encode extra vars: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// renderGroupVars serializes one group_vars file.
func renderGroupVars(vars map[string]any) ([]byte, error) {
	out, err := yaml.Marshal(vars)
	if err != nil {
		return nil, err
	}
	return append([]byte("---\n"), out...), nil
}
