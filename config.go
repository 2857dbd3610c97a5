package main

import (
	"fmt"
	"os"

	"github.com/urbanlab/siting/planner"
	"gopkg.in/yaml.v3"
)

// ReadPolicy loads the selection policy from a YAML file. An empty path
// means defaults; unset keys keep their default value.
func ReadPolicy(path string) (planner.Policy, error) {
	pol := planner.DefaultPolicy()
	if path == "" {
		return pol, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pol, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &pol); err != nil {
		return pol, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return pol, nil
}
