package round

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	resultsDirName    = "results"
	processedFileName = "processed.json"
)

// ErrNoResults is returned when an experiment has no processed results yet.
var ErrNoResults = errors.New("no results available")

// WriteResults persists processed round results under the experiment's
// results directory. Local runs pass []*result.Result; results fetched from
// a coordinator are stored in their document form.
func WriteResults(experimentPath string, results any) error {
	dir := filepath.Join(experimentPath, resultsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, processedFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// ReadResults loads previously processed results of an experiment. Results
// are returned as generic documents; decoded instruction types are not
// reconstructed from JSON.
func ReadResults(experimentPath string) ([]map[string]any, error) {
	path := filepath.Join(experimentPath, resultsDirName, processedFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, experimentPath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	var results []map[string]any
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing results: %w", err)
	}
	return results, nil
}
