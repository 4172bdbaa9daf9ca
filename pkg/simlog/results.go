package simlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// resultsFile holds the simulator's raw per-round summary.
const resultsFile = "results.yaml"

// ReadRoundResult reads the simulator's results file. The raw content is
// passed through untouched into the Result; the participating node names are
// derived from the app_{node} keys of the first round entry, in document
// order.
func ReadRoundResult(dir string) (any, []string, error) {
	path := filepath.Join(dir, resultsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read round results: %w", err)
	}

	var roundResult any
	if err := yaml.Unmarshal(data, &roundResult); err != nil {
		return nil, nil, fmt.Errorf("%s: parse round results: %w", path, err)
	}

	nodes, err := nodeNames(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return roundResult, nodes, nil
}

// nodeNames extracts node names from the app_ keys of the first entry,
// preserving the file's key order so the log merge scans files
// deterministically.
func nodeNames(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode || len(doc.Content[0].Content) == 0 {
		return nil, fmt.Errorf("results file does not contain a round entry list")
	}

	first := doc.Content[0].Content[0]
	if first.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("first round entry is not a mapping")
	}

	var nodes []string
	for i := 0; i < len(first.Content); i += 2 {
		key := first.Content[i].Value
		if name, ok := strings.CutPrefix(key, "app_"); ok {
			nodes = append(nodes, name)
		}
	}
	return nodes, nil
}
