package simlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/qnetlab/qne-adk/pkg/logging"
)

// Per-node log types produced by the simulator, each in its own file named
// {node}_{type}.yaml. The network-wide log has no node association.
const (
	logTypeInstructions = "instrs"
	logTypeClassComm    = "class_comm"
	logTypeAppLog       = "app_log"
	logTypeGeneric      = "generic"
)

var roleLogTypes = []string{logTypeInstructions, logTypeClassComm, logTypeAppLog}

var genericLogFiles = []string{"network_log.yaml"}

// logFile is one existing simulator log file and its classification.
type logFile struct {
	path    string
	logType string
	node    string
}

// Combiner merges the simulator's per-node log files into one stream ordered
// by wall-clock time.
type Combiner struct {
	dir string
	log logging.Logger
}

// NewCombiner creates a combiner reading from the given log file directory.
func NewCombiner(dir string) *Combiner {
	return &Combiner{
		dir: dir,
		log: logging.With(logging.Component("combiner")),
	}
}

// listLogFiles builds the list of log files that actually exist for the
// participating nodes, in stable node-then-type scan order.
func (c *Combiner) listLogFiles(nodes []string) []logFile {
	var files []logFile

	add := func(basename, logType, node string) {
		path := filepath.Join(c.dir, basename)
		if _, err := os.Stat(path); err == nil {
			files = append(files, logFile{path: path, logType: logType, node: node})
		}
	}

	for _, node := range nodes {
		for _, logType := range roleLogTypes {
			add(fmt.Sprintf("%s_%s.yaml", node, logType), logType, node)
		}
	}
	for _, generic := range genericLogFiles {
		add(generic, logTypeGeneric, "")
	}

	return files
}

// Combine merges all log files for the given nodes into one list sorted
// ascending by wall-clock time. Records with equal timestamps keep their
// file-scan order. Every record is normalized to carry its origin node and
// log type; application-output records get the synthetic user-message tag,
// and instruction-trace records other than entanglement creation are retagged
// as generic gate applications with the raw gate name preserved.
//
// A terminal application-finished record is appended after all real records
// so every decoded stream ends with an explicit completion marker.
func (c *Combiner) Combine(nodes []string) ([]LogRecord, error) {
	var records []LogRecord

	for _, file := range c.listLogFiles(nodes) {
		fileRecords, err := readLogFile(file.path)
		if err != nil {
			return nil, err
		}

		for _, record := range fileRecords {
			if file.logType == logTypeAppLog {
				record[keyInstruction] = tagUserMessage
			}
			if _, ok := record[keyInstruction]; !ok {
				return nil, fmt.Errorf("%s: %w: %s", file.path, ErrMissingField, keyInstruction)
			}
			if _, ok := record[keyWallClock]; !ok {
				return nil, fmt.Errorf("%s: %w: %s", file.path, ErrMissingField, keyWallClock)
			}

			record[keyLogType] = file.logType
			if file.node != "" {
				record[keyFrom] = file.node
			}

			if file.logType == logTypeInstructions {
				tag := record[keyInstruction]
				if tag != tagCreateEPR && tag != tagRecvEPR {
					record[keyGate] = tag
					record[keyInstruction] = tagApplyGate
				}
			}

			records = append(records, record)
		}

		c.log.Debug("merged log file",
			logging.String("file", file.path),
			logging.LogType(file.logType),
			logging.Int("records", len(fileRecords)))
	}

	if err := sortByWallClock(records); err != nil {
		return nil, err
	}

	records = append(records, LogRecord{keyInstruction: tagApplicationFinished})
	return records, nil
}

// sortByWallClock stable-sorts records ascending by their WCT field.
func sortByWallClock(records []LogRecord) error {
	type timed struct {
		wct    float64
		record LogRecord
	}

	timedRecords := make([]timed, len(records))
	for i, record := range records {
		wct, err := record.wallClock()
		if err != nil {
			return err
		}
		timedRecords[i] = timed{wct: wct, record: record}
	}

	sort.SliceStable(timedRecords, func(i, j int) bool {
		return timedRecords[i].wct < timedRecords[j].wct
	})

	for i, tr := range timedRecords {
		records[i] = tr.record
	}
	return nil
}

// readLogFile parses one YAML log file into its raw records.
func readLogFile(path string) ([]LogRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	var records []LogRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: parse log file: %w", path, err)
	}
	return records, nil
}
