// Package simlog turns the simulator's raw per-node log streams into a
// single ordered sequence of typed protocol instructions.
package simlog

import (
	"errors"
	"fmt"
)

// Raw log record keys. These are a fixed wire contract with the simulator's
// YAML log files and must be preserved bit-for-bit.
const (
	keyInstruction = "INS"
	keyWallClock   = "WCT"
	keyLogType     = "TYP"
	keyFrom        = "FRM"
	keyNodes       = "NOD"
	keyQubitIDs    = "QID"
	keySender      = "SEN"
	keyReceiver    = "REC"
	keyMessage     = "MSG"
	keyLogText     = "LOG"
	keyGate        = "GAT"
	keyOutcome     = "OUT"
	keyGroups      = "QGR"
	keyChannelPath = "PTH"
)

// Raw instruction tags emitted by the simulator.
const (
	tagApplicationFinished = "application_finished"
	tagUserMessage         = "user_msg"
	tagEntanglementStart   = "epr_EntanglementStage.START"
	tagEntanglementFinish  = "epr_EntanglementStage.FINISH"
	tagClassicalSend       = "SEND"
	tagApplyGate           = "apply_gate"
	tagCreateEPR           = "create_epr"
	tagRecvEPR             = "recv_epr"
)

// ErrMissingField is returned when a log record lacks a field that its
// instruction kind requires. Simulator logs are assumed well-formed; a
// missing field means a protocol mismatch, not a tolerable anomaly.
var ErrMissingField = errors.New("missing mandatory log field")

// LogRecord is one dynamically-shaped record from a simulator log stream,
// normalized by the combiner to carry its origin node and log type.
type LogRecord map[string]any

// field returns the value of a key, or ErrMissingField when absent.
func (r LogRecord) field(key string) (any, error) {
	value, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return value, nil
}

// stringField returns a key's value as a string.
func (r LogRecord) stringField(key string) (string, error) {
	value, err := r.field(key)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T", key, value)
	}
	return s, nil
}

// listField returns a key's value as a slice. A nil value yields a nil slice.
func (r LogRecord) listField(key string) ([]any, error) {
	value, err := r.field(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("field %s: expected list, got %T", key, value)
	}
	return list, nil
}

// wallClock returns the record's WCT timestamp as a float for ordering.
func (r LogRecord) wallClock() (float64, error) {
	value, err := r.field(keyWallClock)
	if err != nil {
		return 0, err
	}
	wct, ok := asFloat(value)
	if !ok {
		return 0, fmt.Errorf("field %s: expected number, got %T", keyWallClock, value)
	}
	return wct, nil
}

// asFloat converts YAML scalar number representations to float64.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// asInt converts YAML scalar number representations to int.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
