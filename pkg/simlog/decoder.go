package simlog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qnetlab/qne-adk/pkg/logging"
)

// extractor builds one typed instruction from a normalized log record.
type extractor func(record LogRecord) (Instruction, error)

// extractors maps raw simulator instruction tags to their extraction rule.
// The vocabulary is closed; tags outside it are dropped, not decoded.
var extractors = map[string]extractor{
	tagApplicationFinished: decodeApplicationFinished,
	tagUserMessage:         decodeUserMessage,
	tagEntanglementStart:   decodeEntanglementStart,
	tagEntanglementFinish:  decodeEntanglementFinish,
	tagClassicalSend:       decodeClassicalMessage,
	tagApplyGate:           decodeApplyGate,
}

// Decode classifies each record into one of the fixed instruction kinds.
//
// One record yields at most one instruction. Records with an unrecognized
// tag are dropped with a diagnostic, keeping the decoder forward-compatible
// with simulator versions emitting new trace types. A matched record missing
// a required field aborts the whole decode pass: partial records indicate a
// protocol mismatch.
func Decode(records []LogRecord, logger logging.Logger) ([]Instruction, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	logger = logger.With(logging.Component("decoder"))

	instructions := make([]Instruction, 0, len(records))
	for _, record := range records {
		tag, err := record.stringField(keyInstruction)
		if err != nil {
			return nil, err
		}

		decode, ok := extractors[tag]
		if !ok {
			logger.Warn("unknown instruction dropped", logging.Instruction(tag))
			continue
		}

		instruction, err := decode(record)
		if err != nil {
			return nil, fmt.Errorf("decode %s record: %w", tag, err)
		}
		instructions = append(instructions, instruction)
	}

	return instructions, nil
}

func decodeApplicationFinished(LogRecord) (Instruction, error) {
	return &ApplicationFinished{Command: CommandApplicationFinished}, nil
}

func decodeUserMessage(record LogRecord) (Instruction, error) {
	message, err := record.stringField(keyLogText)
	if err != nil {
		return nil, err
	}
	from, err := record.stringField(keyFrom)
	if err != nil {
		return nil, err
	}
	return &UserMessage{
		Command: CommandUserMessage,
		Message: message,
		From:    NodeRef{Node: from},
	}, nil
}

func decodeEntanglementStart(record LogRecord) (Instruction, error) {
	return decodeEntanglement(record, ActionStart)
}

func decodeEntanglementFinish(record LogRecord) (Instruction, error) {
	return decodeEntanglement(record, ActionSuccess)
}

func decodeEntanglement(record LogRecord, action string) (Instruction, error) {
	nodes, err := record.listField(keyNodes)
	if err != nil {
		return nil, err
	}
	qubitIDs, err := record.listField(keyQubitIDs)
	if err != nil {
		return nil, err
	}
	qubits, err := zipQubits(nodes, qubitIDs)
	if err != nil {
		return nil, err
	}
	if len(qubits) < 2 {
		return nil, fmt.Errorf("entanglement record names %d qubits, want 2", len(qubits))
	}

	channels, err := record.listField(keyChannelPath)
	if err != nil {
		return nil, err
	}
	channelNames := make([]string, len(channels))
	for i, channel := range channels {
		name, ok := channel.(string)
		if !ok {
			return nil, fmt.Errorf("field %s: expected channel name, got %T", keyChannelPath, channel)
		}
		channelNames[i] = name
	}

	groups, err := decodeGroups(record)
	if err != nil {
		return nil, err
	}

	return &Entanglement{
		Command:  CommandEntanglement,
		Action:   action,
		From:     qubits[0],
		To:       qubits[1],
		Channels: channelNames,
		Groups:   groups,
	}, nil
}

func decodeClassicalMessage(record LogRecord) (Instruction, error) {
	message, err := record.field(keyMessage)
	if err != nil {
		return nil, err
	}
	sender, err := record.stringField(keySender)
	if err != nil {
		return nil, err
	}
	receiver, err := record.stringField(keyReceiver)
	if err != nil {
		return nil, err
	}
	return &ClassicalMessage{
		Command: CommandClassicalMessage,
		Message: message,
		From:    NodeRef{Node: sender},
		To:      NodeRef{Node: receiver},
	}, nil
}

func decodeApplyGate(record LogRecord) (Instruction, error) {
	from, err := record.stringField(keyFrom)
	if err != nil {
		return nil, err
	}
	gate, err := record.stringField(keyGate)
	if err != nil {
		return nil, err
	}
	qubitIDs, err := record.listField(keyQubitIDs)
	if err != nil {
		return nil, err
	}

	qubits := make([]QubitRef, 0, len(qubitIDs))
	for _, raw := range qubitIDs {
		id, ok := asInt(raw)
		if !ok {
			return nil, fmt.Errorf("field %s: expected qubit id, got %T", keyQubitIDs, raw)
		}
		qubits = append(qubits, QubitRef{Node: from, ID: id})
	}

	groups, err := decodeGroups(record)
	if err != nil {
		return nil, err
	}
	outcome, err := record.field(keyOutcome)
	if err != nil {
		return nil, err
	}

	return &ApplyGate{
		Command: CommandApplyGate,
		Qubits:  qubits,
		Gate:    gate,
		Groups:  groups,
		Outcome: outcome,
	}, nil
}

// zipQubits pairs parallel node and qubit-id lists into qubit references,
// preserving their order.
func zipQubits(nodes, qubitIDs []any) ([]QubitRef, error) {
	if len(nodes) != len(qubitIDs) {
		return nil, fmt.Errorf("node list length %d does not match qubit id list length %d",
			len(nodes), len(qubitIDs))
	}

	qubits := make([]QubitRef, len(nodes))
	for i := range nodes {
		node, ok := nodes[i].(string)
		if !ok {
			return nil, fmt.Errorf("field %s: expected node name, got %T", keyNodes, nodes[i])
		}
		id, ok := asInt(qubitIDs[i])
		if !ok {
			return nil, fmt.Errorf("field %s: expected qubit id, got %T", keyQubitIDs, qubitIDs[i])
		}
		qubits[i] = QubitRef{Node: node, ID: id}
	}
	return qubits, nil
}

// decodeGroups extracts the entangled qubit groups with their state
// snapshots. The QGR key must be present; a nil value means no groups.
func decodeGroups(record LogRecord) (map[string]QubitGroup, error) {
	raw, err := record.field(keyGroups)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]QubitGroup)
	if raw == nil {
		return groups, nil
	}

	for groupID, properties := range asStringKeyedMap(raw) {
		propertyMap := asStringKeyedMap(properties)
		if propertyMap == nil {
			return nil, fmt.Errorf("field %s: group %s is not a mapping", keyGroups, groupID)
		}

		qubitPairs, ok := propertyMap["qubit_ids"].([]any)
		if !ok {
			return nil, fmt.Errorf("field %s: group %s has no qubit_ids", keyGroups, groupID)
		}
		qubits := make([]QubitRef, 0, len(qubitPairs))
		for _, pair := range qubitPairs {
			qubit, err := decodeQubitPair(pair)
			if err != nil {
				return nil, fmt.Errorf("field %s: group %s: %w", keyGroups, groupID, err)
			}
			qubits = append(qubits, qubit)
		}

		entangled, _ := propertyMap["is_entangled"].(bool)

		state, err := decodeState(propertyMap["state"])
		if err != nil {
			return nil, fmt.Errorf("field %s: group %s: %w", keyGroups, groupID, err)
		}

		groups[groupID] = QubitGroup{
			Qubits:      qubits,
			IsEntangled: entangled,
			State:       state,
		}
	}

	return groups, nil
}

// decodeQubitPair parses a [node, id] pair from a group's qubit_ids list.
func decodeQubitPair(value any) (QubitRef, error) {
	pair, ok := value.([]any)
	if !ok || len(pair) != 2 {
		return QubitRef{}, fmt.Errorf("expected [node, id] pair, got %v", value)
	}
	node, ok := pair[0].(string)
	if !ok {
		return QubitRef{}, fmt.Errorf("expected node name, got %T", pair[0])
	}
	id, ok := asInt(pair[1])
	if !ok {
		return QubitRef{}, fmt.Errorf("expected qubit id, got %T", pair[1])
	}
	return QubitRef{Node: node, ID: id}, nil
}

// decodeState re-encodes a quantum state matrix as JSON-safe complex pairs.
func decodeState(value any) ([][]Complex, error) {
	if value == nil {
		return nil, nil
	}
	rows, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected state matrix, got %T", value)
	}

	state := make([][]Complex, len(rows))
	for i, rawRow := range rows {
		row, ok := rawRow.([]any)
		if !ok {
			return nil, fmt.Errorf("expected state row, got %T", rawRow)
		}
		state[i] = make([]Complex, len(row))
		for j, amplitude := range row {
			c, err := parseAmplitude(amplitude)
			if err != nil {
				return nil, err
			}
			state[i][j] = c
		}
	}
	return state, nil
}

// parseAmplitude accepts the amplitude encodings the simulator emits: plain
// real numbers, {re, im} mappings, and Python-style complex literals such as
// "(0.5+0.5j)".
func parseAmplitude(value any) (Complex, error) {
	if re, ok := asFloat(value); ok {
		return Complex{Re: re}, nil
	}

	if m := asStringKeyedMap(value); m != nil {
		re, okRe := asFloat(m["re"])
		im, okIm := asFloat(m["im"])
		if okRe && okIm {
			return Complex{Re: re, Im: im}, nil
		}
		return Complex{}, fmt.Errorf("expected {re, im} amplitude, got %v", value)
	}

	if s, ok := value.(string); ok {
		literal := strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		literal = strings.ReplaceAll(literal, "j", "i")
		c, err := strconv.ParseComplex(literal, 128)
		if err != nil {
			return Complex{}, fmt.Errorf("invalid complex literal %q", s)
		}
		return Complex{Re: real(c), Im: imag(c)}, nil
	}

	return Complex{}, fmt.Errorf("unsupported amplitude value %v (%T)", value, value)
}

// asStringKeyedMap normalizes the mapping shapes the YAML parser can produce,
// stringifying non-string keys such as numeric group ids.
func asStringKeyedMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case map[any]any:
		converted := make(map[string]any, len(m))
		for key, val := range m {
			converted[fmt.Sprint(key)] = val
		}
		return converted
	}
	return nil
}
