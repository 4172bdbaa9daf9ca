package simlog

// Decoded instruction command names, the closed output vocabulary.
const (
	CommandApplicationFinished = "application-finished"
	CommandUserMessage         = "user-message"
	CommandEntanglement        = "entanglement"
	CommandClassicalMessage    = "classical-message"
	CommandApplyGate           = "apply-gate"
)

// Entanglement actions.
const (
	ActionStart   = "start"
	ActionSuccess = "success"
)

// Instruction is one decoded, semantically typed record of a simulated
// protocol action. Instructions are immutable once decoded except for the
// channel reference, which the rewriter replaces in place.
type Instruction interface {
	command() string
}

// CommandName returns the command name of a decoded instruction.
func CommandName(in Instruction) string {
	return in.command()
}

// NodeRef identifies a node participating in an instruction.
type NodeRef struct {
	Node string `json:"node"`
}

// QubitRef identifies a single qubit at a node.
type QubitRef struct {
	Node string `json:"node"`
	ID   int    `json:"id"`
}

// Complex is a complex amplitude in the JSON-safe shape required by the
// result store.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// QubitGroup is a set of qubits sharing a quantum state.
type QubitGroup struct {
	Qubits      []QubitRef  `json:"qubits"`
	IsEntangled bool        `json:"is_entangled"`
	State       [][]Complex `json:"state"`
}

// ApplicationFinished marks the end of the decoded stream.
type ApplicationFinished struct {
	Command string `json:"command"`
}

func (i *ApplicationFinished) command() string { return i.Command }

// UserMessage is a free-text message logged by the application itself.
type UserMessage struct {
	Command string  `json:"command"`
	Message string  `json:"message"`
	From    NodeRef `json:"from"`
}

func (i *UserMessage) command() string { return i.Command }

// Entanglement reports the start or completion of entanglement generation
// between two qubits, including the channels used and the resulting qubit
// groups.
type Entanglement struct {
	Command  string                `json:"command"`
	Action   string                `json:"action"`
	From     QubitRef              `json:"from"`
	To       QubitRef              `json:"to"`
	Channels []string              `json:"channels"`
	Groups   map[string]QubitGroup `json:"groups"`
}

func (i *Entanglement) command() string { return i.Command }

func (i *Entanglement) logicalChannels() []string { return i.Channels }

func (i *Entanglement) setChannels(channels []string) { i.Channels = channels }

// ClassicalMessage is a classical network message between two nodes.
type ClassicalMessage struct {
	Command string  `json:"command"`
	Message any     `json:"message"`
	From    NodeRef `json:"from"`
	To      NodeRef `json:"to"`
}

func (i *ClassicalMessage) command() string { return i.Command }

// ApplyGate is a quantum gate application, possibly with a measurement
// outcome.
type ApplyGate struct {
	Command    string                `json:"command"`
	Qubits     []QubitRef            `json:"qubits"`
	Gate       string                `json:"gate"`
	Parameters any                   `json:"parameters"`
	Groups     map[string]QubitGroup `json:"groups"`
	Outcome    any                   `json:"outcome"`
}

func (i *ApplyGate) command() string { return i.Command }
