package topology

// Noise kinds carried by physical and logical links. The values are a wire
// contract with the simulator's network.yaml and must not be changed.
const (
	NoiseDepolarise = "Depolarise"
	NoiseBitflip    = "Bitflip"
	NoiseNone       = "NoNoise"
)

// Node is a physical location in the quantum network.
type Node struct {
	Name       string         `yaml:"name" json:"name"`
	Qubits     []Qubit        `yaml:"qubits,omitempty" json:"qubits,omitempty"`
	Parameters map[string]any `yaml:",inline" json:"-"`
}

// Qubit is a single qubit hosted on a node.
type Qubit struct {
	ID         int            `yaml:"id" json:"id"`
	Parameters map[string]any `yaml:",inline" json:"-"`
}

// Link is a direct connection between two nodes. In a physical network it
// represents a channel; in a reduced network it represents the best path
// between two role nodes collapsed into one effective link.
type Link struct {
	Name       string         `yaml:"name" json:"name"`
	Node1      string         `yaml:"node_name1" json:"node_name1"`
	Node2      string         `yaml:"node_name2" json:"node_name2"`
	NoiseType  string         `yaml:"noise_type" json:"noise_type"`
	Fidelity   float64        `yaml:"fidelity" json:"fidelity"`
	Parameters map[string]any `yaml:",inline" json:"-"`
}

// Network is a set of nodes and the links between them. Links are undirected;
// both endpoints must exist as nodes and at most one link connects a pair.
type Network struct {
	Nodes []Node `yaml:"nodes" json:"nodes"`
	Links []Link `yaml:"links" json:"links"`
}

// RoleMapping assigns application roles to physical node names.
type RoleMapping map[string]string

// Nodes returns the set of node names that have a role assigned.
func (rm RoleMapping) Nodes() map[string]bool {
	nodes := make(map[string]bool, len(rm))
	for _, node := range rm {
		nodes[node] = true
	}
	return nodes
}

// ChannelMapping maps a logical link name to the ordered list of physical
// link names that realize it. It is built fresh by every reduction and is
// scoped to one experiment run.
type ChannelMapping map[string][]string

// worstNoise returns the dominant noise kind of a set of links, with
// depolarising noise taking priority over bitflip and bitflip over none.
func worstNoise(noiseTypes []string) string {
	for _, noise := range noiseTypes {
		if noise == NoiseDepolarise {
			return NoiseDepolarise
		}
	}
	for _, noise := range noiseTypes {
		if noise == NoiseBitflip {
			return NoiseBitflip
		}
	}
	return NoiseNone
}
