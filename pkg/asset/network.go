package asset

import (
	"fmt"
	"strings"

	"github.com/qnetlab/qne-adk/pkg/topology"
)

const defaultChannelFidelity = 1.0

// PhysicalNetwork converts the asset's configured network into the physical
// topology used by the reducer. Template parameters are unpacked into flat
// maps; a channel's fidelity and noise type are lifted into typed fields.
func (n *Network) PhysicalNetwork() (*topology.Network, error) {
	physical := &topology.Network{
		Nodes: make([]topology.Node, 0, len(n.Nodes)),
		Links: make([]topology.Link, 0, len(n.Channels)),
	}

	for _, node := range n.Nodes {
		qubits := make([]topology.Qubit, 0, len(node.Qubits))
		for _, qubit := range node.Qubits {
			qubits = append(qubits, topology.Qubit{
				ID:         qubit.QubitID,
				Parameters: UnpackTemplates(qubit.QubitParameters, ""),
			})
		}
		physical.Nodes = append(physical.Nodes, topology.Node{
			Name:       node.Slug,
			Qubits:     qubits,
			Parameters: UnpackTemplates(node.NodeParameters, ""),
		})
	}

	for _, channel := range n.Channels {
		link, err := channelLink(channel)
		if err != nil {
			return nil, err
		}
		physical.Links = append(physical.Links, link)
	}

	return physical, nil
}

func channelLink(channel Channel) (topology.Link, error) {
	parameters := UnpackTemplates(channel.Parameters, "")

	fidelity := defaultChannelFidelity
	if raw, ok := parameters["fidelity"]; ok {
		f, err := asFloat(raw)
		if err != nil {
			return topology.Link{}, fmt.Errorf("channel %s: %w", channel.ChannelName(), err)
		}
		fidelity = f
		delete(parameters, "fidelity")
	}

	// Channels without an explicit noise model are treated as depolarising,
	// matching the simulator's default channel model.
	noiseType := topology.NoiseDepolarise
	if raw, ok := parameters["noise_type"]; ok {
		s, ok := raw.(string)
		if !ok {
			return topology.Link{}, fmt.Errorf("channel %s: noise_type must be a string, got %T", channel.ChannelName(), raw)
		}
		noiseType = s
		delete(parameters, "noise_type")
	}

	return topology.Link{
		Name:       channel.ChannelName(),
		Node1:      channel.Node1,
		Node2:      channel.Node2,
		NoiseType:  noiseType,
		Fidelity:   fidelity,
		Parameters: parameters,
	}, nil
}

// RoleMapping returns the asset's role placement with role names lower
// cased. Role names are case insensitive everywhere they are matched against
// program files and input templates.
func (n *Network) RoleMapping() topology.RoleMapping {
	roles := make(topology.RoleMapping, len(n.Roles))
	for role, node := range n.Roles {
		roles[strings.ToLower(role)] = node
	}
	return roles
}

func asFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("fidelity must be a number, got %T", value)
	}
}
