package topology

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownNode is returned when a role is mapped onto a node that does
	// not exist in the physical network.
	ErrUnknownNode = errors.New("role mapped to unknown node")

	// ErrNotFullyConnected is returned when the role nodes do not form a
	// connected enough subgraph to reduce into a fully-connected network.
	ErrNotFullyConnected = errors.New("reduced network is not fully connected")
)

// Effective fidelities below this threshold are considered too degraded to
// use and are reported as 0.
const minUsableFidelity = 0.5

// Reduce collapses a physical network into a fully-connected logical network
// over the role-assigned nodes.
//
// For every pair of role nodes the maximum-fidelity path through the physical
// network is found and replaced by one direct logical link carrying the
// aggregated fidelity and the worst-case noise kind of the links along the
// path. The returned ChannelMapping records, per logical link, the ordered
// physical links that realize it, so decoded instructions can later be
// rewritten back onto physical channels.
//
// A logical link count short of C(n,2) means the role nodes are not mutually
// reachable, which is a configuration error, not a partial result.
func Reduce(network *Network, roles RoleMapping) (*Network, ChannelMapping, error) {
	nodeNames := make(map[string]bool, len(network.Nodes))
	for _, node := range network.Nodes {
		nodeNames[node.Name] = true
	}
	for role, node := range roles {
		if !nodeNames[node] {
			return nil, nil, fmt.Errorf("role %q: %w: %q", role, ErrUnknownNode, node)
		}
	}

	// Filter down to the role nodes, keeping the network's node order so the
	// derived link names are stable for a given network description.
	roleNodes := roles.Nodes()
	nodes := make([]Node, 0, len(roleNodes))
	for _, node := range network.Nodes {
		if roleNodes[node.Name] {
			nodes = append(nodes, node)
		}
	}

	linkByName := make(map[string]*Link, len(network.Links))
	for i := range network.Links {
		linkByName[network.Links[i].Name] = &network.Links[i]
	}

	neighbours := buildAdjacency(network)
	mapping := make(ChannelMapping)
	links := make([]Link, 0, len(nodes)*(len(nodes)-1)/2)

	for i := 0; i < len(nodes)-1; i++ {
		node1 := nodes[i].Name
		labels := bestPaths(neighbours, node1)

		for j := i + 1; j < len(nodes); j++ {
			node2 := nodes[j].Name
			label := labels[node2]
			if label == nil || label.fidelity <= 0 {
				// Unreachable; no logical link for this pair.
				continue
			}

			name := fmt.Sprintf("%s-%s", node1, node2)
			mapping[name] = label.channels

			noiseTypes := make([]string, 0, len(label.channels))
			for _, channel := range label.channels {
				noiseTypes = append(noiseTypes, linkByName[channel].NoiseType)
			}

			links = append(links, Link{
				Name:      name,
				Node1:     node1,
				Node2:     node2,
				NoiseType: worstNoise(noiseTypes),
				Fidelity:  snapFidelity(label.fidelity),
			})
		}
	}

	if want := len(nodes) * (len(nodes) - 1) / 2; len(links) != want {
		return nil, nil, fmt.Errorf("%w: got %d links for %d nodes, want %d",
			ErrNotFullyConnected, len(links), len(nodes), want)
	}

	return &Network{Nodes: nodes, Links: links}, mapping, nil
}

// snapFidelity reports an effective fidelity rounded to 4 decimal places, or
// 0 when it is below the usable threshold.
func snapFidelity(fidelity float64) float64 {
	if fidelity < minUsableFidelity {
		return 0
	}
	return math.Round(fidelity*10000) / 10000
}
