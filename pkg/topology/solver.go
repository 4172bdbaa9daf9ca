package topology

// pathLabel tracks the best known route from the start node during a solver
// run: the effective fidelity achieved, the ordered physical links used, and
// whether the label has been finalized.
type pathLabel struct {
	fidelity float64
	channels []string
	final    bool
}

// adjacency maps each node name to its direct neighbours and the link to each.
type adjacency map[string]map[string]*Link

// buildAdjacency indexes a network's links by endpoint in both directions.
func buildAdjacency(network *Network) adjacency {
	neighbours := make(adjacency, len(network.Nodes))
	for _, node := range network.Nodes {
		neighbours[node.Name] = make(map[string]*Link)
	}
	for i := range network.Links {
		link := &network.Links[i]
		neighbours[link.Node1][link.Node2] = link
		neighbours[link.Node2][link.Node1] = link
	}
	return neighbours
}

// bestPaths finds the maximum-fidelity path from start to every other node.
//
// This is Dijkstra's label-setting scheme with the relaxation metric replaced:
// instead of summing distances and taking the minimum, candidate fidelities
// are composed with CombineFidelity and the maximum wins. The linear
// extract-max keeps it O(V^2) per start node, which is fine for the handful
// of nodes an experiment uses. Ties between equal-fidelity candidates are
// broken by map iteration order, so path choice among equals is arbitrary.
func bestPaths(neighbours adjacency, start string) map[string]*pathLabel {
	labels := make(map[string]*pathLabel, len(neighbours))
	for node := range neighbours {
		labels[node] = &pathLabel{}
	}
	labels[start].fidelity = 1

	for remaining := len(labels); remaining > 0; remaining-- {
		// Extract the unfinalized node with the highest fidelity.
		var current string
		best := -1.0
		for node, label := range labels {
			if !label.final && label.fidelity > best {
				best = label.fidelity
				current = node
			}
		}

		label := labels[current]
		label.final = true
		if label.fidelity <= 0 {
			// Unreachable from start; nothing to relax through.
			continue
		}

		for neighbour, link := range neighbours[current] {
			neighbourLabel := labels[neighbour]
			if neighbourLabel.final {
				continue
			}
			candidate := CombineFidelity(label.fidelity, link.Fidelity)
			if candidate > neighbourLabel.fidelity {
				neighbourLabel.fidelity = candidate
				channels := make([]string, 0, len(label.channels)+1)
				channels = append(channels, label.channels...)
				neighbourLabel.channels = append(channels, link.Name)
			}
		}
	}

	return labels
}
