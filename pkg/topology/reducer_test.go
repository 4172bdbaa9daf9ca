package topology

import (
	"errors"
	"reflect"
	"testing"
)

// TestReduce_TwoHopPair reduces A-B-C with roles on the outer nodes and
// expects one logical link with the combined, rounded fidelity.
func TestReduce_TwoHopPair(t *testing.T) {
	network := lineNetwork(0.9, 0.9)
	roles := RoleMapping{"sender": "amsterdam", "receiver": "college"}

	logical, mapping, err := Reduce(network, roles)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}

	if len(logical.Nodes) != 2 {
		t.Fatalf("logical nodes = %d, want 2", len(logical.Nodes))
	}
	if len(logical.Links) != 1 {
		t.Fatalf("logical links = %d, want 1", len(logical.Links))
	}

	link := logical.Links[0]
	if link.Name != "amsterdam-college" {
		t.Errorf("link name = %q, want %q", link.Name, "amsterdam-college")
	}
	if link.Fidelity != 0.8433 {
		t.Errorf("link fidelity = %v, want 0.8433", link.Fidelity)
	}
	if link.NoiseType != NoiseNone {
		t.Errorf("link noise = %q, want %q", link.NoiseType, NoiseNone)
	}

	wantChannels := []string{"amsterdam-breda", "breda-college"}
	if !reflect.DeepEqual(mapping["amsterdam-college"], wantChannels) {
		t.Errorf("channel mapping = %v, want %v", mapping["amsterdam-college"], wantChannels)
	}
}

// TestReduce_SnapsDegradedFidelityToZero verifies that a path whose combined
// fidelity drops below the usable threshold is reported as 0 while the pair
// still counts as connected.
func TestReduce_SnapsDegradedFidelityToZero(t *testing.T) {
	// combine(0.6, 0.6) = 0.4133..., below 0.5.
	network := lineNetwork(0.6, 0.6)
	roles := RoleMapping{"sender": "amsterdam", "receiver": "college"}

	logical, _, err := Reduce(network, roles)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if len(logical.Links) != 1 {
		t.Fatalf("logical links = %d, want 1", len(logical.Links))
	}
	if logical.Links[0].Fidelity != 0 {
		t.Errorf("degraded fidelity = %v, want snapped 0", logical.Links[0].Fidelity)
	}
}

// TestReduce_FullyConnectedTriangle checks C(3,2) links and per-pair
// channel mappings for a triangle of role nodes.
func TestReduce_FullyConnectedTriangle(t *testing.T) {
	network := &Network{
		Nodes: []Node{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Links: []Link{
			{Name: "a-b", Node1: "a", Node2: "b", Fidelity: 0.95, NoiseType: NoiseBitflip},
			{Name: "b-c", Node1: "b", Node2: "c", Fidelity: 0.95, NoiseType: NoiseNone},
			{Name: "a-c", Node1: "a", Node2: "c", Fidelity: 0.95, NoiseType: NoiseDepolarise},
		},
	}
	roles := RoleMapping{"r1": "a", "r2": "b", "r3": "c"}

	logical, mapping, err := Reduce(network, roles)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if len(logical.Links) != 3 {
		t.Fatalf("logical links = %d, want 3", len(logical.Links))
	}
	if len(mapping) != 3 {
		t.Fatalf("channel mapping entries = %d, want 3", len(mapping))
	}
	for _, link := range logical.Links {
		if link.Fidelity != 0.95 {
			t.Errorf("link %s fidelity = %v, want direct 0.95", link.Name, link.Fidelity)
		}
		if !reflect.DeepEqual(mapping[link.Name], []string{link.Name}) {
			t.Errorf("link %s mapping = %v, want itself", link.Name, mapping[link.Name])
		}
	}
}

// TestReduce_WorstCaseNoise verifies that a logical link takes the worst
// noise kind of its constituent physical links.
func TestReduce_WorstCaseNoise(t *testing.T) {
	tests := []struct {
		name        string
		noiseAB     string
		noiseBC     string
		wantOverall string
	}{
		{"depolarise dominates bitflip", NoiseDepolarise, NoiseBitflip, NoiseDepolarise},
		{"bitflip dominates none", NoiseNone, NoiseBitflip, NoiseBitflip},
		{"all clean stays clean", NoiseNone, NoiseNone, NoiseNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network := lineNetwork(0.9, 0.9)
			network.Links[0].NoiseType = tt.noiseAB
			network.Links[1].NoiseType = tt.noiseBC

			logical, _, err := Reduce(network, RoleMapping{"r1": "amsterdam", "r2": "college"})
			if err != nil {
				t.Fatalf("Reduce failed: %v", err)
			}
			if got := logical.Links[0].NoiseType; got != tt.wantOverall {
				t.Errorf("overall noise = %q, want %q", got, tt.wantOverall)
			}
		})
	}
}

// TestReduce_DisconnectedRoleNodes expects a hard failure when the role nodes
// cannot all reach each other.
func TestReduce_DisconnectedRoleNodes(t *testing.T) {
	network := &Network{
		Nodes: []Node{{Name: "a"}, {Name: "b"}, {Name: "island"}},
		Links: []Link{
			{Name: "a-b", Node1: "a", Node2: "b", Fidelity: 0.9, NoiseType: NoiseNone},
		},
	}
	roles := RoleMapping{"r1": "a", "r2": "island"}

	_, _, err := Reduce(network, roles)
	if !errors.Is(err, ErrNotFullyConnected) {
		t.Fatalf("Reduce error = %v, want ErrNotFullyConnected", err)
	}
}

// TestReduce_UnknownRoleNode expects a caller error before any reduction
// happens when a role references a node absent from the network.
func TestReduce_UnknownRoleNode(t *testing.T) {
	network := lineNetwork(0.9, 0.9)
	roles := RoleMapping{"r1": "amsterdam", "r2": "atlantis"}

	_, _, err := Reduce(network, roles)
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("Reduce error = %v, want ErrUnknownNode", err)
	}
}

// TestWorstNoise covers the priority order directly.
func TestWorstNoise(t *testing.T) {
	if got := worstNoise([]string{NoiseBitflip, NoiseDepolarise, NoiseNone}); got != NoiseDepolarise {
		t.Errorf("worstNoise = %q, want %q", got, NoiseDepolarise)
	}
	if got := worstNoise(nil); got != NoiseNone {
		t.Errorf("worstNoise(nil) = %q, want %q", got, NoiseNone)
	}
}
