package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qnetlab/qne-adk/pkg/topology"
)

func testAsset() *Asset {
	return &Asset{
		Network: Network{
			Name: "Randstad",
			Slug: "randstad",
			Roles: map[string]string{
				"Sender":   "amsterdam",
				"Receiver": "leiden",
			},
			Nodes: []Node{
				{
					Name: "Amsterdam",
					Slug: "amsterdam",
					NodeParameters: []Template{
						{Slug: "gate-fidelity", Values: []TemplateValue{{Name: "gate_fidelity", Value: 0.9}}},
					},
					Qubits: []Qubit{
						{QubitID: 0, QubitParameters: []Template{
							{Values: []TemplateValue{{Name: "t1", Value: 1000}}},
						}},
					},
				},
				{Name: "Leiden", Slug: "leiden"},
			},
			Channels: []Channel{
				{
					Node1: "amsterdam",
					Node2: "leiden",
					Parameters: []Template{
						{Values: []TemplateValue{
							{Name: "fidelity", Value: 0.92},
							{Name: "noise_type", Value: "Bitflip"},
							{Name: "capacity", Value: 4},
						}},
					},
				},
			},
		},
		Application: []Template{
			{Slug: "qubit-state", Roles: []string{"sender"}, Values: []TemplateValue{{Name: "phi", Value: 0.5}}},
			{Slug: "rounds", Roles: []string{"sender", "receiver"}, Values: []TemplateValue{{Name: "rounds", Value: 10}}},
		},
	}
}

// TestValidate_AcceptsWellFormedAsset checks a complete asset passes all
// structural and cross reference checks.
func TestValidate_AcceptsWellFormedAsset(t *testing.T) {
	require.NoError(t, testAsset().Validate())
}

// TestValidate_RejectsRoleOnUnknownNode checks a role assigned to a node
// missing from the asset is reported.
func TestValidate_RejectsRoleOnUnknownNode(t *testing.T) {
	a := testAsset()
	a.Network.Roles["Sender"] = "utrecht"

	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown node "utrecht"`)
}

// TestValidate_RejectsSharedRoleNode checks two roles on the same node are
// reported as a conflict.
func TestValidate_RejectsSharedRoleNode(t *testing.T) {
	a := testAsset()
	a.Network.Roles["Receiver"] = "amsterdam"

	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `assigned to node "amsterdam"`)
}

// TestValidate_RejectsDanglingChannel checks a channel endpoint that is not a
// node in the asset is reported.
func TestValidate_RejectsDanglingChannel(t *testing.T) {
	a := testAsset()
	a.Network.Channels[0].Node2 = "delft"

	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `references unknown node "delft"`)
}

// TestValidate_RejectsMissingRoles checks an asset without any role placement
// fails struct validation.
func TestValidate_RejectsMissingRoles(t *testing.T) {
	a := testAsset()
	a.Network.Roles = nil

	require.Error(t, a.Validate())
}

// TestUnpackTemplates_FlattensValues checks template values collapse into a
// single map regardless of grouping.
func TestUnpackTemplates_FlattensValues(t *testing.T) {
	values := UnpackTemplates(testAsset().Network.Nodes[0].NodeParameters, "")
	assert.Equal(t, map[string]any{"gate_fidelity": 0.9}, values)
}

// TestUnpackTemplates_FiltersByRole checks role scoped templates only
// contribute to their own roles.
func TestUnpackTemplates_FiltersByRole(t *testing.T) {
	app := testAsset().Application

	sender := UnpackTemplates(app, "sender")
	assert.Equal(t, map[string]any{"phi": 0.5, "rounds": 10}, sender)

	receiver := UnpackTemplates(app, "receiver")
	assert.Equal(t, map[string]any{"rounds": 10}, receiver)
}

// TestPhysicalNetwork_ConvertsChannels checks fidelity and noise type are
// lifted out of the unpacked parameters into typed link fields.
func TestPhysicalNetwork_ConvertsChannels(t *testing.T) {
	physical, err := testAsset().Network.PhysicalNetwork()
	require.NoError(t, err)

	require.Len(t, physical.Links, 1)
	link := physical.Links[0]
	assert.Equal(t, "amsterdam-leiden", link.Name)
	assert.Equal(t, 0.92, link.Fidelity)
	assert.Equal(t, topology.NoiseBitflip, link.NoiseType)
	assert.Equal(t, map[string]any{"capacity": 4}, link.Parameters)
}

// TestPhysicalNetwork_DefaultsChannelModel checks channels without explicit
// fidelity or noise parameters fall back to a perfect depolarising channel.
func TestPhysicalNetwork_DefaultsChannelModel(t *testing.T) {
	a := testAsset()
	a.Network.Channels[0].Parameters = nil

	physical, err := a.Network.PhysicalNetwork()
	require.NoError(t, err)

	link := physical.Links[0]
	assert.Equal(t, 1.0, link.Fidelity)
	assert.Equal(t, topology.NoiseDepolarise, link.NoiseType)
}

// TestPhysicalNetwork_RejectsNonNumericFidelity checks a malformed fidelity
// value surfaces as an error naming the channel.
func TestPhysicalNetwork_RejectsNonNumericFidelity(t *testing.T) {
	a := testAsset()
	a.Network.Channels[0].Parameters[0].Values[0].Value = "high"

	_, err := a.Network.PhysicalNetwork()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amsterdam-leiden")
}

// TestRoleMapping_LowersRoleNames checks role names are normalized to lower
// case while node names pass through unchanged.
func TestRoleMapping_LowersRoleNames(t *testing.T) {
	roles := testAsset().Network.RoleMapping()
	assert.Equal(t, topology.RoleMapping{
		"sender":   "amsterdam",
		"receiver": "leiden",
	}, roles)
}
