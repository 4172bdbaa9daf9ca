// Package asset models the experiment asset: the user's configuration for
// one run of an application, combining the selected network, the role
// placement, and per-role input values.
package asset

import (
	"fmt"
	"strings"
)

// Asset is the structured document describing one experiment run. It is
// produced by the experiment scaffolding and stored in experiment.json.
type Asset struct {
	Network     Network    `json:"network" validate:"required"`
	Application []Template `json:"application"`
}

// Network is the asset's view of the selected physical network: the role
// placement plus the nodes and channels with their filled-in template
// parameters.
type Network struct {
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Roles    map[string]string `json:"roles" validate:"required,min=1"`
	Nodes    []Node            `json:"nodes" validate:"required,min=1,dive"`
	Channels []Channel         `json:"channels" validate:"dive"`
}

// Node is one configurable network node in the asset.
type Node struct {
	Name           string     `json:"name"`
	Slug           string     `json:"slug" validate:"required"`
	NodeParameters []Template `json:"node_parameters"`
	Qubits         []Qubit    `json:"qubits"`
}

// Qubit is one configurable qubit on a node.
type Qubit struct {
	QubitID         int        `json:"qubit_id"`
	QubitParameters []Template `json:"qubit_parameters"`
}

// Channel is one configurable connection between two nodes.
type Channel struct {
	Node1      string     `json:"node1" validate:"required"`
	Node2      string     `json:"node2" validate:"required"`
	Parameters []Template `json:"parameters"`
}

// Template is a group of named values, optionally scoped to a set of roles.
// Application inputs and node/channel parameters all use this shape.
type Template struct {
	Title  string          `json:"title,omitempty"`
	Slug   string          `json:"slug,omitempty"`
	Roles  []string        `json:"roles,omitempty"`
	Values []TemplateValue `json:"values" validate:"required,min=1,dive"`
}

// TemplateValue is a single named value inside a template.
type TemplateValue struct {
	Name  string `json:"name" validate:"required"`
	Value any    `json:"value"`
}

// UnpackTemplates flattens a template list into one name-to-value map. When
// role is non-empty only templates scoped to that role contribute.
func UnpackTemplates(templates []Template, role string) map[string]any {
	values := make(map[string]any)
	for _, template := range templates {
		if role != "" && !containsRole(template.Roles, role) {
			continue
		}
		for _, value := range template.Values {
			values[value.Name] = value.Value
		}
	}
	return values
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// ChannelName derives the canonical link name for a channel.
func (c Channel) ChannelName() string {
	return fmt.Sprintf("%s-%s", c.Node1, c.Node2)
}
