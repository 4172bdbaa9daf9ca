package asset

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the asset's structure and cross references. All problems
// found are reported together so the user can fix them in one pass.
func (a *Asset) Validate() error {
	var errs []string

	if err := validate.Struct(a); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				errs = append(errs, formatValidationError(fieldErr))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	errs = append(errs, a.Network.checkRoles()...)
	errs = append(errs, a.Network.checkChannels()...)

	if len(errs) > 0 {
		return fmt.Errorf("invalid asset: %s", strings.Join(errs, "; "))
	}
	return nil
}

// checkRoles verifies each role maps to a node present in the asset and that
// no two roles share a node. The simulator addresses parties by node name, so
// a shared node would make two roles indistinguishable.
func (n *Network) checkRoles() []string {
	nodeNames := make(map[string]bool, len(n.Nodes))
	for _, node := range n.Nodes {
		nodeNames[node.Slug] = true
	}

	var errs []string
	claimed := make(map[string]string, len(n.Roles))
	for role, node := range n.Roles {
		if !nodeNames[node] {
			errs = append(errs, fmt.Sprintf("role %q is assigned to unknown node %q", role, node))
			continue
		}
		if other, taken := claimed[node]; taken {
			errs = append(errs, fmt.Sprintf("roles %q and %q are both assigned to node %q", other, role, node))
			continue
		}
		claimed[node] = role
	}
	return errs
}

// checkChannels verifies channel endpoints reference nodes in the asset.
func (n *Network) checkChannels() []string {
	nodeNames := make(map[string]bool, len(n.Nodes))
	for _, node := range n.Nodes {
		nodeNames[node.Slug] = true
	}

	var errs []string
	for _, channel := range n.Channels {
		if !nodeNames[channel.Node1] {
			errs = append(errs, fmt.Sprintf("channel %q references unknown node %q", channel.ChannelName(), channel.Node1))
		}
		if !nodeNames[channel.Node2] {
			errs = append(errs, fmt.Sprintf("channel %q references unknown node %q", channel.ChannelName(), channel.Node2))
		}
	}
	return errs
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Namespace())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", err.Namespace(), err.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", err.Namespace(), err.Tag())
	}
}
