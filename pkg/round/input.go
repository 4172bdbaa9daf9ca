package round

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qnetlab/qne-adk/pkg/asset"
	"github.com/qnetlab/qne-adk/pkg/metrics"
	"github.com/qnetlab/qne-adk/pkg/topology"
)

// prepareInput materializes the simulator's input files from the asset: the
// reduced network.yaml, the roles.yaml role placement and one {role}.yaml
// per role with its application inputs. The channel mapping produced by the
// reduction is returned so the output pipeline can translate logical
// channels back to physical ones.
func prepareInput(a *asset.Asset, inputDir string, reg *metrics.Registry) (topology.ChannelMapping, error) {
	physical, err := a.Network.PhysicalNetwork()
	if err != nil {
		return nil, err
	}
	roles := a.Network.RoleMapping()

	started := time.Now()
	reduced, mapping, err := topology.Reduce(physical, roles)
	if err != nil {
		reg.RecordReduction("failed", time.Since(started), 0, 0)
		return nil, err
	}
	zeroFidelity := 0
	for _, link := range reduced.Links {
		if link.Fidelity == 0 {
			zeroFidelity++
		}
	}
	reg.RecordReduction("success", time.Since(started), len(reduced.Links), zeroFidelity)

	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating input directory: %w", err)
	}

	if err := writeYAML(filepath.Join(inputDir, "network.yaml"), reduced); err != nil {
		return nil, err
	}
	if err := writeYAML(filepath.Join(inputDir, "roles.yaml"), roles); err != nil {
		return nil, err
	}

	for role := range roles {
		values := asset.UnpackTemplates(a.Application, role)
		name := strings.ToLower(role) + ".yaml"
		if err := writeYAML(filepath.Join(inputDir, name), values); err != nil {
			return nil, err
		}
	}

	return mapping, nil
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
