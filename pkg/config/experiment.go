package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qnetlab/qne-adk/pkg/asset"
)

const experimentFile = "experiment.json"

// ErrNotAnExperiment is returned when a directory holds no experiment.json.
var ErrNotAnExperiment = errors.New("not an experiment directory")

// Backend locations and types recorded in experiment metadata.
const (
	BackendLocal        = "local"
	BackendRemote       = "remote"
	BackendTypeLocal    = "local_netsquid"
	BackendTypeRemote   = "remote_netsquid"
	defaultRoundsPerRun = 1
)

// ExperimentMeta describes how and where an experiment runs.
type ExperimentMeta struct {
	Application    MetaApplication `json:"application"`
	Backend        MetaBackend     `json:"backend"`
	Description    string          `json:"description"`
	NumberOfRounds int             `json:"number_of_rounds"`
	Name           string          `json:"name"`
	ExperimentID   string          `json:"experiment_id,omitempty"`
	RoundSet       string          `json:"round_set,omitempty"`
}

// MetaApplication identifies the application an experiment was created from.
type MetaApplication struct {
	Slug       string `json:"slug"`
	AppVersion string `json:"app_version"`
	MultiRound bool   `json:"multi_round"`
}

// MetaBackend identifies the execution backend.
type MetaBackend struct {
	Location string `json:"location"`
	Type     string `json:"type"`
}

// Experiment is the experiment.json document: run metadata plus the asset
// holding the configured network and application inputs.
type Experiment struct {
	Meta  ExperimentMeta `json:"meta"`
	Asset asset.Asset    `json:"asset"`
}

// IsLocal reports whether the experiment targets the local simulator.
func (e *Experiment) IsLocal() bool {
	return e.Meta.Backend.Location == BackendLocal
}

// NewExperiment builds an experiment document for a local run of the given
// application.
func NewExperiment(name, applicationSlug string, a asset.Asset) *Experiment {
	return &Experiment{
		Meta: ExperimentMeta{
			Application:    MetaApplication{Slug: applicationSlug},
			Backend:        MetaBackend{Location: BackendLocal, Type: BackendTypeLocal},
			Description:    fmt.Sprintf("description of %s here", name),
			NumberOfRounds: defaultRoundsPerRun,
			Name:           name,
		},
		Asset: a,
	}
}

// ReadExperiment loads experiment.json from an experiment directory.
func ReadExperiment(dir string) (*Experiment, error) {
	path := filepath.Join(dir, experimentFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotAnExperiment, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading experiment: %w", err)
	}

	var experiment Experiment
	if err := json.Unmarshal(data, &experiment); err != nil {
		return nil, fmt.Errorf("parsing experiment: %w", err)
	}
	return &experiment, nil
}

// WriteExperiment stores the experiment document into its directory.
func WriteExperiment(dir string, experiment *Experiment) error {
	data, err := json.MarshalIndent(experiment, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding experiment: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, experimentFile), data, 0o644); err != nil {
		return fmt.Errorf("writing experiment: %w", err)
	}
	return nil
}

// IsExperimentDir reports whether a directory contains an experiment.json.
func IsExperimentDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, experimentFile))
	return err == nil && !info.IsDir()
}
