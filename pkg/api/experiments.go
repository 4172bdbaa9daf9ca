package api

import (
	"fmt"
	"os"
	"strconv"

	"github.com/qnetlab/qne-adk/pkg/asset"
)

// RemoteExperiment is an experiment registered on the coordinator.
type RemoteExperiment struct {
	URL          string `json:"url"`
	ID           int    `json:"id"`
	AppVersion   string `json:"app_version"`
	PersonalNote string `json:"personal_note"`
	IsMarked     bool   `json:"is_marked"`
}

// AppSource describes an uploaded application source bundle.
type AppSource struct {
	URL         string `json:"url"`
	SourceFiles string `json:"source_files"`
	AppVersion  string `json:"app_version"`
}

// The coordinator's asset schema names channel endpoints by slug, unlike the
// local asset documents.
type remoteChannel struct {
	NodeSlug1  string           `json:"node_slug1"`
	NodeSlug2  string           `json:"node_slug2"`
	Parameters []asset.Template `json:"parameters"`
}

type remoteNetwork struct {
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Roles    map[string]string `json:"roles"`
	Nodes    []asset.Node      `json:"nodes"`
	Channels []remoteChannel   `json:"channels"`
}

type remoteAsset struct {
	Network     remoteNetwork    `json:"network"`
	Application []asset.Template `json:"application"`
	Experiment  string           `json:"experiment"`
}

// CreateExperiment registers a new experiment for an application version.
func (c *Client) CreateExperiment(appVersion string) (*RemoteExperiment, error) {
	payload := RemoteExperiment{
		AppVersion:   appVersion,
		PersonalNote: "Experiment created by qne-adk",
	}
	var created RemoteExperiment
	if err := c.Post("/experiments/", payload, &created); err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	return &created, nil
}

// CreateAsset attaches an asset to a remote experiment and returns its URL.
func (c *Client) CreateAsset(a *asset.Asset, experimentURL string) (string, error) {
	payload := translateAsset(a, experimentURL)
	var created struct {
		URL string `json:"url"`
	}
	if err := c.Post("/assets/", payload, &created); err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	return created.URL, nil
}

// RunExperiment submits an experiment to the coordinator: register the
// experiment, attach its asset and create a round set over it. It returns the
// created round set and the remote experiment id for later bookkeeping.
func (c *Client) RunExperiment(a *asset.Asset, appVersion string, numberOfRounds int) (*RoundSet, string, error) {
	experiment, err := c.CreateExperiment(appVersion)
	if err != nil {
		return nil, "", err
	}

	assetURL, err := c.CreateAsset(a, experiment.URL)
	if err != nil {
		return nil, "", err
	}

	roundSet, err := c.CreateRoundSet(assetURL, numberOfRounds)
	if err != nil {
		return nil, "", err
	}
	return roundSet, strconv.Itoa(experiment.ID), nil
}

// UploadSources packs the application's per-role programs into a tarball and
// uploads it as the source bundle of the given application version. The local
// tarball is removed once the upload finishes.
func (c *Client) UploadSources(applicationPath, slug string, roles []string, appVersion string) (*AppSource, error) {
	tarball, err := PackSources(applicationPath, slug, roles)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tarball)

	fields := map[string]string{}
	if appVersion != "" {
		fields["app_version"] = appVersion
	}
	var source AppSource
	if err := c.PostFile("/app-sources/", "source_files", tarball, fields, &source); err != nil {
		return nil, fmt.Errorf("upload sources: %w", err)
	}
	return &source, nil
}

func translateAsset(a *asset.Asset, experimentURL string) remoteAsset {
	channels := make([]remoteChannel, len(a.Network.Channels))
	for i, channel := range a.Network.Channels {
		channels[i] = remoteChannel{
			NodeSlug1:  channel.Node1,
			NodeSlug2:  channel.Node2,
			Parameters: channel.Parameters,
		}
	}
	return remoteAsset{
		Network: remoteNetwork{
			Name:     a.Network.Name,
			Slug:     a.Network.Slug,
			Roles:    a.Network.Roles,
			Nodes:    a.Network.Nodes,
			Channels: channels,
		},
		Application: a.Application,
		Experiment:  experimentURL,
	}
}
