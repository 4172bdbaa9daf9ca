// Package config manages the user's local configuration: the registry of
// created applications under the config directory and the experiment.json
// document inside an experiment directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const applicationsFile = "applications.json"

var (
	// ErrApplicationNotFound is returned when a lookup names an application
	// absent from the registry.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrConfigDirIsFile is returned when the configured directory path
	// points at a regular file.
	ErrConfigDirIsFile = errors.New("config directory is a file")
)

// ApplicationInfo is one registry entry: a named application and the
// directory it lives in.
type ApplicationInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Manager owns the applications registry. The registry maps lowercase
// application names to their on-disk locations and survives across runs.
type Manager struct {
	dir  string
	file string
}

// NewManager opens the registry under dir, creating the directory and an
// empty registry file on first use. Registry entries whose directories no
// longer exist are dropped.
func NewManager(dir string) (*Manager, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrConfigDirIsFile, dir)
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("inspecting config directory: %w", err)
	}

	m := &Manager{dir: dir, file: filepath.Join(dir, applicationsFile)}

	if _, err := os.Stat(m.file); os.IsNotExist(err) {
		if err := m.write(map[string]registryEntry{}); err != nil {
			return nil, err
		}
		return m, nil
	}

	if err := m.cleanup(); err != nil {
		return nil, err
	}
	return m, nil
}

// Dir returns the config directory the manager operates in.
func (m *Manager) Dir() string {
	return m.dir
}

type registryEntry struct {
	Path string `json:"path"`
}

// AddApplication records an application and its location. Names are stored
// in lowercase so lookups are case insensitive.
func (m *Manager) AddApplication(name, path string) error {
	name = strings.ToLower(name)

	entries, err := m.read()
	if err != nil {
		return err
	}
	entries[name] = registryEntry{Path: filepath.Join(path, name) + string(os.PathSeparator)}
	return m.write(entries)
}

// DeleteApplication removes an application from the registry. Removing an
// unknown name is not an error.
func (m *Manager) DeleteApplication(name string) error {
	name = strings.ToLower(name)

	entries, err := m.read()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return m.write(entries)
}

// Applications lists every registered application.
func (m *Manager) Applications() ([]ApplicationInfo, error) {
	entries, err := m.read()
	if err != nil {
		return nil, err
	}

	applications := make([]ApplicationInfo, 0, len(entries))
	for name, entry := range entries {
		applications = append(applications, ApplicationInfo{Name: name, Path: entry.Path})
	}
	return applications, nil
}

// Application looks up one application by name, case insensitively.
func (m *Manager) Application(name string) (ApplicationInfo, error) {
	applications, err := m.Applications()
	if err != nil {
		return ApplicationInfo{}, err
	}
	for _, application := range applications {
		if strings.EqualFold(application.Name, name) {
			return application, nil
		}
	}
	return ApplicationInfo{}, fmt.Errorf("%w: %s", ErrApplicationNotFound, name)
}

// ApplicationPath returns the directory of a registered application. The
// lookup fails when the registered directory no longer exists on disk.
func (m *Manager) ApplicationPath(name string) (string, error) {
	application, err := m.Application(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(application.Path); err != nil {
		return "", fmt.Errorf("%w: %s (stale path %s)", ErrApplicationNotFound, name, application.Path)
	}
	return application.Path, nil
}

// ApplicationFromPath resolves which registered application owns the given
// directory.
func (m *Manager) ApplicationFromPath(path string) (ApplicationInfo, error) {
	applications, err := m.Applications()
	if err != nil {
		return ApplicationInfo{}, err
	}

	want := filepath.Join(path, "") + string(os.PathSeparator)
	for _, application := range applications {
		if application.Path == want {
			return application, nil
		}
	}
	return ApplicationInfo{}, fmt.Errorf("%w: no application at %s", ErrApplicationNotFound, path)
}

// ApplicationExists reports whether a name is already taken, returning the
// registered path when it is.
func (m *Manager) ApplicationExists(name string) (bool, string, error) {
	application, err := m.Application(name)
	if errors.Is(err, ErrApplicationNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, application.Path, nil
}

// cleanup drops registry entries whose directories were removed behind our
// back, keeping the registry in sync with the filesystem.
func (m *Manager) cleanup() error {
	entries, err := m.read()
	if err != nil {
		return err
	}

	changed := false
	for name, entry := range entries {
		if _, err := os.Stat(entry.Path); err != nil {
			delete(entries, name)
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return m.write(entries)
}

func (m *Manager) read() (map[string]registryEntry, error) {
	data, err := os.ReadFile(m.file)
	if err != nil {
		return nil, fmt.Errorf("reading applications registry: %w", err)
	}
	entries := make(map[string]registryEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing applications registry: %w", err)
	}
	return entries, nil
}

func (m *Manager) write(entries map[string]registryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding applications registry: %w", err)
	}
	if err := os.WriteFile(m.file, data, 0o644); err != nil {
		return fmt.Errorf("writing applications registry: %w", err)
	}
	return nil
}
