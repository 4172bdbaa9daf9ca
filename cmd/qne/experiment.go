package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qnetlab/qne-adk/pkg/asset"
	"github.com/qnetlab/qne-adk/pkg/config"
	"github.com/qnetlab/qne-adk/pkg/result"
	"github.com/qnetlab/qne-adk/pkg/round"
)

var experimentCmd = &cobra.Command{
	Use:     "experiment",
	Aliases: []string{"exp"},
	Short:   "Manage experiments",
}

var createRemote bool

var experimentCreateCmd = &cobra.Command{
	Use:   "create <name> <application>",
	Short: "Create an experiment from an application",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, applicationName := args[0], strings.ToLower(args[1])

		manager, err := openConfig()
		if err != nil {
			return err
		}
		appPath, err := manager.ApplicationPath(applicationName)
		if err != nil {
			return err
		}

		a, err := readApplicationAsset(appPath)
		if err != nil {
			return err
		}
		if err := a.Validate(); err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		experimentPath := filepath.Join(cwd, name)
		if err := os.MkdirAll(filepath.Join(experimentPath, "input"), 0o755); err != nil {
			return fmt.Errorf("creating experiment directory: %w", err)
		}
		if err := copyRolePrograms(appPath, experimentPath, a.Network.RoleMapping()); err != nil {
			return err
		}

		experiment := config.NewExperiment(name, applicationName, *a)
		if createRemote {
			experiment.Meta.Backend = config.MetaBackend{
				Location: config.BackendRemote,
				Type:     config.BackendTypeRemote,
			}
		}
		if err := config.WriteExperiment(experimentPath, experiment); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Experiment %q created at %s\n", name, experimentPath)
		return nil
	},
}

// readApplicationAsset loads the application's configured asset.
func readApplicationAsset(appPath string) (*asset.Asset, error) {
	data, err := os.ReadFile(filepath.Join(appPath, "config", "asset.json"))
	if err != nil {
		return nil, fmt.Errorf("reading application asset: %w", err)
	}
	var a asset.Asset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing application asset: %w", err)
	}
	return &a, nil
}

// copyRolePrograms copies each role's program into the experiment input
// directory, where the simulator expects it next to the generated configs.
func copyRolePrograms(appPath, experimentPath string, roles map[string]string) error {
	for role := range roles {
		name := fmt.Sprintf("app_%s.py", strings.ToLower(role))
		if err := copyFile(
			filepath.Join(appPath, "src", name),
			filepath.Join(experimentPath, "input", name),
		); err != nil {
			return fmt.Errorf("copying program for role %s: %w", role, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var runTimeout time.Duration

// remotePollInterval bounds how often the coordinator is asked for the state
// of a submitted round set.
const remotePollInterval = 2 * time.Second

var experimentRunCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run an experiment on its configured backend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		experimentPath, err := resolveExperimentPath(args)
		if err != nil {
			return err
		}

		experiment, err := config.ReadExperiment(experimentPath)
		if err != nil {
			return err
		}
		if err := experiment.Asset.Validate(); err != nil {
			return err
		}
		if !experiment.IsLocal() {
			return runRemoteExperiment(cmd, experimentPath, experiment)
		}

		manager := round.NewManager("local", &experiment.Asset, experimentPath,
			round.WithTimeout(runTimeout))
		res, err := manager.Process(cmd.Context())
		if err != nil {
			return err
		}

		if err := round.WriteResults(experimentPath, []*result.Result{res}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Experiment run complete, results stored in %s\n",
			filepath.Join(experimentPath, "results", "processed.json"))
		return nil
	},
}

// runRemoteExperiment submits the experiment to the coordinator, records the
// remote identifiers for later lookups and blocks until results arrive.
func runRemoteExperiment(cmd *cobra.Command, experimentPath string, experiment *config.Experiment) error {
	client, err := openAPIClient()
	if err != nil {
		return err
	}

	roundSet, experimentID, err := client.RunExperiment(&experiment.Asset,
		experiment.Meta.Application.AppVersion, experiment.Meta.NumberOfRounds)
	if err != nil {
		return err
	}
	experiment.Meta.ExperimentID = experimentID
	experiment.Meta.RoundSet = roundSet.URL
	if err := config.WriteExperiment(experimentPath, experiment); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()
	results, err := client.WaitForResults(ctx, roundSet.URL, remotePollInterval)
	if err != nil {
		return err
	}

	if err := round.WriteResults(experimentPath, results); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Experiment run complete, results stored in %s\n",
		filepath.Join(experimentPath, "results", "processed.json"))
	return nil
}

var experimentResultsCmd = &cobra.Command{
	Use:   "results [path]",
	Short: "Show the processed results of an experiment",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		experimentPath, err := resolveExperimentPath(args)
		if err != nil {
			return err
		}

		experiment, err := config.ReadExperiment(experimentPath)
		if err != nil {
			return err
		}

		var results []map[string]any
		if experiment.IsLocal() {
			results, err = round.ReadResults(experimentPath)
		} else {
			if experiment.Meta.RoundSet == "" {
				return fmt.Errorf("experiment %q has not been run remotely", experiment.Meta.Name)
			}
			client, clientErr := openAPIClient()
			if clientErr != nil {
				return clientErr
			}
			results, err = client.RoundSetResults(experiment.Meta.RoundSet)
		}
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	},
}

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an experiment and its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		experimentPath := filepath.Join(cwd, args[0])
		if !config.IsExperimentDir(experimentPath) {
			return fmt.Errorf("%s is not an experiment directory", experimentPath)
		}
		if err := os.RemoveAll(experimentPath); err != nil {
			return fmt.Errorf("deleting experiment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Experiment %q deleted\n", args[0])
		return nil
	},
}

func resolveExperimentPath(args []string) (string, error) {
	path, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if len(args) == 1 {
		path = args[0]
	}
	if !config.IsExperimentDir(path) {
		return "", fmt.Errorf("%s is not an experiment directory", path)
	}
	return path, nil
}

func init() {
	experimentCreateCmd.Flags().BoolVar(&createRemote, "remote", false,
		"target the remote coordinator instead of the local simulator")
	experimentRunCmd.Flags().DurationVar(&runTimeout, "timeout", round.DefaultTimeout,
		"maximum duration of one run")
	experimentCmd.AddCommand(experimentCreateCmd, experimentRunCmd, experimentResultsCmd, experimentDeleteCmd)
}
