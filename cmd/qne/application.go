package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qnetlab/qne-adk/pkg/asset"
)

var applicationCmd = &cobra.Command{
	Use:     "application",
	Aliases: []string{"app"},
	Short:   "Manage applications",
}

const applicationSourceStub = `def main(app_config=None):
    # Program for this role. See the simulator documentation for the SDK.
    return {}
`

var applicationCreateCmd = &cobra.Command{
	Use:   "create <name> <role> <role> [role...]",
	Short: "Scaffold a new application with one program per role",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, roles := strings.ToLower(args[0]), args[1:]

		manager, err := openConfig()
		if err != nil {
			return err
		}
		if exists, path, err := manager.ApplicationExists(name); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("application %q already exists at %s", name, path)
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		appPath := filepath.Join(cwd, name)
		srcPath := filepath.Join(appPath, "src")
		if err := os.MkdirAll(srcPath, 0o755); err != nil {
			return fmt.Errorf("creating application directory: %w", err)
		}

		for _, role := range roles {
			stub := filepath.Join(srcPath, fmt.Sprintf("app_%s.py", strings.ToLower(role)))
			if err := os.WriteFile(stub, []byte(applicationSourceStub), 0o644); err != nil {
				return fmt.Errorf("writing role program: %w", err)
			}
		}

		if err := writeDefaultAsset(appPath, roles); err != nil {
			return err
		}
		if err := manager.AddApplication(name, cwd); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Application %q created at %s\n", name, appPath)
		return nil
	},
}

// writeDefaultAsset scaffolds config/asset.json: each role gets its own node
// and every node pair gets a perfect channel, so a freshly created
// application runs unmodified.
func writeDefaultAsset(appPath string, roles []string) error {
	a := asset.Asset{
		Network: asset.Network{
			Name:  "default",
			Slug:  "default",
			Roles: make(map[string]string, len(roles)),
		},
	}
	for _, role := range roles {
		node := strings.ToLower(role)
		a.Network.Roles[strings.ToLower(role)] = node
		a.Network.Nodes = append(a.Network.Nodes, asset.Node{Name: role, Slug: node})
	}
	for i := 0; i < len(roles); i++ {
		for j := i + 1; j < len(roles); j++ {
			a.Network.Channels = append(a.Network.Channels, asset.Channel{
				Node1: strings.ToLower(roles[i]),
				Node2: strings.ToLower(roles[j]),
				Parameters: []asset.Template{
					{Values: []asset.TemplateValue{
						{Name: "fidelity", Value: 1.0},
					}},
				},
			})
		}
	}

	configPath := filepath.Join(appPath, "config")
	if err := os.MkdirAll(configPath, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding default asset: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "asset.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing default asset: %w", err)
	}
	return nil
}

var applicationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local applications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := openConfig()
		if err != nil {
			return err
		}
		applications, err := manager.Applications()
		if err != nil {
			return err
		}
		if len(applications) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No applications found.")
			return nil
		}
		for _, application := range applications {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", application.Name, application.Path)
		}
		return nil
	},
}

var applicationUploadCmd = &cobra.Command{
	Use:   "upload <name>",
	Short: "Upload an application's role programs to the coordinator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])

		manager, err := openConfig()
		if err != nil {
			return err
		}
		appPath, err := manager.ApplicationPath(name)
		if err != nil {
			return err
		}
		a, err := readApplicationAsset(appPath)
		if err != nil {
			return err
		}

		roles := make([]string, 0, len(a.Network.Roles))
		for role := range a.Network.Roles {
			roles = append(roles, role)
		}

		client, err := openAPIClient()
		if err != nil {
			return err
		}
		source, err := client.UploadSources(appPath, name, roles, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Application %q sources uploaded to %s\n", name, source.URL)
		return nil
	},
}

var applicationDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove an application and its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])

		manager, err := openConfig()
		if err != nil {
			return err
		}
		path, err := manager.ApplicationPath(name)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing application files: %w", err)
		}
		if err := manager.DeleteApplication(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Application %q deleted\n", name)
		return nil
	},
}

func init() {
	applicationCmd.AddCommand(applicationCreateCmd, applicationListCmd, applicationUploadCmd, applicationDeleteCmd)
}
