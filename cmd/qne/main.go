// Command qne manages quantum network applications and experiments: it
// scaffolds applications, creates experiments from them, runs rounds on the
// local simulator and retrieves results.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qnetlab/qne-adk/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:           "qne",
	Short:         "Quantum network experiment toolkit",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configDir resolves the per-user config directory, overridable for tests.
func configDir() (string, error) {
	if dir := os.Getenv("QNE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".qne"), nil
}

func openConfig() (*config.Manager, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return config.NewManager(dir)
}

func main() {
	rootCmd.AddCommand(loginCmd, logoutCmd, applicationCmd, experimentCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
