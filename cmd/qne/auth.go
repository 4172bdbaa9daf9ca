package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qnetlab/qne-adk/pkg/api"
)

var (
	loginUsername string
	loginPassword string
)

// openAPIClient builds a client for the coordinator of the stored login.
func openAPIClient() (*api.Client, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	store, err := api.NewAuthStore(dir)
	if err != nil {
		return nil, err
	}
	return api.NewClient(store.ActiveHost(), store), nil
}

var loginCmd = &cobra.Command{
	Use:   "login [host]",
	Short: "Log in to a remote coordinator",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return err
		}
		store, err := api.NewAuthStore(dir)
		if err != nil {
			return err
		}

		host := store.ActiveHost()
		if len(args) == 1 {
			host = args[0]
		}

		username := loginUsername
		if username == "" {
			username = os.Getenv("QNE_EMAIL")
		}
		password := loginPassword
		if password == "" {
			password = os.Getenv("QNE_PASSWORD")
		}
		if username == "" || password == "" {
			return fmt.Errorf("credentials required: pass --username/--password or set QNE_EMAIL and QNE_PASSWORD")
		}

		client := api.NewClient(host, store)
		if _, err := client.Login(username, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", host)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout [host]",
	Short: "Log out from a remote coordinator",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return err
		}
		store, err := api.NewAuthStore(dir)
		if err != nil {
			return err
		}

		host := store.ActiveHost()
		if len(args) == 1 {
			host = args[0]
		}

		if err := api.NewClient(host, store).Logout(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged out from %s\n", host)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "account e-mail address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
}
