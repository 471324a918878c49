package cmd

import (
	"context"
	"errors"

	"github.com/easygest/bp/internal/auth"
	"github.com/easygest/bp/internal/output"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:     "login <phone> <pin>",
	Short:   "Log in with phone number and PIN",
	Long:    `Authenticates against the server when reachable, or against the credential cached on the last online login when offline.`,
	GroupID: "system",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		user, offline, err := app.auth.Login(context.Background(), args[0], args[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrBadCredentials):
				output.Error("invalid phone number or pin")
			case errors.Is(err, auth.ErrNoOfflineSession):
				output.Error("server unreachable and no cached session for this phone")
			default:
				output.Error("login: %v", err)
			}
			return err
		}

		if offline {
			output.Warning("logged in offline as %s (%s)", user.Name, user.Role)
		} else {
			output.Success("logged in as %s (%s)", user.Name, user.Role)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "End the current session",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		if err := app.auth.Logout(context.Background()); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		output.Success("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the current session user",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		user, err := app.requireUser()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		output.Info("%s (%s, %s)", user.Name, user.Role, user.Phone)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
