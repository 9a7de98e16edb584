package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/auth"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerConfirm  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("TIMESHEET_PASSWORD")
		}
		svc := deps.Workspace.Auth
		u, err := svc.Login(cmd.Context(), auth.LoginDTO{Email: loginEmail, Password: password})
		if err != nil {
			return failed(svc.Snapshot().Status.Error, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", u.DisplayName(), u.Role)
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		confirm := registerConfirm
		if confirm == "" {
			confirm = registerPassword
		}
		svc := deps.Workspace.Auth
		u, err := svc.Register(cmd.Context(), auth.RegisterDTO{
			Name:            registerName,
			Email:           registerEmail,
			Password:        registerPassword,
			ConfirmPassword: confirm,
		})
		if err != nil {
			return failed(svc.Snapshot().Status.Error, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s (%s)\n", u.DisplayName(), u.Role)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		if err := deps.Workspace.Auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		u, ok := deps.Workspace.Auth.CurrentUser()
		if !ok {
			return internal.ErrNotAuthenticated
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), u)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:  %s\n", orDash(u.Name))
		fmt.Fprintf(out, "Email: %s\n", orDash(u.Email))
		fmt.Fprintf(out, "Role:  %s\n", u.Role)
		if u.Department != "" {
			fmt.Fprintf(out, "Dept:  %s\n", u.Department)
		}
		if exp, ok := deps.Session.ExpiresAt(); ok {
			state := "expires"
			if exp.Before(time.Now()) {
				state = "expired"
			}
			fmt.Fprintf(out, "Token: %s %s\n", state, exp.Local().Format(time.RFC1123))
		}
		return nil
	}),
}

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "List the sections available to your role",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		items := deps.Workspace.Navigation()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Sign in to see available sections.")
			return nil
		}
		tw := newTable(cmd.OutOrStdout(), "SECTION", "PATH")
		for _, item := range items {
			row(tw, item.Label, item.Path)
		}
		return tw.Flush()
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (or TIMESHEET_PASSWORD)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm-password", "", "repeat the password (defaults to --password)")
}
