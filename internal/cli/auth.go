package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jrsteele09/tripmate-client/users"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			user, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if a.jsonOutput {
				return writeJSON(a.out, user)
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", user.DisplayName())
			if user.NeedsOnboarding() {
				fmt.Fprintln(a.out, "Choose a role with: tripmate choose-role <general|provider>")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(a.out, user)
			}
			fmt.Fprintln(a.out, formatUser(user))
			return nil
		},
	}
}

func (a *app) chooseRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "choose-role <general|provider>",
		Short:     "Pick the role for a new account",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(users.RoleGeneral), string(users.RoleProvider)},
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := users.ParseRole(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			resp, err := client.ChooseRole(cmd.Context(), role)
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("role not changed: %s", resp.Message)
			}
			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(a.out, user)
			}
			fmt.Fprintf(a.out, "Role set to %s\n", user.Role)
			return nil
		},
	}
}

func formatUser(u *users.User) string {
	name := u.Name
	if name == "" {
		name = "-"
	}
	role := u.Role.String()
	if u.NeedsOnboarding() {
		role = "(not chosen)"
	}
	return fmt.Sprintf(`Email:    %s
Name:     %s
Role:     %s
Sign-in:  %s`, u.Email, name, role, u.AuthType)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
