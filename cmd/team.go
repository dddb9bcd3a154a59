package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/taskmate/internal/domain"
)

func newTeamCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage the team roster",
	}

	cmd.AddCommand(
		newTeamListCmd(app),
		newTeamAddCmd(app),
		newTeamRemoveCmd(app),
	)

	return cmd
}

func newTeamListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List team members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := app.roster.CurrentRoster(cmd.Context())
			if err != nil {
				return err
			}

			for _, name := range roster.Names() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newTeamAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a team member",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if domain.IsUnassignedName(name) {
				return fmt.Errorf("%q is reserved", domain.Unassigned)
			}

			roster, err := app.roster.CurrentRoster(cmd.Context())
			if err != nil {
				return err
			}
			if roster.Contains(name) {
				return fmt.Errorf("%s is already on the team", name)
			}

			if err := app.roster.Save(cmd.Context(), roster.With(name)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", name)
			return err
		},
	}
}

func newTeamRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a team member",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))

			roster, err := app.roster.CurrentRoster(cmd.Context())
			if err != nil {
				return err
			}
			canonical, ok := roster.Canonical(name)
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrUnknownMember, name)
			}

			if err := app.roster.Save(cmd.Context(), roster.Without(canonical)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", canonical)
			return err
		},
	}
}
