package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/taskmate/internal/application"
	"github.com/bnema/taskmate/internal/domain"
)

func newResolveCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Show how a name resolves against the team roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate := strings.Join(args, " ")
			verdict, err := app.confirm.ResolveName(cmd.Context(), candidate)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(verdict)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), describeVerdict(verdict))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verdict as JSON")

	return cmd
}

func describeVerdict(v domain.Verdict) string {
	switch v.Kind {
	case domain.VerdictAccepted:
		return fmt.Sprintf("accepted: %s", v.Name)
	case domain.VerdictNeedsConfirmation:
		return fmt.Sprintf("needs confirmation: %q looks like %s (%.1f%%)", v.Candidate, v.SuggestedName, v.Score)
	default:
		return fmt.Sprintf("rejected: %q matches no team member", v.Candidate)
	}
}

// resolveAssignee settles a name given on the command line. A near match is
// only taken when acceptSuggestion is set.
func resolveAssignee(cmd *cobra.Command, app *app, raw string, acceptSuggestion bool) (string, error) {
	if domain.IsUnassignedName(raw) {
		return domain.Unassigned, nil
	}

	verdict, err := app.confirm.ResolveName(cmd.Context(), raw)
	if err != nil {
		return "", err
	}

	switch verdict.Kind {
	case domain.VerdictAccepted:
		return verdict.Name, nil
	case domain.VerdictNeedsConfirmation:
		if acceptSuggestion {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "using %s for %q\n", verdict.SuggestedName, raw)
			return verdict.SuggestedName, nil
		}
		return "", fmt.Errorf("%w: did you mean %q? rerun with --yes to accept", domain.ErrUnknownMember, verdict.SuggestedName)
	default:
		roster, err := app.confirm.Roster(cmd.Context())
		if err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownMember, application.UnrecognizedName(raw, roster))
	}
}
