package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/taskmate/internal/domain"
)

var exitWords = map[string]struct{}{"quit": {}, "exit": {}, "bye": {}}

func newChatCmd(app *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the task assistant",
		Long:  "With a message argument chat answers once; without one it starts an interactive session. Type quit, exit or bye to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Tasks.SeedDemo {
				if _, err := app.tasks.SeedDemo(cmd.Context()); err != nil {
					return fmt.Errorf("seed demo tasks: %w", err)
				}
			}

			id := domain.SessionID(sessionID)
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				reply, err := app.assistant.Chat(cmd.Context(), id, strings.Join(args, " "))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, reply.Response)
				return err
			}

			return runChatLoop(cmd, app, id, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to continue (default: new session)")

	return cmd
}

func runChatLoop(cmd *cobra.Command, app *app, id domain.SessionID, in io.Reader, out io.Writer) error {
	_, _ = fmt.Fprintln(out, "taskmate chat. Type quit, exit or bye to leave.")
	_, _ = fmt.Fprintf(out, "Team: %s\n", rosterLine(cmd, app))

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, ok := exitWords[strings.ToLower(line)]; ok {
			_, _ = fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		reply, err := app.assistant.Chat(cmd.Context(), id, line)
		if err != nil {
			if errors.Is(err, domain.ErrModelUnavailable) {
				_, _ = fmt.Fprintln(out, "taskmate> No language model is configured; run `taskmate auth set-key` first.")
				continue
			}
			return err
		}
		id = reply.SessionID
		_, _ = fmt.Fprintf(out, "taskmate> %s\n", reply.Response)
	}
}

func rosterLine(cmd *cobra.Command, app *app) string {
	roster, err := app.confirm.Roster(cmd.Context())
	if err != nil || roster.IsEmpty() {
		return "(none)"
	}
	return roster.String()
}
