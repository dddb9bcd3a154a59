package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/taskmate/internal/application"
)

func newMeetingCmd(app *app) *cobra.Command {
	var (
		notesFile string
		selection string
	)

	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Suggest tasks from meeting notes",
		Long:  "Sends the notes to the language model, lists the suggested tasks and creates the ones you pick. Without --select the selection is read from stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			notes, err := readNotes(cmd, notesFile)
			if err != nil {
				return err
			}

			analysis, err := app.meetings.Analyze(cmd.Context(), "", notes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, application.FormatSuggestions(analysis.Suggestions)); err != nil {
				return err
			}
			if len(analysis.Suggestions) == 0 {
				return nil
			}

			if selection == "" {
				_, _ = fmt.Fprint(out, "select> ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read selection: %w", err)
				}
				selection = strings.TrimSpace(line)
			}

			outcome, err := app.meetings.CreateSelected(cmd.Context(), analysis.SessionID, selection)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, application.FormatSuggestionOutcome(outcome))
			return err
		},
	}

	cmd.Flags().StringVarP(&notesFile, "file", "f", "", "Meeting notes file (- for stdin)")
	cmd.Flags().StringVar(&selection, "select", "", "Suggestions to create, e.g. 1,3 or all or none")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readNotes(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read meeting notes: %w", err)
	}
	return string(data), nil
}
