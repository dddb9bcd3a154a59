package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configFile string
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "taskmate",
		Short:         "Conversational task assistant for small teams",
		Long:          "taskmate manages team tasks through a chat assistant that resolves misspelt team member names, asking for confirmation when it is not sure who you meant.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			wired, err := wireApp(cmd.Context(), configFile)
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.taskmate/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newChatCmd(app),
		newMeetingCmd(app),
		newTasksCmd(app),
		newTeamCmd(app),
		newResolveCmd(app),
		newAuthCmd(app),
	)

	return rootCmd
}
