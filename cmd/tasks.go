package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	taskboard "github.com/bnema/taskmate/internal/adapters/render/tasks"
	"github.com/bnema/taskmate/internal/application"
	"github.com/bnema/taskmate/internal/domain"
)

func newTasksCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		newTasksListCmd(app),
		newTasksAddCmd(app),
		newTasksUpdateCmd(app),
		newTasksDeleteCmd(app),
		newTasksBulkCmd(app),
	)

	return cmd
}

func newTasksListCmd(app *app) *cobra.Command {
	var assignee, status, priority string
	var asJSON, watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the task board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := application.ListTasksQuery{Assignee: assignee}
			var err error
			if status != "" {
				if query.Status, err = domain.ParseStatus(status); err != nil {
					return err
				}
			}
			if priority != "" {
				if query.Priority, err = domain.ParsePriority(priority); err != nil {
					return err
				}
			}

			if watch {
				if asJSON {
					return fmt.Errorf("--watch cannot be combined with --json")
				}
				return watchBoard(cmd, app, query, interval)
			}

			view, err := application.QueryTasks(cmd.Context(), app.tasks, app.confirm, query)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			if view.Verdict != nil && !view.Verdict.IsAccepted() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), describeVerdict(*view.Verdict))
			}
			return writeBoard(cmd, app, view.Tasks)
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee (fuzzy matched)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending|in_progress|done)")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (high|medium|low)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tasks as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep the board open and refresh it")
	cmd.Flags().DurationVar(&interval, "interval", taskboard.DefaultRefresh, "Refresh interval for --watch")

	return cmd
}

func watchBoard(cmd *cobra.Command, app *app, query application.ListTasksQuery, interval time.Duration) error {
	load := func(ctx context.Context) ([]domain.Task, taskboard.RenderOptions, error) {
		view, err := application.QueryTasks(ctx, app.tasks, app.confirm, query)
		if err != nil {
			return nil, taskboard.RenderOptions{}, err
		}
		roster, err := app.confirm.Roster(ctx)
		if err != nil {
			return nil, taskboard.RenderOptions{}, err
		}
		return view.Tasks, taskboard.RenderOptions{Now: app.now(), Roster: roster}, nil
	}

	return taskboard.Watch(cmd.Context(), load, taskboard.WatchOptions{
		Interval: interval,
		Input:    cmd.InOrStdin(),
		Output:   cmd.OutOrStdout(),
	})
}

func writeBoard(cmd *cobra.Command, app *app, tasks []domain.Task) error {
	roster, err := app.confirm.Roster(cmd.Context())
	if err != nil {
		return err
	}

	rendered, err := app.boardRenderer(tasks, taskboard.RenderOptions{Now: app.now(), Roster: roster})
	if err != nil {
		return fmt.Errorf("render tasks: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func newTasksAddCmd(app *app) *cobra.Command {
	var assignee, status, priority, due, description string
	var accept bool

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			create := application.CreateTaskCommand{Title: strings.Join(args, " "), Description: description}
			var err error
			if status != "" {
				if create.Status, err = domain.ParseStatus(status); err != nil {
					return err
				}
			}
			if priority != "" {
				if create.Priority, err = domain.ParsePriority(priority); err != nil {
					return err
				}
			}
			if due != "" {
				if create.DueDate, err = parseDueDate(due); err != nil {
					return err
				}
			}
			if create.Assignee, err = resolveAssignee(cmd, app, assignee, accept); err != nil {
				return err
			}

			task, err := app.tasks.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", application.FormatTask(task))
			return err
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", domain.Unassigned, "Assignee (fuzzy matched against the roster)")
	cmd.Flags().StringVar(&status, "status", "", "Initial status")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (default from tasks.default_priority)")
	cmd.Flags().StringVar(&due, "due", "", "Due date YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "Longer description")
	cmd.Flags().BoolVarP(&accept, "yes", "y", false, "Accept a suggested team member for a misspelt assignee")

	return cmd
}

func newTasksUpdateCmd(app *app) *cobra.Command {
	var title, assignee, status, priority, due string
	var accept bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			var patch domain.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("status") {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &parsed
			}
			if flags.Changed("priority") {
				parsed, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &parsed
			}
			if flags.Changed("due") {
				parsed, err := parseDueDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = &parsed
			}
			if flags.Changed("assignee") {
				name, err := resolveAssignee(cmd, app, assignee, accept)
				if err != nil {
					return err
				}
				patch.Assignee = &name
			}

			task, err := app.tasks.Update(cmd.Context(), application.UpdateTaskCommand{ID: id, Patch: patch})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", application.FormatTask(task))
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&due, "due", "", "New due date YYYY-MM-DD")
	cmd.Flags().BoolVarP(&accept, "yes", "y", false, "Accept a suggested team member for a misspelt assignee")

	return cmd
}

func newTasksDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if err := app.tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted task %d\n", id)
			return err
		},
	}
}

func newTasksBulkCmd(app *app) *cobra.Command {
	var assignee, status string
	var accept bool

	cmd := &cobra.Command{
		Use:   "bulk <assign_all|unassign_all|status_all>",
		Short: "Apply one change to every task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bulk := application.BulkUpdateCommand{Operation: domain.BulkOperation(args[0])}
			if status != "" {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				bulk.Status = parsed
			}
			if bulk.Operation == domain.BulkAssignAll {
				name, err := resolveAssignee(cmd, app, assignee, accept)
				if err != nil {
					return err
				}
				bulk.Assignee = name
			}

			changed, err := app.tasks.Bulk(cmd.Context(), bulk)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d task(s) updated\n", bulk.Operation, changed)
			return err
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee for assign_all")
	cmd.Flags().StringVar(&status, "status", "", "Status for status_all")
	cmd.Flags().BoolVarP(&accept, "yes", "y", false, "Accept a suggested team member for a misspelt assignee")

	return cmd
}

func parseTaskID(raw string) (domain.TaskID, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: task id %q must be a positive integer", domain.ErrInvalidTask, raw)
	}
	return domain.TaskID(id), nil
}

func parseDueDate(raw string) (time.Time, error) {
	due, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due date %q must use YYYY-MM-DD", domain.ErrInvalidTask, raw)
	}
	return due, nil
}
