package tasks

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/taskmate/internal/domain"
)

type RenderOptions struct {
	Now time.Time
	// Roster orders the assignee sections; members without tasks are skipped.
	Roster domain.Roster
}

type group struct {
	assignee string
	tasks    []domain.Task
}

func renderBoard(tasks []domain.Task, opts RenderOptions, s styles) string {
	done := 0
	for _, task := range tasks {
		if task.Status == domain.StatusDone {
			done++
		}
	}

	lines := []string{
		s.title.Render("Task Board"),
		s.header.Render(fmt.Sprintf("tasks: %d  done: %d", len(tasks), done)),
	}

	if len(tasks) == 0 {
		lines = append(lines, s.empty.Render("No tasks found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, g := range groupByAssignee(tasks, opts.Roster) {
		lines = append(lines, s.section.Render(renderGroup(g, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// groupByAssignee keeps roster order, then other names in first-seen order,
// with unassigned work last.
func groupByAssignee(tasks []domain.Task, roster domain.Roster) []group {
	index := map[string]int{}
	var groups []group
	add := func(name string) {
		key := strings.ToLower(name)
		if _, ok := index[key]; ok {
			return
		}
		index[key] = len(groups)
		groups = append(groups, group{assignee: name})
	}

	present := map[string]bool{}
	for _, task := range tasks {
		present[strings.ToLower(task.Assignee)] = true
	}
	for _, name := range roster.Names() {
		if present[strings.ToLower(name)] {
			add(name)
		}
	}
	for _, task := range tasks {
		if !task.IsUnassigned() {
			add(task.Assignee)
		}
	}

	var unassigned []domain.Task
	for _, task := range tasks {
		if task.IsUnassigned() {
			unassigned = append(unassigned, task)
			continue
		}
		i := index[strings.ToLower(task.Assignee)]
		groups[i].tasks = append(groups[i].tasks, task)
	}
	if len(unassigned) > 0 {
		groups = append(groups, group{assignee: domain.Unassigned, tasks: unassigned})
	}

	return groups
}

func renderGroup(g group, opts RenderOptions, s styles) string {
	done := 0
	for _, task := range g.tasks {
		if task.Status == domain.StatusDone {
			done++
		}
	}

	heading := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.assignee.Render(g.assignee),
		" ",
		renderProgressBar(done, len(g.tasks), 16, s),
		" ",
		s.meta.Render(fmt.Sprintf("%d/%d done", done, len(g.tasks))),
	)

	parts := []string{heading}
	for _, task := range g.tasks {
		parts = append(parts, taskLine(task, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func taskLine(task domain.Task, opts RenderOptions, s styles) string {
	title := s.task.Render(task.Title)
	if task.Status == domain.StatusDone {
		title = s.done.Render(task.Title)
	}

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.meta.Render(fmt.Sprintf("  #%d ", task.ID)),
		statusMark(task.Status),
		" ",
		title,
		" ",
		priorityStyle(task.Priority, s).Render(string(task.Priority)),
	)

	if task.DueDate.IsZero() {
		return line
	}

	due := formatDueRelative(task.DueDate, opts.Now)
	if task.Status != domain.StatusDone && !opts.Now.IsZero() && dayOf(task.DueDate).Before(dayOf(opts.Now)) {
		return line + " " + s.warning.Render("("+due+")")
	}
	dueStyle := lipgloss.NewStyle().Foreground(dueColor(task.DueDate, opts.Now))
	return line + " " + dueStyle.Render("("+due+")")
}

func statusMark(status domain.Status) string {
	switch status {
	case domain.StatusDone:
		return "[x]"
	case domain.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func priorityStyle(priority domain.Priority, s styles) lipgloss.Style {
	switch priority {
	case domain.PriorityHigh:
		return s.high
	case domain.PriorityLow:
		return s.low
	default:
		return s.medium
	}
}

func renderProgressBar(done, total, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := 0
	if total > 0 {
		filled = int(math.Round(float64(width) * float64(done) / float64(total)))
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDueRelative(due, now time.Time) string {
	if now.IsZero() {
		return "due " + due.Format(domain.DateLayout)
	}

	days := int(dayOf(due).Sub(dayOf(now)).Hours() / 24)
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days > 1:
		return fmt.Sprintf("due in %d days", days)
	case days == -1:
		return "overdue by 1 day"
	default:
		return fmt.Sprintf("overdue by %d days", -days)
	}
}

// dueColor brightens as the due date approaches over a one week window.
func dueColor(due, now time.Time) lipgloss.Color {
	if now.IsZero() {
		return lipgloss.Color("255")
	}

	window := 7 * 24 * time.Hour
	remaining := dayOf(due).Sub(dayOf(now))
	return interpolateColor(window.Seconds()-remaining.Seconds(), 0, window.Seconds())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// 240 is faded grey, 255 bright white on the ANSI 256 ramp.
	interpolated := 240.0 + 15.0*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
