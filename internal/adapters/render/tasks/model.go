package tasks

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/taskmate/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// DefaultRefresh is how often a watched board reloads when no interval is set.
const DefaultRefresh = 5 * time.Second

// Loader fetches the current tasks and how to draw them.
type Loader func(ctx context.Context) ([]domain.Task, RenderOptions, error)

type WatchOptions struct {
	Interval time.Duration
	Input    io.Reader
	Output   io.Writer
}

type boardLoadedMsg struct {
	tasks []domain.Task
	opts  RenderOptions
	err   error
}

type refreshTickMsg struct{}

type model struct {
	ctx      context.Context
	load     Loader
	watching bool
	interval time.Duration

	tasks    []domain.Task
	opts     RenderOptions
	styles   styles
	err      error
	hideDone bool
	loads    int
	loadedAt time.Time
}

func newModel(ctx context.Context, load Loader, watching bool, interval time.Duration) model {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	return model{
		ctx:      ctx,
		load:     load,
		watching: watching,
		interval: interval,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m model) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		tasks, opts, err := load(ctx)
		return boardLoadedMsg{tasks: tasks, opts: opts, err: err}
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		m.loads++
		m.err = msg.err
		if msg.err == nil {
			m.tasks, m.opts = msg.tasks, msg.opts
			m.loadedAt = msg.opts.Now
		}
		if !m.watching {
			return m, tea.Quit
		}
		return m, m.tickCmd()
	case refreshTickMsg:
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.loadCmd()
		case "d":
			m.hideDone = !m.hideDone
		}
	}
	return m, nil
}

func (m model) View() string {
	board := renderBoard(m.visible(), m.opts, m.styles)
	if !m.watching {
		return board
	}

	footer := "r refresh  d toggle done  q quit"
	if !m.loadedAt.IsZero() {
		footer = "updated " + m.loadedAt.Format("15:04:05") + "  " + footer
	}
	lines := []string{board}
	if m.err != nil {
		lines = append(lines, m.styles.warning.Render("refresh failed: "+m.err.Error()))
	}
	lines = append(lines, m.styles.section.Render(m.styles.meta.Render(footer)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) visible() []domain.Task {
	if !m.hideDone {
		return m.tasks
	}
	out := make([]domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.Status != domain.StatusDone {
			out = append(out, task)
		}
	}
	return out
}

// Render draws the task board once and returns it as a string.
func Render(tasks []domain.Task, opts RenderOptions) (string, error) {
	static := func(context.Context) ([]domain.Task, RenderOptions, error) {
		return tasks, opts, nil
	}
	p := tea.NewProgram(
		newModel(context.Background(), static, false, 0),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	if rendered.err != nil {
		return "", rendered.err
	}

	return rendered.View(), nil
}

// Watch keeps the board on screen, reloading it every interval until the
// user quits or ctx ends.
func Watch(ctx context.Context, load Loader, opts WatchOptions) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	_, err := tea.NewProgram(newModel(ctx, load, true, opts.Interval), programOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
