package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

// Repository persists tasks in a SQLite database.
type Repository struct {
	db *sql.DB
}

var _ ports.TaskRepository = (*Repository)(nil)

// Open opens or creates the database at dbPath. ":memory:" keeps everything
// in process memory.
func Open(dbPath string) (*Repository, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection keeps ":memory:" coherent and serializes writers
	db.SetMaxOpenConns(1)

	r := &Repository{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		assignee    TEXT NOT NULL DEFAULT 'unassigned',
		status      TEXT NOT NULL DEFAULT 'pending',
		priority    TEXT NOT NULL DEFAULT 'medium',
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		due_date    TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *Repository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, assignee, status, priority, description, created_at, due_date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Assignee, string(task.Status), string(task.Priority), task.Description,
		formatTimestamp(task.CreatedAt), formatDate(task.DueDate),
	)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, fmt.Errorf("read task id: %w", err)
	}
	task.ID = domain.TaskID(id)

	return task, nil
}

func (r *Repository) GetByID(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTasks+` WHERE id = ?`, int64(id))
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

func (r *Repository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.Assignee != "" {
		where = append(where, "assignee = ? COLLATE NOCASE")
		args = append(args, filter.Assignee)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(filter.Priority))
	}

	query := selectTasks
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (r *Repository) Save(ctx context.Context, task domain.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, assignee = ?, status = ?, priority = ?, description = ?, due_date = ? WHERE id = ?`,
		task.Title, task.Assignee, string(task.Status), string(task.Priority), task.Description,
		formatDate(task.DueDate), int64(task.ID),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return expectOneRow(res)
}

func (r *Repository) Delete(ctx context.Context, id domain.TaskID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return expectOneRow(res)
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

const selectTasks = `SELECT id, title, assignee, status, priority, description, created_at, due_date FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		task      domain.Task
		id        int64
		status    string
		priority  string
		createdAt string
		dueDate   sql.NullString
	)
	if err := row.Scan(&id, &task.Title, &task.Assignee, &status, &priority, &task.Description, &createdAt, &dueDate); err != nil {
		return domain.Task{}, err
	}

	task.ID = domain.TaskID(id)
	task.Status = domain.Status(status)
	task.Priority = domain.Priority(priority)
	task.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if dueDate.Valid && dueDate.String != "" {
		task.DueDate, _ = time.Parse(domain.DateLayout, dueDate.String)
	}

	return task, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(domain.DateLayout)
}
