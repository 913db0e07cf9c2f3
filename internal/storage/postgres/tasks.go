package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/storage"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var taskColumns = []string{
	"id", "title", "completed", "date", "category", "is_label",
	"color", "notes", "recurrence", "recurring_parent_id", "sort_order",
}

var subtaskColumns = []string{"id", "task_id", "title", "completed", "position"}

type taskRow struct {
	ID                string         `db:"id"`
	Title             string         `db:"title"`
	Completed         bool           `db:"completed"`
	Date              models.Date    `db:"date"`
	Category          string         `db:"category"`
	IsLabel           bool           `db:"is_label"`
	Color             string         `db:"color"`
	Notes             string         `db:"notes"`
	Recurrence        sql.NullString `db:"recurrence"`
	RecurringParentID sql.NullString `db:"recurring_parent_id"`
	SortOrder         int            `db:"sort_order"`
}

type subtaskRow struct {
	TaskID    string `db:"task_id"`
	ID        string `db:"id"`
	Title     string `db:"title"`
	Completed bool   `db:"completed"`
}

func (s *Store) LoadTasks() ([]models.Task, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	var rows []taskRow
	err := s.db.Select(&rows, `
		SELECT id, title, completed, TO_CHAR(date, 'YYYY-MM-DD') AS date, category, is_label,
		       color, notes, recurrence::text AS recurrence, recurring_parent_id, sort_order
		FROM tasks
		ORDER BY date NULLS LAST, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	var subs []subtaskRow
	err = s.db.Select(&subs, `SELECT task_id, id, title, completed FROM subtasks ORDER BY task_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtasks: %w", err)
	}
	byTask := make(map[string][]models.Subtask)
	for _, st := range subs {
		byTask[st.TaskID] = append(byTask[st.TaskID], models.Subtask{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		t := models.Task{
			ID:                r.ID,
			Title:             r.Title,
			Completed:         r.Completed,
			Date:              r.Date,
			Category:          models.Category(r.Category),
			IsLabel:           r.IsLabel,
			Color:             models.Color(r.Color),
			Notes:             r.Notes,
			Subtasks:          byTask[r.ID],
			RecurringParentID: r.RecurringParentID.String,
			Order:             r.SortOrder,
		}
		if r.Recurrence.Valid {
			var rule models.Recurrence
			if err := json.Unmarshal([]byte(r.Recurrence.String), &rule); err != nil {
				return nil, fmt.Errorf("failed to parse recurrence of task %s: %w", r.ID, err)
			}
			t.Recurrence = &rule
		}
		tasks = append(tasks, t)
	}
	return models.MigrateTasks(tasks), nil
}

// SaveTasks replaces both tables inside one transaction.
func (s *Store) SaveTasks(tasks []models.Task) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM subtasks"); err != nil {
		return fmt.Errorf("failed to clear subtasks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	taskRows := make([][]interface{}, 0, len(tasks))
	var subtaskRows [][]interface{}
	for _, t := range tasks {
		rule, err := encodeRule(t.Recurrence)
		if err != nil {
			return fmt.Errorf("failed to encode recurrence of task %s: %w", t.ID, err)
		}
		taskRows = append(taskRows, []interface{}{
			t.ID, t.Title, t.Completed, t.Date, string(t.Category), t.IsLabel,
			string(t.Color), t.Notes, rule, nullable(t.RecurringParentID), t.Order,
		})
		for i, st := range t.Subtasks {
			subtaskRows = append(subtaskRows, []interface{}{st.ID, t.ID, st.Title, st.Completed, i})
		}
	}

	if err := insertBatches(tx, "tasks", taskColumns, taskRows); err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}
	if err := insertBatches(tx, "subtasks", subtaskColumns, subtaskRows); err != nil {
		return fmt.Errorf("failed to insert subtasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}
	return nil
}

// insertBatchSize caps the rows per INSERT so a statement stays under
// PostgreSQL's 65535 bind parameter limit.
var insertBatchSize = 1000

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// insertBatches writes rows with one multi-row INSERT per batch.
func insertBatches(tx execer, table string, columns []string, rows [][]interface{}) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		insert := psql.Insert(table).Columns(columns...)
		for _, row := range rows[start:end] {
			insert = insert.Values(row...)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

func encodeRule(rule *models.Recurrence) (interface{}, error) {
	if rule == nil {
		return nil, nil
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
