package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/todo/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

const taskColumns = `id, title, description, status, priority, tags, due_date, recurrence, reminder_offset, created_date`

const reminderColumns = `id, task_id, reminder_time, status, notification_message`

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return model.Task{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, tags, due_date, recurrence, reminder_offset, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Description, string(in.Status), string(in.Priority), tags,
		nullTime(in.DueDate), string(in.Recurrence), nullFloat(in.ReminderOffset), mustTime(in.CreatedDate),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	out := in.Clone()
	out.ID = int(id)
	return out, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id int) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, tags = ?, due_date = ?, recurrence = ?, reminder_offset = ?
		WHERE id = ?`,
		in.Title, in.Description, string(in.Status), string(in.Priority), tags,
		nullTime(in.DueDate), string(in.Recurrence), nullFloat(in.ReminderOffset), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE task_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := make([]any, 0, 3)
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateReminder(ctx context.Context, in model.Reminder) (model.Reminder, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (id, task_id, reminder_time, status, notification_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.TaskID, mustTime(in.ReminderTime), string(in.Status), in.NotificationMessage, mustTime(r.now()),
	)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) GetReminder(ctx context.Context, id string) (model.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	item, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrNotFound
		}
		return model.Reminder{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateReminder(ctx context.Context, in model.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET task_id = ?, reminder_time = ?, status = ?, notification_message = ?
		WHERE id = ?`,
		in.TaskID, mustTime(in.ReminderTime), string(in.Status), in.NotificationMessage, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteRemindersForTask(ctx context.Context, taskID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE task_id = ?`, taskID)
	return err
}

func (r *SQLiteRepository) ListReminders(ctx context.Context, filter ReminderListFilter) ([]model.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.TaskID != 0 {
		clauses = append(clauses, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY reminder_time ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reminder, 0)
	for rows.Next() {
		item, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := parseRequiredTime(v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	tm, err := time.Parse(sqliteTimeLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	return tm.Local(), nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

func decodeTags(raw string) ([]string, error) {
	var tags []string
	if strings.TrimSpace(raw) == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var status, priority, tags, recurrence, created string
	var due sql.NullString
	var offset sql.NullFloat64
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &status, &priority, &tags, &due, &recurrence, &offset, &created); err != nil {
		return model.Task{}, err
	}
	createdDate, err := parseRequiredTime(created)
	if err != nil {
		return model.Task{}, err
	}
	dueDate, err := parseNullableTime(due)
	if err != nil {
		return model.Task{}, err
	}
	out.Tags, err = decodeTags(tags)
	if err != nil {
		return model.Task{}, err
	}
	out.Status = model.Status(status)
	out.Priority = model.Priority(priority)
	out.Recurrence = model.Recurrence(recurrence)
	out.CreatedDate = createdDate
	out.DueDate = dueDate
	if offset.Valid {
		off := offset.Float64
		out.ReminderOffset = &off
	}
	return out, nil
}

func scanReminder(s scanner) (model.Reminder, error) {
	var out model.Reminder
	var reminderTime, status string
	if err := s.Scan(&out.ID, &out.TaskID, &reminderTime, &status, &out.NotificationMessage); err != nil {
		return model.Reminder{}, err
	}
	at, err := parseRequiredTime(reminderTime)
	if err != nil {
		return model.Reminder{}, err
	}
	out.ReminderTime = at
	out.Status = model.ReminderStatus(status)
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
