package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/google/uuid"
)

// TasksDB is the sqlite-backed dao.TaskRepository.
type TasksDB struct {
	db *sql.DB
}

func (repo *TasksDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS tasks (
		name TEXT NOT NULL PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE ON UPDATE CASCADE,
		status TEXT NOT NULL,
		exit_status INTEGER,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		started_at INTEGER,
		completed_at INTEGER
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *TasksDB) Create(ctx context.Context, name string, runID uuid.UUID) (dao.Task, error) {
	now := time.Now()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO tasks (name, run_id, status, created_at) VALUES (?, ?, ?, ?);`,
		name, runID.String(), dao.TaskPending.String(), now.Unix(),
	)
	if err != nil {
		return dao.Task{}, wrapDBError(err)
	}
	return repo.GetByName(ctx, name)
}

func (repo *TasksDB) GetByName(ctx context.Context, name string) (dao.Task, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT run_id, status, exit_status, error, created_at, started_at, completed_at
		 FROM tasks WHERE name = ?;`,
		name,
	)
	return scanTask(row, name)
}

func scanTask(row rowScanner, name string) (dao.Task, error) {
	var runID, status, errMsg string
	var exitStatus sql.NullInt64
	var createdAt int64
	var startedAt, completedAt sql.NullInt64

	err := row.Scan(&runID, &status, &exitStatus, &errMsg, &createdAt, &startedAt, &completedAt)
	if err != nil {
		return dao.Task{}, wrapDBError(err)
	}

	rid, err := uuid.Parse(runID)
	if err != nil {
		return dao.Task{}, fmt.Errorf("stored run ID %q is invalid: %w", runID, err)
	}
	st, err := dao.ParseTaskStatus(status)
	if err != nil {
		return dao.Task{}, fmt.Errorf("stored task status %q is invalid: %w", status, err)
	}

	task := dao.Task{
		Name:      name,
		RunUUID:   rid,
		Status:    st,
		Error:     errMsg,
		CreatedAt: time.Unix(createdAt, 0),
	}
	if exitStatus.Valid {
		v := int(exitStatus.Int64)
		task.ExitStatus = &v
	}
	if startedAt.Valid {
		t := time.Unix(startedAt.Int64, 0)
		task.StartedAt = &t
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		task.CompletedAt = &t
	}
	return task, nil
}

func (repo *TasksDB) List(ctx context.Context, runID *uuid.UUID, status *dao.TaskStatus, limit, offset int) ([]dao.Task, error) {
	limit, offset = normalizePage(limit, offset)

	query := `SELECT name, run_id, status, exit_status, error, created_at, started_at, completed_at FROM tasks`
	var args []any
	var conds []string
	if runID != nil {
		conds = append(conds, "run_id = ?")
		args = append(args, runID.String())
	}
	if status != nil {
		conds = append(conds, "status = ?")
		args = append(args, status.String())
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at ASC LIMIT ? OFFSET ?;"
	args = append(args, limit, offset)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Task
	for rows.Next() {
		var name, runIDStr, st, errMsg string
		var exitStatus sql.NullInt64
		var createdAt int64
		var startedAt, completedAt sql.NullInt64

		if err := rows.Scan(&name, &runIDStr, &st, &exitStatus, &errMsg, &createdAt, &startedAt, &completedAt); err != nil {
			return nil, wrapDBError(err)
		}
		rid, err := uuid.Parse(runIDStr)
		if err != nil {
			return all, fmt.Errorf("stored run ID %q is invalid: %w", runIDStr, err)
		}
		status, err := dao.ParseTaskStatus(st)
		if err != nil {
			return all, fmt.Errorf("stored task status %q is invalid: %w", st, err)
		}
		task := dao.Task{
			Name:      name,
			RunUUID:   rid,
			Status:    status,
			Error:     errMsg,
			CreatedAt: time.Unix(createdAt, 0),
		}
		if exitStatus.Valid {
			v := int(exitStatus.Int64)
			task.ExitStatus = &v
		}
		if startedAt.Valid {
			t := time.Unix(startedAt.Int64, 0)
			task.StartedAt = &t
		}
		if completedAt.Valid {
			t := time.Unix(completedAt.Int64, 0)
			task.CompletedAt = &t
		}
		all = append(all, task)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *TasksDB) Count(ctx context.Context, runID *uuid.UUID, status *dao.TaskStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM tasks`
	var args []any
	var conds []string
	if runID != nil {
		conds = append(conds, "run_id = ?")
		args = append(args, runID.String())
	}
	if status != nil {
		conds = append(conds, "status = ?")
		args = append(args, status.String())
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	row := repo.db.QueryRowContext(ctx, query+";", args...)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, wrapDBError(err)
	}
	return n, nil
}

func (repo *TasksDB) Start(ctx context.Context, name string, startedAt time.Time) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, started_at = ? WHERE name = ?;`,
		dao.TaskRunning.String(), startedAt.Unix(), name,
	)
	return rowsAffectedOK(res, err)
}

func (repo *TasksDB) Complete(ctx context.Context, name string, exitStatus *int, completedAt time.Time) (bool, error) {
	var exitVal any
	if exitStatus != nil {
		exitVal = *exitStatus
	}
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, exit_status = ?, completed_at = ? WHERE name = ?;`,
		dao.TaskCompleted.String(), exitVal, completedAt.Unix(), name,
	)
	return rowsAffectedOK(res, err)
}

func (repo *TasksDB) Fail(ctx context.Context, name, errMsg string, completedAt time.Time) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, error = ?, completed_at = ? WHERE name = ?;`,
		dao.TaskFailed.String(), errMsg, completedAt.Unix(), name,
	)
	return rowsAffectedOK(res, err)
}

func (repo *TasksDB) Cancel(ctx context.Context, name string, completedAt time.Time) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ? WHERE name = ?;`,
		dao.TaskCanceled.String(), completedAt.Unix(), name,
	)
	return rowsAffectedOK(res, err)
}

func (repo *TasksDB) Preempt(ctx context.Context, name string, completedAt time.Time) (bool, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ? WHERE name = ?;`,
		dao.TaskPreempted.String(), completedAt.Unix(), name,
	)
	return rowsAffectedOK(res, err)
}

// rowsAffectedOK reports whether an UPDATE touched a row, without treating
// zero rows as an error; callers use this for status transitions that
// should no-op rather than fail outright when the task is already gone.
func rowsAffectedOK(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError(err)
	}
	return n > 0, nil
}
