package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dekarrin/wdlcore/server/dao"
)

// TaskLogsDB is the sqlite-backed dao.TaskLogRepository.
type TaskLogsDB struct {
	db *sql.DB
}

func (repo *TaskLogsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS task_logs (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		task_name TEXT NOT NULL REFERENCES tasks(name) ON DELETE CASCADE ON UPDATE CASCADE,
		source TEXT NOT NULL,
		chunk BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *TaskLogsDB) Insert(ctx context.Context, taskName string, source dao.LogSource, chunk []byte) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO task_logs (task_name, source, chunk, created_at) VALUES (?, ?, ?, ?);`,
		taskName, source.String(), chunk, time.Now().Unix(),
	)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *TaskLogsDB) List(ctx context.Context, taskName string, source *dao.LogSource, limit, offset int) ([]dao.TaskLog, error) {
	limit, offset = normalizePage(limit, offset)

	query := `SELECT id, task_name, source, chunk, created_at FROM task_logs WHERE task_name = ?`
	args := []any{taskName}
	if source != nil {
		query += " AND source = ?"
		args = append(args, source.String())
	}
	query += " ORDER BY id ASC LIMIT ? OFFSET ?;"
	args = append(args, limit, offset)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.TaskLog
	for rows.Next() {
		var id int64
		var name, src string
		var chunk []byte
		var createdAt int64
		if err := rows.Scan(&id, &name, &src, &chunk, &createdAt); err != nil {
			return nil, wrapDBError(err)
		}
		s, err := dao.ParseLogSource(src)
		if err != nil {
			return all, wrapDBError(err)
		}
		all = append(all, dao.TaskLog{
			ID:        id,
			TaskName:  name,
			Source:    s,
			Chunk:     chunk,
			CreatedAt: time.Unix(createdAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *TaskLogsDB) Count(ctx context.Context, taskName string, source *dao.LogSource) (int64, error) {
	query := `SELECT COUNT(*) FROM task_logs WHERE task_name = ?`
	args := []any{taskName}
	if source != nil {
		query += " AND source = ?"
		args = append(args, source.String())
	}
	row := repo.db.QueryRowContext(ctx, query+";", args...)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, wrapDBError(err)
	}
	return n, nil
}
