package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/google/uuid"
)

// IndexLogDB is the sqlite-backed dao.IndexLogRepository.
type IndexLogDB struct {
	db *sql.DB
}

func (repo *IndexLogDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS index_log (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE ON UPDATE CASCADE,
		link_path TEXT NOT NULL,
		target_path TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *IndexLogDB) Create(ctx context.Context, runID uuid.UUID, linkPath, targetPath string) (dao.IndexLogEntry, error) {
	now := time.Now()
	res, err := repo.db.ExecContext(ctx,
		`INSERT INTO index_log (run_id, link_path, target_path, created_at) VALUES (?, ?, ?, ?);`,
		runID.String(), linkPath, targetPath, now.Unix(),
	)
	if err != nil {
		return dao.IndexLogEntry{}, wrapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dao.IndexLogEntry{}, wrapDBError(err)
	}
	return dao.IndexLogEntry{
		ID:         id,
		RunUUID:    runID,
		LinkPath:   linkPath,
		TargetPath: targetPath,
		CreatedAt:  now,
	}, nil
}

func (repo *IndexLogDB) ListByRun(ctx context.Context, runID uuid.UUID) ([]dao.IndexLogEntry, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, link_path, target_path, created_at FROM index_log WHERE run_id = ? ORDER BY id ASC;`,
		runID.String(),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.IndexLogEntry
	for rows.Next() {
		var id, createdAt int64
		var linkPath, targetPath string
		if err := rows.Scan(&id, &linkPath, &targetPath, &createdAt); err != nil {
			return nil, wrapDBError(err)
		}
		all = append(all, dao.IndexLogEntry{
			ID:         id,
			RunUUID:    runID,
			LinkPath:   linkPath,
			TargetPath: targetPath,
			CreatedAt:  time.Unix(createdAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

// ListLatest implements the "latest entry per link_path" derived view:
// for every distinct link_path across all runs, the row with the greatest
// id (and therefore the greatest created_at, since id is
// autoincrementing and entries are append-only).
func (repo *IndexLogDB) ListLatest(ctx context.Context) ([]dao.IndexLogEntry, error) {
	rows, err := repo.db.QueryContext(ctx, `
		SELECT i.id, i.run_id, i.link_path, i.target_path, i.created_at
		FROM index_log i
		INNER JOIN (
			SELECT link_path, MAX(id) AS max_id
			FROM index_log
			GROUP BY link_path
		) latest ON i.link_path = latest.link_path AND i.id = latest.max_id
		ORDER BY i.link_path ASC;
	`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.IndexLogEntry
	for rows.Next() {
		var id, createdAt int64
		var runIDStr, linkPath, targetPath string
		if err := rows.Scan(&id, &runIDStr, &linkPath, &targetPath, &createdAt); err != nil {
			return nil, wrapDBError(err)
		}
		runID, err := uuid.Parse(runIDStr)
		if err != nil {
			return all, fmt.Errorf("stored run ID %q is invalid: %w", runIDStr, err)
		}
		all = append(all, dao.IndexLogEntry{
			ID:         id,
			RunUUID:    runID,
			LinkPath:   linkPath,
			TargetPath: targetPath,
			CreatedAt:  time.Unix(createdAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}
