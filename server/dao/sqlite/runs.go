package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/dekarrin/wdlcore/server/serr"
	"github.com/google/uuid"
)

// RunsDB is the sqlite-backed dao.RunRepository.
type RunsDB struct {
	db *sql.DB
}

func (repo *RunsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE ON UPDATE CASCADE,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		status TEXT NOT NULL,
		inputs_json TEXT NOT NULL,
		outputs_json TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		directory TEXT NOT NULL,
		index_directory TEXT NOT NULL DEFAULT '',
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

func (repo *RunsDB) Create(ctx context.Context, id, sessionID uuid.UUID, name, source, target, inputsJSON, directory string) (dao.Run, error) {
	var sessions int64
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?;`, sessionID.String()).Scan(&sessions); err != nil {
		return dao.Run{}, wrapDBError(err)
	}
	if sessions == 0 {
		return dao.Run{}, serr.New(fmt.Sprintf("session %s does not exist", sessionID), serr.ErrNotFound, dao.ErrNotFound)
	}

	now := time.Now()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO runs (id, session_id, name, source, target, status, inputs_json, directory, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		id.String(), sessionID.String(), name, source, target, dao.RunQueued.String(), inputsJSON, directory, now.Unix(),
	)
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}
	return repo.GetByID(ctx, id)
}

func (repo *RunsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT session_id, name, source, target, status, inputs_json, outputs_json, error, directory,
		        index_directory, created_at, started_at, completed_at
		 FROM runs WHERE id = ?;`,
		id.String(),
	)
	return scanRun(row, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, id uuid.UUID) (dao.Run, error) {
	var sessionID, name, source, target, status, inputsJSON, outputsJSON, errMsg, directory, indexDirectory string
	var createdAt int64
	var startedAt, completedAt sql.NullInt64

	err := row.Scan(&sessionID, &name, &source, &target, &status, &inputsJSON, &outputsJSON, &errMsg,
		&directory, &indexDirectory, &createdAt, &startedAt, &completedAt)
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return dao.Run{}, fmt.Errorf("stored session ID %q is invalid: %w", sessionID, err)
	}
	st, err := dao.ParseRunStatus(status)
	if err != nil {
		return dao.Run{}, fmt.Errorf("stored run status %q is invalid: %w", status, err)
	}

	run := dao.Run{
		UUID:           id,
		SessionUUID:    sid,
		Name:           name,
		Source:         source,
		Target:         target,
		Status:         st,
		InputsJSON:     inputsJSON,
		OutputsJSON:    outputsJSON,
		Error:          errMsg,
		Directory:      directory,
		IndexDirectory: indexDirectory,
		CreatedAt:      time.Unix(createdAt, 0),
	}
	if startedAt.Valid {
		t := time.Unix(startedAt.Int64, 0)
		run.StartedAt = &t
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		run.CompletedAt = &t
	}
	return run, nil
}

func (repo *RunsDB) List(ctx context.Context, status *dao.RunStatus, limit, offset int) ([]dao.Run, error) {
	limit, offset = normalizePage(limit, offset)

	var rows *sql.Rows
	var err error
	if status != nil {
		rows, err = repo.db.QueryContext(ctx,
			`SELECT id, session_id, name, source, target, status, inputs_json, outputs_json, error, directory,
			        index_directory, created_at, started_at, completed_at
			 FROM runs WHERE status = ? ORDER BY created_at ASC LIMIT ? OFFSET ?;`,
			status.String(), limit, offset,
		)
	} else {
		rows, err = repo.db.QueryContext(ctx,
			`SELECT id, session_id, name, source, target, status, inputs_json, outputs_json, error, directory,
			        index_directory, created_at, started_at, completed_at
			 FROM runs ORDER BY created_at ASC LIMIT ? OFFSET ?;`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanRunRows(rows)
}

func (repo *RunsDB) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]dao.Run, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, session_id, name, source, target, status, inputs_json, outputs_json, error, directory,
		        index_directory, created_at, started_at, completed_at
		 FROM runs WHERE session_id = ? ORDER BY created_at ASC;`,
		sessionID.String(),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanRunRows(rows)
}

func scanRunRows(rows *sql.Rows) ([]dao.Run, error) {
	var all []dao.Run
	for rows.Next() {
		var idStr string
		var sessionID, name, source, target, status, inputsJSON, outputsJSON, errMsg, directory, indexDirectory string
		var createdAt int64
		var startedAt, completedAt sql.NullInt64

		err := rows.Scan(&idStr, &sessionID, &name, &source, &target, &status, &inputsJSON, &outputsJSON, &errMsg,
			&directory, &indexDirectory, &createdAt, &startedAt, &completedAt)
		if err != nil {
			return nil, wrapDBError(err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return all, fmt.Errorf("stored run ID %q is invalid: %w", idStr, err)
		}
		sid, err := uuid.Parse(sessionID)
		if err != nil {
			return all, fmt.Errorf("stored session ID %q is invalid: %w", sessionID, err)
		}
		st, err := dao.ParseRunStatus(status)
		if err != nil {
			return all, fmt.Errorf("stored run status %q is invalid: %w", status, err)
		}

		run := dao.Run{
			UUID:           id,
			SessionUUID:    sid,
			Name:           name,
			Source:         source,
			Target:         target,
			Status:         st,
			InputsJSON:     inputsJSON,
			OutputsJSON:    outputsJSON,
			Error:          errMsg,
			Directory:      directory,
			IndexDirectory: indexDirectory,
			CreatedAt:      time.Unix(createdAt, 0),
		}
		if startedAt.Valid {
			t := time.Unix(startedAt.Int64, 0)
			run.StartedAt = &t
		}
		if completedAt.Valid {
			t := time.Unix(completedAt.Int64, 0)
			run.CompletedAt = &t
		}
		all = append(all, run)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *RunsDB) Count(ctx context.Context, status *dao.RunStatus) (int64, error) {
	var row *sql.Row
	if status != nil {
		row = repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE status = ?;`, status.String())
	} else {
		row = repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs;`)
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, wrapDBError(err)
	}
	return n, nil
}

func (repo *RunsDB) Start(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, started_at = ? WHERE id = ?;`,
		dao.RunRunning.String(), startedAt.Unix(), id.String(),
	)
	return requireOneRowAffected(res, err)
}

func (repo *RunsDB) Complete(ctx context.Context, id uuid.UUID, outputsJSON string, completedAt time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, outputs_json = ?, completed_at = ? WHERE id = ?;`,
		dao.RunCompleted.String(), outputsJSON, completedAt.Unix(), id.String(),
	)
	return requireOneRowAffected(res, err)
}

func (repo *RunsDB) Fail(ctx context.Context, id uuid.UUID, errMsg string, completedAt time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?;`,
		dao.RunFailed.String(), errMsg, completedAt.Unix(), id.String(),
	)
	return requireOneRowAffected(res, err)
}

func (repo *RunsDB) Cancel(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ? WHERE id = ?;`,
		dao.RunCanceled.String(), completedAt.Unix(), id.String(),
	)
	return requireOneRowAffected(res, err)
}

func (repo *RunsDB) SetIndexDirectory(ctx context.Context, id uuid.UUID, dir string) (bool, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE runs SET index_directory = ? WHERE id = ?;`, dir, id.String())
	if err != nil {
		return false, wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError(err)
	}
	return n > 0, nil
}

// requireOneRowAffected translates a zero-rows-affected UPDATE into
// dao.ErrNotFound.
func requireOneRowAffected(res sql.Result, err error) error {
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n < 1 {
		return dao.ErrNotFound
	}
	return nil
}
