package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/google/uuid"
)

// SessionsDB is the sqlite-backed dao.SessionRepository.
type SessionsDB struct {
	db *sql.DB
}

func (repo *SessionsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		subcommand TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *SessionsDB) Create(ctx context.Context, id uuid.UUID, subcommand dao.Subcommand, createdBy string) (dao.Session, error) {
	now := time.Now()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO sessions (id, subcommand, created_by, created_at) VALUES (?, ?, ?, ?);`,
		id.String(), subcommand.String(), createdBy, now.Unix(),
	)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	return repo.GetByID(ctx, id)
}

func (repo *SessionsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT subcommand, created_by, created_at FROM sessions WHERE id = ?;`,
		id.String(),
	)
	var subcommand, createdBy string
	var createdAt int64
	if err := row.Scan(&subcommand, &createdBy, &createdAt); err != nil {
		return dao.Session{}, wrapDBError(err)
	}

	sub, err := dao.ParseSubcommand(subcommand)
	if err != nil {
		return dao.Session{}, fmt.Errorf("stored subcommand %q is invalid: %w", subcommand, err)
	}

	return dao.Session{
		UUID:       id,
		Subcommand: sub,
		CreatedBy:  createdBy,
		CreatedAt:  time.Unix(createdAt, 0),
	}, nil
}

func (repo *SessionsDB) List(ctx context.Context, limit, offset int) ([]dao.Session, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, subcommand, created_by, created_at FROM sessions ORDER BY created_at ASC LIMIT ? OFFSET ?;`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Session
	for rows.Next() {
		var idStr, subcommand, createdBy string
		var createdAt int64
		if err := rows.Scan(&idStr, &subcommand, &createdBy, &createdAt); err != nil {
			return nil, wrapDBError(err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return all, fmt.Errorf("stored session ID %q is invalid: %w", idStr, err)
		}
		sub, err := dao.ParseSubcommand(subcommand)
		if err != nil {
			return all, fmt.Errorf("stored subcommand %q is invalid: %w", subcommand, err)
		}
		all = append(all, dao.Session{
			UUID:       id,
			Subcommand: sub,
			CreatedBy:  createdBy,
			CreatedAt:  time.Unix(createdAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}
