// Package sqlite is a modernc.org/sqlite-backed implementation of
// server/dao.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/wdlcore/internal/version"
	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/dekarrin/wdlcore/server/serr"
	"modernc.org/sqlite"
)

// schemaVersion is the value stored under the metadata "version" key by
// init.
const schemaVersion = version.SchemaVersion

const versionKey = "version"

type store struct {
	dbFilename string
	db         *sql.DB

	sessions *SessionsDB
	runs     *RunsDB
	tasks    *TasksDB
	taskLogs *TaskLogsDB
	index    *IndexLogDB
}

// NewDatastore opens (creating if necessary) the sqlite file wdl.db inside
// storageDir, verifies its schema version, and wires up every repository.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{dbFilename: "wdl.db"}

	fileName := filepath.Join(storageDir, st.dbFilename)
	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	if err := initMetadata(st.db); err != nil {
		st.db.Close()
		return nil, err
	}
	if err := checkSchemaVersion(st.db); err != nil {
		st.db.Close()
		return nil, err
	}

	st.sessions = &SessionsDB{db: st.db}
	if err := st.sessions.init(); err != nil {
		st.db.Close()
		return nil, err
	}
	st.runs = &RunsDB{db: st.db}
	if err := st.runs.init(); err != nil {
		st.db.Close()
		return nil, err
	}
	st.tasks = &TasksDB{db: st.db}
	if err := st.tasks.init(); err != nil {
		st.db.Close()
		return nil, err
	}
	st.taskLogs = &TaskLogsDB{db: st.db}
	if err := st.taskLogs.init(); err != nil {
		st.db.Close()
		return nil, err
	}
	st.index = &IndexLogDB{db: st.db}
	if err := st.index.init(); err != nil {
		st.db.Close()
		return nil, err
	}

	return st, nil
}

func (s *store) Sessions() dao.SessionRepository { return s.sessions }
func (s *store) Runs() dao.RunRepository         { return s.runs }
func (s *store) Tasks() dao.TaskRepository       { return s.tasks }
func (s *store) TaskLogs() dao.TaskLogRepository { return s.taskLogs }
func (s *store) IndexLog() dao.IndexLogRepository { return s.index }

func (s *store) Close() error {
	return s.db.Close()
}

func initMetadata(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS metadata (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	row := db.QueryRow(`SELECT value FROM metadata WHERE key = ?;`, versionKey)
	var v string
	err = row.Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?);`, versionKey, schemaVersion)
		if err != nil {
			return wrapDBError(err)
		}
		return nil
	}
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func checkSchemaVersion(db *sql.DB) error {
	row := db.QueryRow(`SELECT value FROM metadata WHERE key = ?;`, versionKey)
	var found string
	if err := row.Scan(&found); err != nil {
		return wrapDBError(err)
	}
	if found != schemaVersion {
		return serr.New(fmt.Sprintf("store schema version mismatch: expected %q, found %q", schemaVersion, found), dao.ErrInvalidVersion)
	}
	return nil
}

// normalizePage applies the pagination defaults spec.md §4.7/§8 describe: a
// negative (unset) limit becomes dao.DefaultPageSize, a negative offset
// becomes dao.DefaultOffset. limit == 0 is left as-is -- it is a valid
// request for zero rows, not an unset value, per spec.md §8's pagination
// property.
func normalizePage(limit, offset int) (int, int) {
	if limit < 0 {
		limit = dao.DefaultPageSize
	}
	if offset < 0 {
		offset = dao.DefaultOffset
	}
	return limit, offset
}

// wrapDBError translates driver-level errors into dao sentinel errors: a
// UNIQUE/constraint violation (sqlite result code 19) becomes
// dao.ErrConstraintViolation, a missing row becomes dao.ErrNotFound, and
// anything else is surfaced with
// its sqlite error string.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	}
	if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
