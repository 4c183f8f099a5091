package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dekarrin/wdlcore/server/dao"
	"github.com/dekarrin/wdlcore/server/dao/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) dao.Store {
	t.Helper()
	st, err := sqlite.NewDatastore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestNewDatastore_OpensCleanly(t *testing.T) {
	openStore(t)
}

func TestNewDatastore_ReopenSameDirSucceeds(t *testing.T) {
	dir := t.TempDir()
	st1, err := sqlite.NewDatastore(dir)
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	st2, err := sqlite.NewDatastore(dir)
	require.NoError(t, err)
	require.NoError(t, st2.Close())
}

func TestNewDatastore_RejectsMismatchedSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	raw, err := sql.Open("sqlite", filepath.Join(dir, "wdl.db"))
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE metadata (key TEXT NOT NULL PRIMARY KEY, value TEXT NOT NULL);`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO metadata (key, value) VALUES ('version', '999');`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = sqlite.NewDatastore(dir)
	assert.ErrorIs(t, err, dao.ErrInvalidVersion)
}

func TestSessions_CreateAndGetByID(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	id, err := uuid.NewRandom()
	require.NoError(t, err)

	created, err := st.Sessions().Create(ctx, id, dao.SubcommandRun, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, created.UUID)
	assert.Equal(t, dao.SubcommandRun, created.Subcommand)
	assert.Equal(t, "alice", created.CreatedBy)

	fetched, err := st.Sessions().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created.UUID, fetched.UUID)
	assert.Equal(t, created.Subcommand, fetched.Subcommand)
}

func TestSessions_GetByID_NotFound(t *testing.T) {
	st := openStore(t)
	id, _ := uuid.NewRandom()
	_, err := st.Sessions().GetByID(context.Background(), id)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestSessions_List(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, _ := uuid.NewRandom()
		_, err := st.Sessions().Create(ctx, id, dao.SubcommandServer, "bob")
		require.NoError(t, err)
	}

	sessions, err := st.Sessions().List(ctx, -1, -1)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func createSession(t *testing.T, st dao.Store) dao.Session {
	t.Helper()
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	s, err := st.Sessions().Create(context.Background(), id, dao.SubcommandRun, "carol")
	require.NoError(t, err)
	return s
}

func TestRuns_CreateAndTransitions(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	session := createSession(t, st)

	runID, err := uuid.NewRandom()
	require.NoError(t, err)

	run, err := st.Runs().Create(ctx, runID, session.UUID, "greet-run", "greet.wdl", "greet", `{"name":"world"}`, "/tmp/greet-run")
	require.NoError(t, err)
	assert.Equal(t, dao.RunQueued, run.Status)
	assert.Nil(t, run.StartedAt)

	require.NoError(t, st.Runs().Start(ctx, runID, time.Now()))
	after, err := st.Runs().GetByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, dao.RunRunning, after.Status)
	require.NotNil(t, after.StartedAt)

	require.NoError(t, st.Runs().Complete(ctx, runID, `{"greeting":"hi world"}`, time.Now()))
	done, err := st.Runs().GetByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, dao.RunCompleted, done.Status)
	assert.Equal(t, `{"greeting":"hi world"}`, done.OutputsJSON)
	require.NotNil(t, done.CompletedAt)
}

func TestRuns_FailSetsError(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	session := createSession(t, st)
	runID, _ := uuid.NewRandom()

	_, err := st.Runs().Create(ctx, runID, session.UUID, "bad-run", "bad.wdl", "bad", "{}", "/tmp/bad-run")
	require.NoError(t, err)

	require.NoError(t, st.Runs().Fail(ctx, runID, "boom", time.Now()))
	run, err := st.Runs().GetByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, dao.RunFailed, run.Status)
	assert.Equal(t, "boom", run.Error)
}

func TestRuns_ListFiltersByStatus(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	session := createSession(t, st)

	id1, _ := uuid.NewRandom()
	_, err := st.Runs().Create(ctx, id1, session.UUID, "r1", "s1", "t1", "{}", "/tmp/r1")
	require.NoError(t, err)
	id2, _ := uuid.NewRandom()
	_, err = st.Runs().Create(ctx, id2, session.UUID, "r2", "s2", "t2", "{}", "/tmp/r2")
	require.NoError(t, err)
	require.NoError(t, st.Runs().Start(ctx, id2, time.Now()))

	queued := dao.RunQueued
	queuedRuns, err := st.Runs().List(ctx, &queued, -1, -1)
	require.NoError(t, err)
	assert.Len(t, queuedRuns, 1)
	assert.Equal(t, id1, queuedRuns[0].UUID)

	count, err := st.Runs().Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestRuns_SetIndexDirectory_FalseWhenMissing(t *testing.T) {
	st := openStore(t)
	missing, _ := uuid.NewRandom()
	ok, err := st.Runs().SetIndexDirectory(context.Background(), missing, "/tmp/nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func createRun(t *testing.T, st dao.Store) dao.Run {
	t.Helper()
	session := createSession(t, st)
	runID, _ := uuid.NewRandom()
	run, err := st.Runs().Create(context.Background(), runID, session.UUID, "run", "s.wdl", "t", "{}", "/tmp/run")
	require.NoError(t, err)
	return run
}

func TestTasks_CreateAndTransitions(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	run := createRun(t, st)

	task, err := st.Tasks().Create(ctx, "greet.say_hello", run.UUID)
	require.NoError(t, err)
	assert.Equal(t, dao.TaskPending, task.Status)

	ok, err := st.Tasks().Start(ctx, task.Name, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	exit := 0
	ok, err = st.Tasks().Complete(ctx, task.Name, &exit, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	completed, err := st.Tasks().GetByName(ctx, task.Name)
	require.NoError(t, err)
	assert.Equal(t, dao.TaskCompleted, completed.Status)
	require.NotNil(t, completed.ExitStatus)
	assert.Equal(t, 0, *completed.ExitStatus)
}

func TestTasks_TransitionOnMissingTaskReturnsFalse(t *testing.T) {
	st := openStore(t)
	ok, err := st.Tasks().Start(context.Background(), "does.not_exist", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTasks_ListByRunAndStatus(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	run := createRun(t, st)

	_, err := st.Tasks().Create(ctx, "run.a", run.UUID)
	require.NoError(t, err)
	_, err = st.Tasks().Create(ctx, "run.b", run.UUID)
	require.NoError(t, err)
	ok, err := st.Tasks().Start(ctx, "run.b", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	pending := dao.TaskPending
	tasks, err := st.Tasks().List(ctx, &run.UUID, &pending, -1, -1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "run.a", tasks[0].Name)
}

func TestTaskLogs_InsertAndList(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	run := createRun(t, st)
	task, err := st.Tasks().Create(ctx, "log.task", run.UUID)
	require.NoError(t, err)

	require.NoError(t, st.TaskLogs().Insert(ctx, task.Name, dao.LogStdout, []byte("hello\n")))
	require.NoError(t, st.TaskLogs().Insert(ctx, task.Name, dao.LogStderr, []byte("warn\n")))

	all, err := st.TaskLogs().List(ctx, task.Name, nil, -1, -1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []byte("hello\n"), all[0].Chunk)

	stderr := dao.LogStderr
	errLogs, err := st.TaskLogs().List(ctx, task.Name, &stderr, -1, -1)
	require.NoError(t, err)
	require.Len(t, errLogs, 1)
	assert.Equal(t, dao.LogStderr, errLogs[0].Source)
}

func TestIndexLog_ListLatestPicksNewestPerLinkPath(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	run1 := createRun(t, st)
	run2 := createRun(t, st)

	_, err := st.IndexLog().Create(ctx, run1.UUID, "out/result.txt", "/runs/1/result.txt")
	require.NoError(t, err)
	_, err = st.IndexLog().Create(ctx, run2.UUID, "out/result.txt", "/runs/2/result.txt")
	require.NoError(t, err)
	_, err = st.IndexLog().Create(ctx, run1.UUID, "out/other.txt", "/runs/1/other.txt")
	require.NoError(t, err)

	latest, err := st.IndexLog().ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	byPath := map[string]dao.IndexLogEntry{}
	for _, e := range latest {
		byPath[e.LinkPath] = e
	}
	assert.Equal(t, "/runs/2/result.txt", byPath["out/result.txt"].TargetPath)
	assert.Equal(t, "/runs/1/other.txt", byPath["out/other.txt"].TargetPath)
}

func TestSessions_List_PaginationBoundaries(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, _ := uuid.NewRandom()
		_, err := st.Sessions().Create(ctx, id, dao.SubcommandRun, "dana")
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLength int
	}{
		{name: "unset limit and offset returns everything", limit: -1, offset: -1, wantLength: 3},
		{name: "zero limit yields an empty result, not the default page", limit: 0, offset: 0, wantLength: 0},
		{name: "offset past the end yields an empty result", limit: -1, offset: 100, wantLength: 0},
		{name: "positive limit below the default is honored as-is", limit: 2, offset: 0, wantLength: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, err := st.Sessions().List(ctx, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Len(t, sessions, tt.wantLength)
		})
	}
}

func TestIndexLog_ListByRun(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	run := createRun(t, st)

	_, err := st.IndexLog().Create(ctx, run.UUID, "a", "/a")
	require.NoError(t, err)
	_, err = st.IndexLog().Create(ctx, run.UUID, "b", "/b")
	require.NoError(t, err)

	entries, err := st.IndexLog().ListByRun(ctx, run.UUID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
