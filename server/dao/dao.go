// Package dao provides data access objects for the WDL execution
// persistence layer: sessions, runs, tasks, task logs, and the
// append-only output index. The sentinel errors below are declared
// locally rather than reused from server/serr. sqlite's wrapDBError
// returns them directly; the errors sqlite builds with serr.New carry
// one of them as a cause, so errors.Is against the dao sentinel holds
// either way.
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
	ErrInvalidVersion      = errors.New("schema version of the opened store does not match the expected version")
)

// Store holds every repository plus the connection lifecycle.
type Store interface {
	Sessions() SessionRepository
	Runs() RunRepository
	Tasks() TaskRepository
	TaskLogs() TaskLogRepository
	IndexLog() IndexLogRepository
	Close() error
}

// Subcommand is the CLI entry point that created a Session, per spec.md §3.
type Subcommand int

const (
	SubcommandRun Subcommand = iota
	SubcommandServer
)

func (s Subcommand) String() string {
	switch s {
	case SubcommandRun:
		return "run"
	case SubcommandServer:
		return "server"
	default:
		return fmt.Sprintf("Subcommand(%d)", s)
	}
}

// ParseSubcommand parses the DB-stored spelling of a Subcommand.
func ParseSubcommand(s string) (Subcommand, error) {
	switch s {
	case "run":
		return SubcommandRun, nil
	case "server":
		return SubcommandServer, nil
	default:
		return 0, fmt.Errorf("must be one of 'run' or 'server', got %q", s)
	}
}

// RunStatus is a Run's lifecycle state, per spec.md §3.
type RunStatus int

const (
	RunQueued RunStatus = iota
	RunRunning
	RunCompleted
	RunFailed
	RunCanceled
)

func (s RunStatus) String() string {
	switch s {
	case RunQueued:
		return "queued"
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunFailed:
		return "failed"
	case RunCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("RunStatus(%d)", s)
	}
}

// ParseRunStatus parses the DB-stored spelling of a RunStatus.
func ParseRunStatus(s string) (RunStatus, error) {
	switch s {
	case "queued":
		return RunQueued, nil
	case "running":
		return RunRunning, nil
	case "completed":
		return RunCompleted, nil
	case "failed":
		return RunFailed, nil
	case "canceled":
		return RunCanceled, nil
	default:
		return 0, fmt.Errorf("unrecognized run status %q", s)
	}
}

// TaskStatus is a Task's lifecycle state, per spec.md §3.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskCompleted
	TaskFailed
	TaskCanceled
	TaskPreempted
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskCanceled:
		return "canceled"
	case TaskPreempted:
		return "preempted"
	default:
		return fmt.Sprintf("TaskStatus(%d)", s)
	}
}

// ParseTaskStatus parses the DB-stored spelling of a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case "pending":
		return TaskPending, nil
	case "running":
		return TaskRunning, nil
	case "completed":
		return TaskCompleted, nil
	case "failed":
		return TaskFailed, nil
	case "canceled":
		return TaskCanceled, nil
	case "preempted":
		return TaskPreempted, nil
	default:
		return 0, fmt.Errorf("unrecognized task status %q", s)
	}
}

// LogSource distinguishes a TaskLog chunk's origin stream.
type LogSource int

const (
	LogStdout LogSource = iota
	LogStderr
)

func (s LogSource) String() string {
	if s == LogStderr {
		return "stderr"
	}
	return "stdout"
}

// ParseLogSource parses the DB-stored spelling of a LogSource.
func ParseLogSource(s string) (LogSource, error) {
	switch s {
	case "stdout":
		return LogStdout, nil
	case "stderr":
		return LogStderr, nil
	default:
		return 0, fmt.Errorf("unrecognized log source %q", s)
	}
}

// DefaultPageSize and DefaultOffset are the pagination defaults spec.md
// §4.7 and §8 specify: a negative (unset) limit or offset on any List
// method falls back to these. A limit of exactly 0 is not "unset" -- it
// is a valid request that must yield zero rows.
const (
	DefaultPageSize = 100
	DefaultOffset   = 0
)

// Session is one tool invocation, per spec.md §3.
type Session struct {
	UUID       uuid.UUID
	Subcommand Subcommand
	CreatedBy  string
	CreatedAt  time.Time
}

// SessionRepository persists Sessions.
type SessionRepository interface {
	Create(ctx context.Context, id uuid.UUID, subcommand Subcommand, createdBy string) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	List(ctx context.Context, limit, offset int) ([]Session, error)
}

// Run is one workflow execution within a Session, per spec.md §3.
type Run struct {
	UUID           uuid.UUID
	SessionUUID    uuid.UUID
	Name           string
	Source         string
	Target         string
	Status         RunStatus
	InputsJSON     string
	OutputsJSON    string
	Error          string
	Directory      string
	IndexDirectory string
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// RunRepository persists Runs and their status transitions.
type RunRepository interface {
	// Create inserts a new Run with status Queued. sessionID must reference
	// an existing Session; otherwise the insert fails and the error wraps
	// serr.ErrNotFound, per spec.md §4.7.
	Create(ctx context.Context, id, sessionID uuid.UUID, name, source, target, inputsJSON, directory string) (Run, error)
	GetByID(ctx context.Context, id uuid.UUID) (Run, error)
	List(ctx context.Context, status *RunStatus, limit, offset int) ([]Run, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Run, error)
	Count(ctx context.Context, status *RunStatus) (int64, error)

	Start(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	Complete(ctx context.Context, id uuid.UUID, outputsJSON string, completedAt time.Time) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string, completedAt time.Time) error
	Cancel(ctx context.Context, id uuid.UUID, completedAt time.Time) error

	// SetIndexDirectory never fails merely because the run does not exist;
	// it reports false in that case, per spec.md §9's open question on
	// update_run_index_directory.
	SetIndexDirectory(ctx context.Context, id uuid.UUID, dir string) (bool, error)
}

// Task is one task attempt within a Run, per spec.md §3. Name is globally
// unique.
type Task struct {
	Name        string
	RunUUID     uuid.UUID
	Status      TaskStatus
	ExitStatus  *int
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// TaskRepository persists Tasks and their status transitions.
type TaskRepository interface {
	Create(ctx context.Context, name string, runID uuid.UUID) (Task, error)
	GetByName(ctx context.Context, name string) (Task, error)
	List(ctx context.Context, runID *uuid.UUID, status *TaskStatus, limit, offset int) ([]Task, error)
	Count(ctx context.Context, runID *uuid.UUID, status *TaskStatus) (int64, error)

	Start(ctx context.Context, name string, startedAt time.Time) (bool, error)
	Complete(ctx context.Context, name string, exitStatus *int, completedAt time.Time) (bool, error)
	Fail(ctx context.Context, name, errMsg string, completedAt time.Time) (bool, error)
	Cancel(ctx context.Context, name string, completedAt time.Time) (bool, error)
	Preempt(ctx context.Context, name string, completedAt time.Time) (bool, error)
}

// TaskLog is one append-only chunk of a task's captured output.
type TaskLog struct {
	ID        int64
	TaskName  string
	Source    LogSource
	Chunk     []byte
	CreatedAt time.Time
}

// TaskLogRepository persists append-only TaskLog chunks.
type TaskLogRepository interface {
	Insert(ctx context.Context, taskName string, source LogSource, chunk []byte) error
	List(ctx context.Context, taskName string, source *LogSource, limit, offset int) ([]TaskLog, error)
	Count(ctx context.Context, taskName string, source *LogSource) (int64, error)
}

// IndexLogEntry is one append-only logical-to-physical output mapping, per
// spec.md §3.
type IndexLogEntry struct {
	ID         int64
	RunUUID    uuid.UUID
	LinkPath   string
	TargetPath string
	CreatedAt  time.Time
}

// IndexLogRepository persists IndexLogEntries and derives the "latest
// entry per link_path" view.
type IndexLogRepository interface {
	Create(ctx context.Context, runID uuid.UUID, linkPath, targetPath string) (IndexLogEntry, error)
	ListByRun(ctx context.Context, runID uuid.UUID) ([]IndexLogEntry, error)

	// ListLatest returns, for each distinct link_path across all runs, the
	// entry with the greatest created_at (ties broken by insertion id), per
	// spec.md §4.7 and §8's persistence-monotonicity property.
	ListLatest(ctx context.Context) ([]IndexLogEntry, error)
}
