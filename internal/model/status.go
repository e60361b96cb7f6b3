package model

// Status represents the lifecycle state of a download job
type Status string

const (
	// StatusQueued means the job is created but its worker has not started yet
	StatusQueued Status = "queued"

	// StatusRunning means the worker is transferring or converting media
	StatusRunning Status = "running"

	// StatusDone means every item finished and artifacts were reconciled
	StatusDone Status = "done"

	// StatusError means the job failed with an unrecovered error
	StatusError Status = "error"

	// StatusCanceled means cancellation was requested and honored
	StatusCanceled Status = "canceled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further status transitions are permitted
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError || s == StatusCanceled
}

// CanTransitionTo reports whether moving to next is a legal transition.
// The only legal paths are queued→running and {queued,running}→terminal;
// running→running is a permitted no-op.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StatusQueued:
		return next == StatusRunning || next.IsTerminal()
	case StatusRunning:
		return next == StatusRunning || next.IsTerminal()
	}
	return false
}
