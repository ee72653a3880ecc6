// Package runner implements run_job: per-job exclusion, named-queue
// serialization, due-time evaluation, jitter, and script execution with
// captured logs and persisted state.
package runner

// Result is the tagged outcome of one job run. Kind says which variant
// it is and so which field group below is set; callers should switch on
// Kind.
type Result struct {
	Kind Kind
	Name string

	// Completed fields.
	ExitStatus int
	Stdout     string
	Stderr     string

	// Error fields.
	Message string
	Log     string
}

// Kind discriminates the Result variants. Go has no sum types; this
// models the same four-variant shape as the source's JobResult/
// JobResultCompleted/JobResultError/JobResultLocked/JobResultSkipped
// without resorting to inheritance, per the "polymorphic JobResult"
// design note: consumers switch on Kind rather than type-asserting an
// interface hierarchy.
type Kind int

const (
	Completed Kind = iota
	Error
	Locked
	Skipped
)

func (k Kind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Error:
		return "error"
	case Locked:
		return "locked"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func completedResult(name string, exitStatus int, stdout, stderr string) Result {
	return Result{Kind: Completed, Name: name, ExitStatus: exitStatus, Stdout: stdout, Stderr: stderr}
}

func errorResult(name, message, log string) Result {
	return Result{Kind: Error, Name: name, Message: message, Log: log}
}

func lockedResult(name string) Result {
	return Result{Kind: Locked, Name: name}
}

func skippedResult(name string) Result {
	return Result{Kind: Skipped, Name: name}
}
