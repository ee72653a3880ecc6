package runner

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"oss.nandlabs.io/regular/filelock"
	"oss.nandlabs.io/regular/fnutils"
	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/l3"
	"oss.nandlabs.io/regular/queue"
)

var logger = l3.Get()

// Run executes run_job for j against cfg: it acquires the per-job
// exclusion lock, enters the named queue, evaluates whether the job is
// due (unless force is set), sleeps a random jitter delay, then runs
// the script with the composed environment, recording state and
// captured output.
func Run(cfg job.Config, j job.Job, force bool) Result {
	stateDir := job.StateDir(cfg.StateRoot, j.Name)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return errorResult(j.Name, fmt.Sprintf("create state dir: %v", err), "")
	}

	lock := filelock.New(job.LockPath(cfg.StateRoot, j.Name))
	ok, err := lock.TryLock()
	if err != nil {
		return errorResult(j.Name, fmt.Sprintf("acquire lock: %v", err), "")
	}
	if !ok {
		return lockedResult(j.Name)
	}
	defer lock.Unlock()

	queueDir := job.QueueDir(cfg.StateRoot, j.Queue)
	var result Result
	err = queue.Run(queueDir, j.Name, func() error {
		result = runBody(cfg, j, force)
		return nil
	})
	if err != nil {
		return errorResult(j.Name, fmt.Sprintf("queue: %v", err), "")
	}
	return result
}

func runBody(cfg job.Config, j job.Job, force bool) Result {
	if !dirExists(j.Dir) {
		return errorResult(j.Name, fmt.Sprintf("job directory does not exist: %s", j.Dir), "")
	}

	lastRun, hasLastRun, err := job.LastRun(cfg.StateRoot, j.Name)
	if err != nil {
		return errorResult(j.Name, fmt.Sprintf("read last run: %v", err), "")
	}
	if !force && !job.Due(j.Schedule, lastRun, hasLastRun, time.Now()) {
		return skippedResult(j.Name)
	}

	if j.Jitter > 0 {
		delay := time.Duration(rand.Int63n(int64(j.Jitter)))
		if err := fnutils.ExecuteAfterMs(func() {}, delay.Milliseconds()); err != nil {
			logger.ErrorF("jitter wait for %s: %v", j.Name, err)
		}
	}

	exitStatusPath := job.ExitStatusPath(cfg.StateRoot, j.Name)
	os.Remove(exitStatusPath)

	lastRunPath := job.LastRunPath(cfg.StateRoot, j.Name)
	if err := os.WriteFile(lastRunPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return errorResult(j.Name, fmt.Sprintf("write last: %v", err), "")
	}

	stdoutPath := job.StdoutLogPath(cfg.StateRoot, j.Name)
	stderrPath := job.StderrLogPath(cfg.StateRoot, j.Name)
	stdoutFile, err := os.Create(stdoutPath)
	if err != nil {
		return errorResult(j.Name, fmt.Sprintf("create stdout log: %v", err), "")
	}
	defer stdoutFile.Close()
	stderrFile, err := os.Create(stderrPath)
	if err != nil {
		return errorResult(j.Name, fmt.Sprintf("create stderr log: %v", err), "")
	}
	defer stderrFile.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.Command(j.ScriptPath())
	cmd.Dir = j.Dir
	cmd.Env = composeEnv(cfg.DefaultsEnv, j.Env)
	cmd.Stdout = &multiWriter{stdoutFile, &stdoutBuf}
	cmd.Stderr = &multiWriter{stderrFile, &stderrBuf}

	exitStatus := 0
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitStatus = exitErr.ExitCode()
		} else {
			return errorResult(j.Name, fmt.Sprintf("run script: %v", err), composeLog(stdoutBuf.String(), stderrBuf.String()))
		}
	}

	if err := os.WriteFile(exitStatusPath, []byte(strconv.Itoa(exitStatus)), 0o644); err != nil {
		return errorResult(j.Name, fmt.Sprintf("write exit-status: %v", err), "")
	}

	return completedResult(j.Name, exitStatus, stdoutBuf.String(), stderrBuf.String())
}

// composeEnv merges the outer process environment, defaults env, and
// job env, in that precedence order (later entries override earlier).
func composeEnv(defaultsEnv, jobEnv map[string]string) []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range defaultsEnv {
		merged[k] = v
	}
	for k, v := range jobEnv {
		merged[k] = v
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// composeLog renders whatever stdout/stderr was captured before a
// runtime fault into the Error variant's log field, matching the
// Error{name, message, log} entity shape.
func composeLog(stdout, stderr string) string {
	if stdout == "" && stderr == "" {
		return ""
	}
	log := "stdout:\n" + stdout
	if stderr != "" {
		log += "\nstderr:\n" + stderr
	}
	return log
}

// multiWriter writes to both the persisted log file and an in-memory
// buffer, so a completed run's notification/status output doesn't
// require a second read of the file just written.
type multiWriter struct {
	file *os.File
	buf  *bytes.Buffer
}

func (m *multiWriter) Write(p []byte) (int, error) {
	m.buf.Write(p)
	return m.file.Write(p)
}
