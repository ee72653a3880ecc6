package job

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"oss.nandlabs.io/regular/duration"
	"oss.nandlabs.io/regular/envfile"
	"oss.nandlabs.io/regular/fsutils"
)

// Job is an immutable value describing one job loaded from its
// configuration directory. It is constructed once per session and
// never mutated afterward.
type Job struct {
	Dir      string
	Name     string
	Filename string
	Schedule time.Duration
	Jitter   time.Duration
	Queue    string
	Notify   Notify
	Env      map[string]string
	Enabled  bool
}

// ScriptPath returns the absolute path of the job's executable.
func (j Job) ScriptPath() string {
	return filepath.Join(j.Dir, j.Filename)
}

// Load reads one job's directory into a Job value. outerEnv is the
// process environment consulted for "${VAR}" substitution in the job's
// own env file (its own earlier keys take precedence per envfile's
// lookup order).
func Load(configRoot, name string, outerEnv map[string]string) (Job, error) {
	dir := filepath.Join(configRoot, name)

	j := Job{
		Dir:      dir,
		Name:     name,
		Filename: DefaultFilename,
		Queue:    name,
		Notify:   NotifyOnError,
		Env:      map[string]string{},
		Enabled:  true,
	}

	if v, ok, err := readTrimmed(filepath.Join(dir, fileFilename)); err != nil {
		return Job{}, err
	} else if ok {
		j.Filename = v
	}

	sched := DefaultSchedule
	if v, ok, err := readTrimmed(filepath.Join(dir, fileSchedule)); err != nil {
		return Job{}, err
	} else if ok {
		sched = v
	}
	d, err := duration.Parse(sched)
	if err != nil {
		return Job{}, err
	}
	j.Schedule = d

	jitter := DefaultJitter
	if v, ok, err := readTrimmed(filepath.Join(dir, fileJitter)); err != nil {
		return Job{}, err
	} else if ok && v != "" {
		jitter = v
	}
	if jitter == "" {
		j.Jitter = 0
	} else {
		jd, err := duration.Parse(jitter)
		if err != nil {
			return Job{}, err
		}
		j.Jitter = jd
	}

	if v, ok, err := readTrimmed(filepath.Join(dir, fileQueue)); err != nil {
		return Job{}, err
	} else if ok && v != "" {
		j.Queue = v
	}

	if v, ok, err := readTrimmed(filepath.Join(dir, fileNotify)); err != nil {
		return Job{}, err
	} else if ok {
		j.Notify = ParseNotify(v)
	}

	envPath := filepath.Join(dir, fileEnv)
	if fsutils.FileExists(envPath) {
		f, err := os.Open(envPath)
		if err != nil {
			return Job{}, err
		}
		defer f.Close()
		m, err := envfile.Parse(f, outerEnv)
		if err != nil {
			return Job{}, err
		}
		j.Env = m.ToMap()
	}

	return j, nil
}

// readTrimmed reads a single-value config file, stripping surrounding
// whitespace. It returns ok=false without error when the file does not
// exist.
func readTrimmed(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(data)), true, nil
}

// AvailableJobs returns the sorted subdirectories of configRoot whose
// basename is not in the reserved set.
func AvailableJobs(configRoot string) ([]string, error) {
	entries, err := os.ReadDir(configRoot)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if e.Name() == ReservedDefaults {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// StateDir returns the per-job state directory under stateRoot.
func StateDir(stateRoot, name string) string {
	return filepath.Join(stateRoot, name)
}

// LockPath returns the per-job exclusion lock path.
func LockPath(stateRoot, name string) string {
	return filepath.Join(StateDir(stateRoot, name), fileRunningLock)
}

// LastRunPath returns the per-job last-start marker path.
func LastRunPath(stateRoot, name string) string {
	return filepath.Join(StateDir(stateRoot, name), fileLastRun)
}

// ExitStatusPath returns the per-job exit-status path.
func ExitStatusPath(stateRoot, name string) string {
	return filepath.Join(StateDir(stateRoot, name), fileExitStatus)
}

// StdoutLogPath returns the per-job captured-stdout path.
func StdoutLogPath(stateRoot, name string) string {
	return filepath.Join(StateDir(stateRoot, name), fileStdoutLog)
}

// StderrLogPath returns the per-job captured-stderr path.
func StderrLogPath(stateRoot, name string) string {
	return filepath.Join(StateDir(stateRoot, name), fileStderrLog)
}

// QueueDir returns the queue ticket directory for a given queue name
// under stateRoot.
func QueueDir(stateRoot, queueName string) string {
	return filepath.Join(stateRoot, queueName, dirQueue)
}

// LastRun returns the modification time of a job's "last" file, which is
// the job's last start time, if the file exists.
func LastRun(stateRoot, name string) (time.Time, bool, error) {
	path := LastRunPath(stateRoot, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

// ExitStatus reads the exit code recorded in a job's "exit-status"
// file, if any.
func ExitStatus(stateRoot, name string) (int, bool, error) {
	v, ok, err := readTrimmed(ExitStatusPath(stateRoot, name))
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Tolerance returns the due-check slack term for a given schedule,
// matching the source's tolerance table: schedule ≥ 300s → 60s slack;
// ≥ 60s → 12s; ≥ 10s → 2s; otherwise none. This absorbs external
// scheduler jitter so a nominally "every 1m" job isn't pushed to run
// every 2m.
func Tolerance(schedule time.Duration) time.Duration {
	switch {
	case schedule >= 300*time.Second:
		return 60 * time.Second
	case schedule >= 60*time.Second:
		return 12 * time.Second
	case schedule >= 10*time.Second:
		return 2 * time.Second
	default:
		return 0
	}
}

// Due reports whether a job with the given schedule is due to run,
// given its last start time (if any).
func Due(schedule time.Duration, lastRun time.Time, hasLastRun bool, now time.Time) bool {
	if !hasLastRun {
		return true
	}
	threshold := schedule - Tolerance(schedule)
	if threshold < 0 {
		threshold = 0
	}
	return now.Sub(lastRun) >= threshold
}
