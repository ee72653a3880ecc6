package runner_test

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/runner"
	"oss.nandlabs.io/regular/testing/assert"
)

func writeScript(t *testing.T, dir, body string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "script")
	assert.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
}

func newJob(t *testing.T, configRoot, name, body string) job.Job {
	t.Helper()
	dir := filepath.Join(configRoot, name)
	writeScript(t, dir, body)
	j, err := job.Load(configRoot, name, nil)
	assert.NoError(t, err)
	return j
}

func TestRunCompletesAndRecordsState(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	j := newJob(t, configRoot, "foo", "echo foo\n")
	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}

	res := runner.Run(cfg, j, true)
	assert.Equal(t, runner.Completed, res.Kind)
	assert.Equal(t, 0, res.ExitStatus)
	assert.Equal(t, "foo\n", res.Stdout)

	_, hasLastRun, err := job.LastRun(stateRoot, "foo")
	assert.NoError(t, err)
	assert.True(t, hasLastRun)

	exitStatus, ok, err := job.ExitStatus(stateRoot, "foo")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, exitStatus)
}

func TestRunSkipsWhenNotDue(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	dir := filepath.Join(configRoot, "bar")
	writeScript(t, dir, "echo bar\n")
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "schedule"), []byte("1d"), 0o644))
	j, err := job.Load(configRoot, "bar", nil)
	assert.NoError(t, err)
	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}

	first := runner.Run(cfg, j, false)
	assert.Equal(t, runner.Completed, first.Kind)

	second := runner.Run(cfg, j, false)
	assert.Equal(t, runner.Skipped, second.Kind)
}

func TestRunForceRunsRegardless(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	dir := filepath.Join(configRoot, "baz")
	writeScript(t, dir, "echo baz\n")
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "schedule"), []byte("1d"), 0o644))
	j, err := job.Load(configRoot, "baz", nil)
	assert.NoError(t, err)
	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}

	runner.Run(cfg, j, true)
	second := runner.Run(cfg, j, true)
	assert.Equal(t, runner.Completed, second.Kind)
}

func TestConcurrentRunsProduceExactlyOneNonLocked(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sleep script needs a posix shell")
	}
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	j := newJob(t, configRoot, "wait", "sleep 1\n")
	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}

	results := make([]runner.Result, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = runner.Run(cfg, j, true)
		}(i)
	}
	wg.Wait()

	nonLocked := 0
	locked := 0
	for _, r := range results {
		switch r.Kind {
		case runner.Locked:
			locked++
		default:
			nonLocked++
		}
	}
	assert.Equal(t, 1, nonLocked)
	assert.Equal(t, 1, locked)
}

func TestMissingJobDirIsError(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	j := job.Job{Dir: filepath.Join(configRoot, "ghost"), Name: "ghost", Filename: "script", Queue: "ghost"}
	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}

	res := runner.Run(cfg, j, true)
	assert.Equal(t, runner.Error, res.Kind)
}
