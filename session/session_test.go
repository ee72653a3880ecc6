package session_test

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/notify"
	"oss.nandlabs.io/regular/runner"
	"oss.nandlabs.io/regular/session"
	"oss.nandlabs.io/regular/testing/assert"
)

func writeScript(t *testing.T, configRoot, name, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell scripts only")
	}
	dir := filepath.Join(configRoot, name)
	assert.NoError(t, os.MkdirAll(dir, 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "script"), []byte("#!/bin/sh\n"+body), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "schedule"), []byte("0"), 0o644))
}

func TestRunResultOrderMatchesSelectionRegardlessOfCompletionOrder(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	writeScript(t, configRoot, "slow", "sleep 0.2\n")
	writeScript(t, configRoot, "fast", "true\n")

	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}
	outcomes, err := session.Run(cfg, true, []string{"slow", "fast"}, nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, 2, len(outcomes))
	assert.Equal(t, "slow", outcomes[0].Name)
	assert.Equal(t, "fast", outcomes[1].Name)
	assert.Equal(t, runner.Completed, outcomes[0].Result.Kind)
	assert.Equal(t, runner.Completed, outcomes[1].Result.Kind)
}

func TestRunAllAvailableJobsExcludesDefaults(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	writeScript(t, configRoot, "alpha", "true\n")
	writeScript(t, configRoot, "beta", "true\n")
	assert.NoError(t, os.MkdirAll(filepath.Join(configRoot, "defaults"), 0o755))

	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}
	outcomes, err := session.Run(cfg, true, nil, nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, 2, len(outcomes))
	assert.Equal(t, "alpha", outcomes[0].Name)
	assert.Equal(t, "beta", outcomes[1].Name)
}

func TestRunUnknownJobNameBecomesErrorOutcome(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}

	outcomes, err := session.Run(cfg, true, []string{"ghost"}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(outcomes))
	assert.Equal(t, runner.Error, outcomes[0].Result.Kind)
}

func TestRunHonorsMaxWorkersBound(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		writeScript(t, configRoot, name, "true\n")
	}

	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot, MaxWorkers: 1}
	outcomes, err := session.Run(cfg, true, nil, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(outcomes))
	for _, o := range outcomes {
		assert.Equal(t, runner.Completed, o.Result.Kind)
	}
}

func TestRunDispatchesThroughRegistryPerNotifyPolicy(t *testing.T) {
	configRoot := t.TempDir()
	stateRoot := t.TempDir()
	writeScript(t, configRoot, "noisy", "true\n")
	assert.NoError(t, os.WriteFile(filepath.Join(configRoot, "noisy", "notify"), []byte("always"), 0o644))
	writeScript(t, configRoot, "quiet", "true\n")
	assert.NoError(t, os.WriteFile(filepath.Join(configRoot, "quiet", "notify"), []byte("never"), 0o644))

	rec := &recordingNotifier{}
	reg := notify.NewRegistry()
	reg.Register("recorder", rec)

	cfg := job.Config{ConfigRoot: configRoot, StateRoot: stateRoot}
	_, err := session.Run(cfg, true, []string{"noisy", "quiet"}, reg, nil)
	assert.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, len(rec.titles))
	assert.Equal(t, `Job 'noisy' succeeded`, rec.titles[0])
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}
