// Package queue implements the nq-algorithm FIFO serializer: entries
// sharing a queue directory run their critical section in strict
// publish-order, including across concurrent processes, using the
// filesystem and OS advisory locks as the only coordination mechanism.
package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"oss.nandlabs.io/regular/filelock"
	"oss.nandlabs.io/regular/l3"
)

var logger = l3.Get()

// postPublishWait is the fixed sleep after publishing a ticket, to
// absorb filesystem timestamp coarseness and races with other
// publishers. Matches the original implementation's QUEUE_LOCK_WAIT.
const postPublishWait = 10 * time.Millisecond

// Run serializes fn against every other Run call sharing queueDir: it
// publishes a FIFO ticket named "<ts>-<name>", waits for all
// lexicographically smaller tickets to release their exclusive lock,
// then runs fn, then removes its own ticket on every exit path.
func Run(queueDir, name string, fn func() error) error {
	if err := os.MkdirAll(queueDir, 0o755); err != nil {
		return fmt.Errorf("queue: create %s: %w", queueDir, err)
	}

	ticket := fmt.Sprintf("%013d-%s", time.Now().UnixMilli(), name)
	hiddenPath := filepath.Join(queueDir, "."+ticket)
	publishedPath := filepath.Join(queueDir, ticket)

	lock := filelock.New(hiddenPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("queue: lock ticket: %w", err)
	}
	if !ok {
		// Another process raced us for the exact same hidden name; this
		// is only possible for colliding ts+name, which nq treats as an
		// unspecified-order tie. Retry with a fresh timestamp.
		return Run(queueDir, name, fn)
	}
	if _, err := os.Stat(publishedPath); err == nil {
		// The same ticket is already published by another caller; the
		// hidden name was free only because that caller renamed it away.
		// Step aside and retry with a fresh timestamp.
		lock.Unlock()
		os.Remove(hiddenPath)
		time.Sleep(time.Millisecond)
		return Run(queueDir, name, fn)
	}

	defer func() {
		lock.Unlock()
		os.Remove(publishedPath)
		os.Remove(hiddenPath)
	}()

	if err := os.Rename(hiddenPath, publishedPath); err != nil {
		return fmt.Errorf("queue: publish ticket: %w", err)
	}

	time.Sleep(postPublishWait)

	if err := waitForPredecessors(queueDir, ticket); err != nil {
		return err
	}

	return fn()
}

func waitForPredecessors(queueDir, ticket string) error {
	seen := make(map[string]bool)
	for {
		entries, err := os.ReadDir(queueDir)
		if err != nil {
			return fmt.Errorf("queue: read dir: %w", err)
		}

		var predecessors []string
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if name >= ticket {
				continue
			}
			if seen[name] {
				continue
			}
			predecessors = append(predecessors, name)
		}

		if len(predecessors) == 0 {
			return nil
		}

		sort.Strings(predecessors)
		for _, pred := range predecessors {
			waitOnTicket(filepath.Join(queueDir, pred))
			seen[pred] = true
		}
	}
}

// waitOnTicket blocks until the exclusive holder of path (if any)
// releases it, or returns immediately if the owner has already removed
// the file.
func waitOnTicket(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	lock := filelock.New(path)
	if err := lock.LockShared(); err != nil {
		if os.IsNotExist(err) {
			return
		}
		logger.DebugF("queue: wait on predecessor %s: %v", path, err)
		return
	}
	lock.Unlock()
}

// Sweep removes uncontended tickets left behind by a crashed owner: any
// published ticket whose exclusive lock can be acquired immediately has
// no live holder. Hidden (unpublished) tickets are left alone; they are
// either mid-publish or belong to a still-running owner.
func Sweep(queueDir string) {
	entries, err := os.ReadDir(queueDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(queueDir, name)
		lock := filelock.New(path)
		ok, err := lock.TryLock()
		if err != nil || !ok {
			continue
		}
		os.Remove(path)
		lock.Unlock()
	}
}
