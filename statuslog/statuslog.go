// Package statuslog loads captured job output on demand: the full
// content for notification bodies, and a tail of the last N lines for
// interactive status display.
package statuslog

import (
	"bufio"
	"os"
	"time"

	"oss.nandlabs.io/regular/fsutils"
)

// Log is a captured stdout/stderr file loaded on demand.
type Log struct {
	Filename string
	Modified time.Time
	Lines    []string
}

// Load reads the full content of path into a Log. A missing file
// yields an empty, zero-modified Log rather than an error.
func Load(path string) (Log, error) {
	if !fsutils.FileExists(path) {
		return Log{Filename: path}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Log{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Log{}, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Log{}, err
	}

	return Log{Filename: path, Modified: info.ModTime(), Lines: lines}, nil
}

// Tail returns the last n lines of the log, or all of them if there are
// fewer than n.
func (l Log) Tail(n int) []string {
	if n <= 0 || n >= len(l.Lines) {
		return l.Lines
	}
	return l.Lines[len(l.Lines)-n:]
}
