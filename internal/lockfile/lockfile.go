// Package lockfile implements single-instance enforcement via a PID file
// under the system temp directory holding the running instance's PID,
// probed for liveness on startup and removed on clean shutdown. Acquire
// reads the file once and overwrites it in place when it names no live
// process; there is no retry loop, since RapidWhisper has no
// command-forwarding surface of its own.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrAlreadyRunning indicates a live instance already holds the lockfile.
var ErrAlreadyRunning = errors.New("rapidwhisper already running")

// Lock represents a held lockfile. Release removes it from disk.
type Lock struct {
	path string
}

// DefaultPath returns the lockfile path under the system temp directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "rapidwhisper.pid")
}

// Acquire reads any existing lockfile at path, verifies whether the PID it
// names is a live process, and either reports ErrAlreadyRunning or
// overwrites the stale file with the current process's PID.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure lockfile dir: %w", err)
	}

	existing, err := readPID(path)
	var numErr *strconv.NumError
	switch {
	case err == nil:
		if processAlive(existing) {
			return nil, ErrAlreadyRunning
		}
	case errors.As(err, &numErr):
		// Unparseable content names no live process; overwrite it below.
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read lockfile %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return nil, fmt.Errorf("write lockfile %s: %w", path, err)
	}

	return &Lock{path: path}, nil
}

// Probe reports whether the PID named by the lockfile at path is a live
// process, without acquiring or mutating the lockfile. Used by the status
// command, which must not steal or clear another instance's lock.
func Probe(path string) (pid int, running bool, err error) {
	pid, err = readPID(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return pid, processAlive(pid), nil
}

// Release removes the lockfile. Safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lockfile %s: %w", l.path, err)
	}
	return nil
}

func readPID(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse pid in lockfile %s: %w", path, err)
	}
	return pid, nil
}
