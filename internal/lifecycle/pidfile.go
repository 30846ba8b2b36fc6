// Package lifecycle handles the single-instance PID marker and process
// signals shared by the overlay and the command-line tool.
package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrAlreadyRunning is returned when the PID marker names a live process.
var ErrAlreadyRunning = errors.New("overlay is already running")

// PIDFile is the marker holding the decimal PID of the running overlay.
type PIDFile struct {
	path string
}

// NewPIDFile returns a marker at path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the marker location.
func (p *PIDFile) Path() string { return p.path }

// Read returns the recorded PID. A missing or garbled marker yields 0.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

// Running returns the recorded PID when that process is alive.
func (p *PIDFile) Running() (int, bool) {
	pid, err := p.Read()
	if err != nil || pid == 0 {
		return 0, false
	}
	return pid, IsAlive(pid)
}

// Acquire records pid, refusing when another live process holds the marker.
// A stale marker is overwritten.
func (p *PIDFile) Acquire(pid int) error {
	if other, alive := p.Running(); alive && other != pid {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, other)
	}
	return p.Write(pid)
}

// Write records pid.
func (p *PIDFile) Write(pid int) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("creating pid directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	return nil
}

// Remove deletes the marker. A missing marker is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing pid file: %w", err)
	}
	return nil
}
