// Package testutil provides shared test utilities and fixtures.
package testutil

import (
	"sync"
)

// RecordingCommander captures commands sent to a device link. It satisfies
// the SendCommand contract used by the display and audio serial backends.
type RecordingCommander struct {
	mu       sync.Mutex
	commands []string

	// Err is returned by every SendCommand call when set.
	Err error
}

// SendCommand records command and returns Err.
func (r *RecordingCommander) SendCommand(command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.commands = append(r.commands, command)
	return nil
}

// Commands returns a copy of the recorded commands.
func (r *RecordingCommander) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.commands))
	copy(out, r.commands)
	return out
}

// Reset discards recorded commands.
func (r *RecordingCommander) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}
