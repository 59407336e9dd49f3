package reload

import (
	"errors"
	"fmt"

	"markestedt/reloadbridge/platform"
	"markestedt/reloadbridge/postprocess"
)

// Status is the outcome of one invocation. Callers of Reload never see it;
// it feeds logs, history and the bridge API.
type Status int

const (
	StatusOK Status = iota
	StatusClipboardUnavailable
	StatusAllocationFailed
	StatusWindowNotFound
	StatusInputRejected
	StatusBusy
	StatusInvalidCommand
)

var statusNames = map[Status]string{
	StatusOK:                   "ok",
	StatusClipboardUnavailable: "clipboard_unavailable",
	StatusAllocationFailed:     "allocation_failed",
	StatusWindowNotFound:       "window_not_found",
	StatusInputRejected:        "input_rejected",
	StatusBusy:                 "busy",
	StatusInvalidCommand:       "invalid_command",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status by name for JSON responses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// statusOf classifies an error returned by the platform layer or the command pipeline.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, platform.ErrWindowNotFound):
		return StatusWindowNotFound
	case errors.Is(err, platform.ErrAllocationFailed):
		return StatusAllocationFailed
	case errors.Is(err, platform.ErrClipboardUnavailable):
		return StatusClipboardUnavailable
	case errors.Is(err, postprocess.ErrInvalidCommand):
		return StatusInvalidCommand
	default:
		return StatusInputRejected
	}
}
