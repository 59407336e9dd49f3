// Package reload types a chat command into the game window: it pastes the
// command through the clipboard and replays a fixed keystroke sequence.
package reload

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"markestedt/reloadbridge/config"
	"markestedt/reloadbridge/platform"
	"markestedt/reloadbridge/postprocess"
)

// CommandRequest is one request to type Text into the target window.
type CommandRequest struct {
	Text                  string
	RestoreFocusElsewhere bool
	// Version and Source are recorded only.
	Version string
	Source  string
}

// Result describes what one invocation did.
type Result struct {
	Status   Status
	Source   string
	Version  string
	Command  string
	Window   string
	Events   int
	Settle   time.Duration
	Started  time.Time
	Duration time.Duration
	Err      error
}

// OK reports whether the keystrokes were handed to the OS.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Reloader drives the clipboard, window and input capabilities in order.
// Overlapping invocations are rejected with StatusBusy rather than queued.
type Reloader struct {
	sys      platform.System
	commands *postprocess.Pipeline
	sleep    func(time.Duration)
	now      func() time.Time

	running  sync.Mutex
	inFlight atomic.Bool

	mu     sync.RWMutex
	target config.TargetConfig
}

// New creates a reloader for target using the given OS capabilities.
func New(target config.TargetConfig, sys platform.System) *Reloader {
	return &Reloader{
		sys:      sys,
		commands: postprocess.CommandPipeline(target.MaxCommandLen),
		sleep:    time.Sleep,
		now:      time.Now,
		target:   target,
	}
}

// Target returns the current target settings.
func (r *Reloader) Target() config.TargetConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.target
}

// SetTarget swaps the target settings used by subsequent invocations.
func (r *Reloader) SetTarget(target config.TargetConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
	r.commands = postprocess.CommandPipeline(target.MaxCommandLen)
}

// Busy reports whether an invocation is currently running.
func (r *Reloader) Busy() bool {
	return r.inFlight.Load()
}

// Reload is the host-facing command: it types the configured reload command
// into the target window and always returns an empty string. Failures are
// logged and otherwise dropped; use Run for the outcome.
func (r *Reloader) Reload(version string) string {
	r.Run(r.ReloadRequest(version, ""))
	return ""
}

// ReloadRequest builds the request Reload would run.
func (r *Reloader) ReloadRequest(version, source string) CommandRequest {
	return CommandRequest{
		Text:                  r.Target().ReloadCommand,
		RestoreFocusElsewhere: false,
		Version:               version,
		Source:                source,
	}
}

// Chat types arbitrary text into the target window's chat line.
func (r *Reloader) Chat(text string, restoreFocusElsewhere bool, source string) Result {
	return r.Run(CommandRequest{
		Text:                  text,
		RestoreFocusElsewhere: restoreFocusElsewhere,
		Source:                source,
	})
}

// Run executes one request: find window, write clipboard, focus, settle,
// inject. It stops at the first failing step and never panics or blocks on a
// second caller.
func (r *Reloader) Run(req CommandRequest) (res Result) {
	res = Result{
		Source:  req.Source,
		Version: req.Version,
		Started: r.now(),
	}
	defer func() {
		res.Duration = r.now().Sub(res.Started)
		logResult(res)
	}()

	if !r.running.TryLock() {
		res.Status = StatusBusy
		return res
	}
	r.inFlight.Store(true)
	defer func() {
		r.inFlight.Store(false)
		r.running.Unlock()
	}()

	r.mu.RLock()
	target := r.target
	commands := r.commands
	r.mu.RUnlock()

	res.Window = target.WindowTitle

	text, err := commands.Process(context.Background(), req.Text)
	if err != nil {
		res.Command = req.Text
		res.Status, res.Err = StatusInvalidCommand, err
		return res
	}
	res.Command = text

	win, err := r.sys.Windows.Find(target.WindowTitle)
	if err != nil {
		res.Status, res.Err = statusOf(err), err
		return res
	}

	if err := platform.WriteText(r.sys.Clipboard, text); err != nil {
		res.Status, res.Err = StatusClipboardUnavailable, err
		if statusOf(err) == StatusAllocationFailed {
			res.Status = StatusAllocationFailed
		}
		return res
	}

	// SetForegroundWindow can be refused by the foreground lock; the
	// keystrokes go out regardless, as they would after a successful call.
	if err := r.sys.Windows.Focus(win); err != nil {
		slog.Warn("Failed to focus target window", "window", win.Title, "error", err)
	}

	res.Settle = target.SettleDelay()
	r.sleep(res.Settle)

	n, err := r.SendChatCommand(req.RestoreFocusElsewhere)
	res.Events = n
	if err != nil {
		res.Status, res.Err = StatusInputRejected, err
		return res
	}

	res.Status = StatusOK
	return res
}

// SendChatCommand dispatches the chat keystroke batch to whatever window has
// focus. The clipboard must already hold the command. It returns the number of
// events sent.
func (r *Reloader) SendChatCommand(restoreFocusElsewhere bool) (int, error) {
	events := ChatSequence(restoreFocusElsewhere)
	slog.Debug("Dispatching keystrokes", "count", len(events), "events", platform.FormatEvents(events))
	if err := r.sys.Input.Dispatch(events); err != nil {
		return 0, err
	}
	return len(events), nil
}

func logResult(res Result) {
	attrs := []any{
		"status", res.Status,
		"source", res.Source,
		"command", res.Command,
		"window", res.Window,
		"duration", res.Duration,
	}

	switch res.Status {
	case StatusOK:
		slog.Info("Chat command sent", append(attrs, "events", res.Events, "version", res.Version)...)
	case StatusWindowNotFound:
		// The game not running is the normal case, not a failure.
		slog.Debug("Target window not found, nothing to do", attrs...)
	case StatusBusy:
		slog.Warn("Chat command already in progress, dropping request", attrs...)
	default:
		slog.Warn("Chat command failed", append(attrs, "error", res.Err)...)
	}
}
