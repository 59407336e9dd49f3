// Package agent wires the reloader to its triggers (bridge server, hotkey,
// tray, CLI) and records every outcome.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"markestedt/reloadbridge/config"
	"markestedt/reloadbridge/platform"
	"markestedt/reloadbridge/reload"
	"markestedt/reloadbridge/storage"
	"markestedt/reloadbridge/web"
)

// Agent coordinates the triggers, the reloader and the history store
type Agent struct {
	cfg      *config.Config
	reloader *reload.Reloader
	hotkey   platform.Hotkey
	db       *storage.DB
	server   *web.Server
	notify   notifier
}

// notifier pushes progress to bridge clients.
type notifier interface {
	BroadcastStatus(status string)
	BroadcastResult(id int64, res reload.Result)
}

// New creates an agent. db may be nil when history is disabled; the bridge
// server is created when cfg.Web.Enabled.
func New(cfg *config.Config, sys platform.System, hotkey platform.Hotkey, db *storage.DB) *Agent {
	a := &Agent{
		cfg:      cfg,
		reloader: reload.New(cfg.Target, sys),
		hotkey:   hotkey,
		db:       db,
	}
	if cfg.Web.Enabled {
		a.server = web.NewServer(db, cfg, a, cfg.Web.Port)
		a.notify = a.server
	}
	return a
}

// Reload is the command contract exposed to the host shell: reload(version)
// types the configured reload command into the game and always returns an
// empty string. Surfaces that want the outcome use ReloadFrom instead.
func (a *Agent) Reload(version string) string {
	a.ReloadFrom("bridge", version)
	return ""
}

// ReloadFrom runs a reload attributed to source and records the result.
func (a *Agent) ReloadFrom(source, version string) reload.Result {
	return a.execute(func() reload.Result {
		return a.reloader.Run(a.reloader.ReloadRequest(version, source))
	})
}

// Chat types text into the game chat and records the result.
func (a *Agent) Chat(text string, restoreFocusElsewhere bool, source string) reload.Result {
	return a.execute(func() reload.Result {
		return a.reloader.Chat(text, restoreFocusElsewhere, source)
	})
}

// execute announces busy, runs, records the result and announces idle. A run
// rejected as busy leaves the state to the run that owns it.
func (a *Agent) execute(run func() reload.Result) reload.Result {
	if a.notify != nil {
		a.notify.BroadcastStatus("busy")
	}

	res := run()
	a.record(res)

	if a.notify != nil && res.Status != reload.StatusBusy {
		a.notify.BroadcastStatus("idle")
	}
	return res
}

// SetTarget applies new target settings to subsequent commands.
func (a *Agent) SetTarget(target config.TargetConfig) {
	a.reloader.SetTarget(target)
}

// Busy reports whether a command is being typed right now.
func (a *Agent) Busy() bool {
	return a.reloader.Busy()
}

// HistoryURL is where the bridge serves reload history, or "" when the server is disabled.
func (a *Agent) HistoryURL() string {
	if a.server == nil {
		return ""
	}
	return fmt.Sprintf("http://127.0.0.1:%d/api/history", a.cfg.Web.Port)
}

func (a *Agent) record(res reload.Result) {
	var id int64
	if a.db != nil {
		row := &storage.Reload{
			Timestamp:   res.Started,
			Source:      res.Source,
			Version:     res.Version,
			Command:     res.Command,
			WindowTitle: res.Window,
			Status:      res.Status.String(),
			EventCount:  res.Events,
			SettleMs:    res.Settle.Milliseconds(),
			LatencyMs:   res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			row.ErrorMessage = res.Err.Error()
		}
		if err := a.db.SaveReload(row); err != nil {
			slog.Error("Failed to save reload", "error", err)
		} else {
			id = row.ID
		}
	}

	if a.notify != nil {
		a.notify.BroadcastResult(id, res)
	}
}

// Run serves the bridge and listens for the hotkey until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var events <-chan platform.Event
	if combo := a.cfg.Hotkey.Combo; combo != "" {
		pkCombo, err := hotkeyCombo(combo)
		if err != nil {
			return err
		}
		events, err = a.hotkey.Listen(ctx, pkCombo)
		if err != nil {
			return fmt.Errorf("failed to start hotkey listener: %w", err)
		}
	}

	serverErr := make(chan error, 1)
	if a.server != nil {
		go func() { serverErr <- a.server.Start(ctx) }()
	}

	slog.Info("reloadbridge started",
		"window", a.cfg.Target.WindowTitle,
		"hotkey", a.cfg.Hotkey.Combo,
		"web", a.cfg.Web.Enabled,
		"history", a.db != nil,
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-serverErr:
			if err != nil {
				return err
			}
			serverErr = nil

		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Fire on release so the user's modifiers are up before Ctrl+A/V go out.
			if evt.Type == platform.Released {
				go a.ReloadFrom("hotkey", "")
			}
		}
	}
}

func hotkeyCombo(combo string) (platform.KeyCombo, error) {
	kc, err := config.ParseHotkey(combo)
	if err != nil {
		return platform.KeyCombo{}, fmt.Errorf("failed to parse hotkey: %w", err)
	}

	// 0 means modifier-only combo
	vkCode, err := platform.VKCode(kc.Key)
	if err != nil {
		return platform.KeyCombo{}, fmt.Errorf("failed to get VK code: %w", err)
	}

	return platform.KeyCombo{
		Ctrl:  kc.Ctrl,
		Shift: kc.Shift,
		Alt:   kc.Alt,
		Win:   kc.Win,
		Key:   vkCode,
	}, nil
}
