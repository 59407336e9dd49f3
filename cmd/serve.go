package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"markestedt/reloadbridge/agent"
	"markestedt/reloadbridge/platform"
	"markestedt/reloadbridge/systray"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge server, hotkey and tray until stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ag := agent.New(a.cfg, platform.NewSystem(), platform.NewHotkey(), db)

	slog.Info("Configuration loaded", "path", a.cfg.Path())

	if !a.cfg.Tray.Enabled {
		return ag.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tray := systray.NewSystrayManager(systray.Options{
		Tooltip:    "reloadbridge: " + a.cfg.Target.WindowTitle,
		HistoryURL: ag.HistoryURL(),
		OnReload:   func() { ag.ReloadFrom("tray", "") },
	})

	agentErr := make(chan error, 1)
	go func() {
		agentErr <- ag.Run(ctx)
		// Stop the tray when the agent exits on its own.
		tray.Stop()
	}()

	go func() {
		select {
		case <-tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
		}
	}()

	// The tray owns the main thread until Stop or Quit.
	tray.Run()
	cancel()

	err = <-agentErr
	slog.Info("reloadbridge stopped")
	return err
}
