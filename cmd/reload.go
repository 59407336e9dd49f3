package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"markestedt/reloadbridge/agent"
	"markestedt/reloadbridge/platform"
	"markestedt/reloadbridge/reload"
)

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload [version]",
		Short: "Type the reload command into the game once",
		Long:  `Type the configured reload command into the game window once. The optional version is recorded in history.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var version string
			if len(args) == 1 {
				version = args[0]
			}
			ag, done, err := a.oneShotAgent()
			if err != nil {
				return err
			}
			defer done()

			return report(cmd, ag.ReloadFrom("cli", version))
		},
	}
}

func newChatCmd(a *app) *cobra.Command {
	var restoreFocus bool

	cmd := &cobra.Command{
		Use:   "chat <text>",
		Short: "Type arbitrary text into the game chat once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, done, err := a.oneShotAgent()
			if err != nil {
				return err
			}
			defer done()

			return report(cmd, ag.Chat(args[0], restoreFocus, "cli"))
		},
	}

	cmd.Flags().BoolVar(&restoreFocus, "restore-focus", false, "alt+tab away from the game afterwards")
	return cmd
}

// oneShotAgent builds an agent without the bridge server for a single command.
func (a *app) oneShotAgent() (*agent.Agent, func(), error) {
	db, err := a.openDB()
	if err != nil {
		return nil, nil, err
	}

	cfg := a.cfg.Clone()
	cfg.Web.Enabled = false

	done := func() {
		if db != nil {
			db.Close()
		}
	}
	return agent.New(cfg, platform.NewSystem(), platform.NewHotkey(), db), done, nil
}

func report(cmd *cobra.Command, res reload.Result) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d events, %s)\n", res.Status, res.Events, res.Duration.Round(time.Millisecond))
	switch res.Status {
	case reload.StatusOK, reload.StatusWindowNotFound, reload.StatusBusy:
		// game not running or another command in flight: nothing to do
		return nil
	default:
		if res.Err != nil {
			return fmt.Errorf("%s: %w", res.Status, res.Err)
		}
		return fmt.Errorf("%s", res.Status)
	}
}
