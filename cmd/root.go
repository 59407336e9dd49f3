// Package cmd provides the command-line interface for reloadbridge.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"markestedt/reloadbridge/config"
	"markestedt/reloadbridge/logging"
	"markestedt/reloadbridge/storage"
)

// version is set at build time with -ldflags "-X markestedt/reloadbridge/cmd.version=..."
var version = "dev"

// app carries state shared by subcommands once the root pre-run has loaded it.
type app struct {
	cfgFile   string
	cfg       *config.Config
	logCloser io.Closer
}

// Execute builds the root command and runs it with ctx.
func Execute(ctx context.Context) error {
	return execute(ctx, &app{}, os.Args[1:])
}

// execute runs the command tree for args and releases the log file however
// the command ends; cobra skips post-run hooks when RunE fails.
func execute(ctx context.Context, a *app, args []string) (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd creates and returns the root command for reloadbridge
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reloadbridge",
		Short:         "Reload the Path of Exile 2 item filter from outside the game",
		Long:          `reloadbridge types /reloaditemfilter into the Path of Exile 2 chat on request from a local bridge, a hotkey, the tray or the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default %APPDATA%/reloadbridge/config.toml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.init()
	}

	rootCmd.AddCommand(
		newServeCmd(a),
		newReloadCmd(a),
		newChatCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

// init loads and validates the configuration, then installs the logger.
func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfg.Path(), err)
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logCloser = closer
	return nil
}

func (a *app) close() error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

// dataDir holds the history database next to the config file.
func (a *app) dataDir() string {
	return filepath.Dir(a.cfg.Path())
}

// openDB opens the history store, or returns nil when history is disabled.
func (a *app) openDB() (*storage.DB, error) {
	if !a.cfg.Storage.Enabled {
		return nil, nil
	}
	db, err := storage.Open(a.dataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return db, nil
}
