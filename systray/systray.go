package systray

import (
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
)

// Options configures the tray menu. HistoryURL may be empty, which hides the
// history item.
type Options struct {
	Tooltip    string
	HistoryURL string
	IconData   []byte
	OnReload   func()
}

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	opts    Options
	quit    chan struct{}
	openURL func(string) error
}

// NewSystrayManager creates a new systray manager
func NewSystrayManager(opts Options) *SystrayManager {
	return &SystrayManager{
		opts:    opts,
		quit:    make(chan struct{}),
		openURL: openBrowser,
	}
}

// Run starts the system tray (blocking call). It must run on the main thread.
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	if len(m.opts.IconData) > 0 {
		systray.SetIcon(m.opts.IconData)
	}

	systray.SetTitle("reloadbridge")
	systray.SetTooltip(m.opts.Tooltip)

	mReload := systray.AddMenuItem("Reload item filter", "Type the reload command into the game")
	mHistory := systray.AddMenuItem("Open history", "Show recent reloads in the browser")
	if m.opts.HistoryURL == "" {
		mHistory.Hide()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit reloadbridge")

	go func() {
		for {
			select {
			case <-mReload.ClickedCh:
				m.reload()
			case <-mHistory.ClickedCh:
				m.openHistory()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

func (m *SystrayManager) reload() {
	if m.opts.OnReload == nil {
		return
	}
	// Clicking the menu leaves focus on the taskbar; the reload refocuses the game.
	go m.opts.OnReload()
}

func (m *SystrayManager) openHistory() {
	if m.opts.HistoryURL == "" {
		return
	}
	slog.Info("Opening history", "url", m.opts.HistoryURL)
	if err := m.openURL(m.opts.HistoryURL); err != nil {
		slog.Error("Failed to open history", "error", err)
	}
}

// openBrowser opens url in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
