// Package tray owns the system tray icon and its menu.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"screen-annotate/src/notification"
)

type Config struct {
	Title     string
	Tooltip   string
	Hotkey    string
	OnCapture func()
	OnExit    func()
}

type Tray struct {
	cfg Config
	log *zap.Logger
}

var (
	mu         sync.Mutex
	ready      bool
	aboutExtra string
	aboutKey   string
)

func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		return nil, fmt.Errorf("tray title is required")
	}
	SetAboutHotkey(cfg.Hotkey)
	return &Tray{cfg: cfg, log: zap.L().Named("tray")}, nil
}

// Run blocks until Quit. On Windows it must run on a thread that can own a
// message loop.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the icon.
func (t *Tray) Destroy() { systray.Quit() }

func (t *Tray) onReady() {
	icon, err := Icon()
	if err != nil {
		t.log.Warn("failed to render tray icon", zap.Error(err))
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mCapture := systray.AddMenuItem("Capture Region", "Select a region to annotate")
	mAbout := systray.AddMenuItem("About", "About "+t.cfg.Title)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	mu.Lock()
	ready = true
	mu.Unlock()
	t.log.Info("tray ready")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if t.cfg.OnCapture != nil {
					t.cfg.OnCapture()
				}
			case <-mAbout.ClickedCh:
				notification.Show("About "+t.cfg.Title, aboutText(t.cfg.Title))
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	mu.Lock()
	ready = false
	mu.Unlock()
	t.log.Info("tray exited")
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// UpdateTooltip changes the hover text. It is a no-op before the tray is ready.
func UpdateTooltip(tooltip string) {
	mu.Lock()
	ok := ready
	mu.Unlock()
	if ok {
		systray.SetTooltip(tooltip)
	}
}

func SetAboutHotkey(combo string) {
	mu.Lock()
	defer mu.Unlock()
	aboutKey = combo
}

// SetAboutExtra appends a line to the About text.
func SetAboutExtra(extra string) {
	mu.Lock()
	defer mu.Unlock()
	aboutExtra = extra
}

func aboutText(title string) string {
	mu.Lock()
	defer mu.Unlock()
	text := title + "\n\nSelect a screen region, annotate it, then copy (Ctrl+C) or save (Ctrl+S)."
	if aboutKey != "" {
		text += "\nHotkey: " + aboutKey
	}
	if aboutExtra != "" {
		text += "\n" + aboutExtra
	}
	return text
}
