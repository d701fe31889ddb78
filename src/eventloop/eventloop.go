package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"screen-annotate/src/config"
	"screen-annotate/src/editor"
	"screen-annotate/src/hotkey"
	"screen-annotate/src/notification"
	"screen-annotate/src/overlay"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
	"screen-annotate/src/settings"
	"screen-annotate/src/singleinstance"
	"screen-annotate/src/tray"
	"screen-annotate/src/worker"
)

// RunSessionFunc runs one capture session.
type RunSessionFunc func(ctx context.Context, opts session.Options) (session.Result, error)

// Loop is the single-threaded coordinator for hotkey, tray and run-once
// requests. At most one session runs at a time.
type Loop struct {
	cfg      *config.Config
	settings settings.Settings
	pool     *worker.Pool
	srv      singleinstance.Server
	log      *zap.Logger

	busy           bool
	results        chan result
	hotkeyCh       chan struct{}
	defaultTooltip string
	deadline       time.Duration

	newHost    func() overlay.Host
	grab       func() (image.Image, error)
	runSession RunSessionFunc
}

type result struct {
	res  session.Result
	err  error
	conn singleinstance.Conn
}

// New creates a new event loop with defaults based on config.
// If cfg is nil or cfg.CaptureDeadlineSec <= 0, a 10s deadline is used.
func New(cfg *config.Config, st settings.Settings) *Loop {
	deadlineSec := config.DefaultCaptureDeadSec
	if cfg != nil && cfg.CaptureDeadlineSec > 0 {
		deadlineSec = cfg.CaptureDeadlineSec
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	return &Loop{
		cfg:            cfg,
		settings:       st,
		pool:           worker.New(1),
		srv:            singleinstance.NewServer(),
		log:            zap.L().Named("eventloop"),
		results:        make(chan result, 1),
		hotkeyCh:       make(chan struct{}, 4),
		defaultTooltip: "Screen Annotate",
		deadline:       time.Duration(deadlineSec) * time.Second,
		newHost:        overlay.New,
		grab:           func() (image.Image, error) { return screenshot.Capture() },
		runSession:     session.Run,
	}
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("Screen Annotate: capturing...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// StartHotkey registers a global hotkey and posts events into the loop.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	return hotkey.Listen(combo, l.Trigger)
}

// Trigger asks the loop to start a session, as the hotkey and the tray menu
// do. It never blocks.
func (l *Loop) Trigger() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// Run starts the singleinstance server and processes requests.
// It blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	if p := l.srv.Port(); p > 0 {
		l.log.Info("resident listening", zap.Int("port", p))
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		defer close(reqCh)
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				return
			}
			select {
			case reqCh <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if l.busy {
				// Let the running session observe ctx and unwind.
				res := <-l.results
				l.handleResult(res)
			}
			return ctx.Err()
		case <-l.hotkeyCh:
			l.startRequest(ctx, nil)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.startRequest(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) startRequest(ctx context.Context, conn singleinstance.Conn) {
	if l.busy {
		l.log.Info("request while busy, skipping", zap.Bool("delegated", conn != nil))
		if conn != nil {
			_ = conn.RespondError("Busy, please retry")
			_ = conn.Close()
		}
		return
	}

	backdrop, err := l.grab()
	if err != nil || backdrop == nil {
		if err == nil {
			err = errors.New("empty screen capture")
		}
		l.log.Warn("screen grab failed", zap.Error(err))
		l.deliverError(conn, fmt.Errorf("failed to capture screen: %w", err))
		if conn != nil {
			_ = conn.Close()
		}
		return
	}

	opts := session.Options{
		Host:     l.newHost(),
		Backdrop: backdrop,
		Pool:     l.pool,
		Deadline: l.deadline,
		Settings: l.settings,
		SaveDir:  l.cfg.SaveDir,
		Editor: editor.Options{
			Color:        l.cfg.DefaultColor,
			LineWidth:    l.cfg.DefaultLineWidth,
			HistoryLimit: l.cfg.HistoryLimit,
		},
	}

	l.setBusy(true)
	run := l.runSession
	go func() {
		res, err := run(ctx, opts)
		l.results <- result{res: res, err: err, conn: conn}
	}()
}

func (l *Loop) handleResult(r result) {
	l.setBusy(false)
	if r.conn != nil {
		defer r.conn.Close()
	}

	switch {
	case r.err == nil:
		l.log.Info("session completed", zap.Bool("copied", r.res.Copied), zap.String("saved", r.res.SavedPath))
		if r.conn != nil {
			_ = r.conn.RespondSuccess(summary(r.res))
		}
	case errors.Is(r.err, session.ErrSelectionCancelled), errors.Is(r.err, context.Canceled):
		l.log.Info("session cancelled")
		if r.conn != nil {
			_ = r.conn.RespondCancelled()
		}
	default:
		l.log.Warn("session failed", zap.Error(r.err))
		l.deliverError(r.conn, r.err)
	}
}

func (l *Loop) deliverError(conn singleinstance.Conn, err error) {
	if conn == nil {
		notification.Error("Screen Annotate", err.Error())
		return
	}
	_ = conn.RespondError(err.Error())
}

func summary(r session.Result) string {
	switch {
	case r.SavedPath != "" && r.Copied:
		return "copied to clipboard; saved " + r.SavedPath
	case r.SavedPath != "":
		return "saved " + r.SavedPath
	default:
		return "copied to clipboard"
	}
}

// Deadline returns the configured capture deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }
