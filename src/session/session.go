// Package session runs one capture: region selection over a frozen screen,
// annotation editing, then copy/save or cancellation.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"screen-annotate/src/clipboard"
	"screen-annotate/src/compositor"
	"screen-annotate/src/editor"
	"screen-annotate/src/export"
	"screen-annotate/src/geometry"
	"screen-annotate/src/notification"
	"screen-annotate/src/overlay"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/settings"
	"screen-annotate/src/worker"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrCaptureFailed      = errors.New("capture failed")
)

const defaultDeadline = 10 * time.Second

// Notifier receives user-facing outcomes.
type Notifier interface {
	Info(message string)
	Error(title, message string)
	CaptureSound()
}

type Options struct {
	Host     overlay.Host
	Backdrop image.Image
	// Capturer defaults to cropping Backdrop. Regions are relative to its
	// top-left corner.
	Capturer screenshot.Capturer
	// Pool runs the capture job. A private single-worker pool is used when nil.
	Pool     *worker.Pool
	Deadline time.Duration
	Settings settings.Settings
	SaveDir  string
	Editor   editor.Options

	Copy   func(img image.Image) bool
	Save   func(img image.Image, dir string, f export.Format) (string, error)
	Notify Notifier
	Logger *zap.Logger
}

type Result struct {
	Selection   geometry.Rect
	Copied      bool
	SavedPath   string
	Annotations int
}

// Exported reports whether the session produced any output.
func (r Result) Exported() bool { return r.Copied || r.SavedPath != "" }

type captured struct {
	img    image.Image
	region geometry.Rect
	err    error
}

type runner struct {
	opts     Options
	log      *zap.Logger
	ed       *editor.Editor
	ctx      context.Context
	captured chan captured
	cancel   context.CancelFunc
	pending  []editor.CommandName
	finished bool
	err      error
	res      Result
}

type defaultNotifier struct{}

func (defaultNotifier) Info(message string)         { notification.Info(message) }
func (defaultNotifier) Error(title, message string) { notification.Error(title, message) }
func (defaultNotifier) CaptureSound()               { notification.CaptureSound() }

// Run drives one session to completion. All editor state is touched from the
// calling goroutine only; the capture job reports back through a channel.
//
// It returns ErrSelectionCancelled when the user leaves without exporting and
// an error wrapping ErrCaptureFailed when the region could not be captured.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Host == nil {
		return Result{}, errors.New("Host is required")
	}
	if opts.Backdrop == nil {
		return Result{}, errors.New("Backdrop is required")
	}
	if opts.Capturer == nil {
		opts.Capturer = screenshot.Frozen{Frame: opts.Backdrop}
	}
	if opts.Deadline <= 0 {
		opts.Deadline = defaultDeadline
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.CopyImage
	}
	if opts.Save == nil {
		opts.Save = func(img image.Image, dir string, f export.Format) (string, error) {
			return export.Save(img, dir, f, time.Now())
		}
	}
	if opts.SaveDir == "" {
		opts.SaveDir = export.DefaultDir()
	}
	if opts.Settings.DefaultExportFormat == "" {
		opts.Settings.DefaultExportFormat = export.PNG
	}
	if opts.Notify == nil {
		opts.Notify = defaultNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	if opts.Pool == nil {
		opts.Pool = worker.New(1)
		defer opts.Pool.Close()
	}

	r := &runner{
		opts:     opts,
		log:      opts.Logger.Named("session"),
		ctx:      ctx,
		captured: make(chan captured, 1),
	}
	defer r.stopCapture()

	eopts := opts.Editor
	eopts.Logger = opts.Logger
	eopts.OnSelect = r.onSelect
	eopts.OnCancel = func() { r.finish(nil) }
	eopts.OnCopy = func() { r.pending = append(r.pending, editor.CommandCopy) }
	eopts.OnSave = func() { r.pending = append(r.pending, editor.CommandSave) }
	r.ed = editor.New(eopts)

	if err := opts.Host.Open(ctx, opts.Backdrop); err != nil {
		return Result{}, fmt.Errorf("failed to open overlay: %w", err)
	}
	defer opts.Host.Close()
	r.log.Info("session started")

	events := opts.Host.Events()
	opts.Host.Present(r.ed.Scene())
	for {
		select {
		case <-ctx.Done():
			r.log.Info("session aborted", zap.Error(ctx.Err()))
			return r.res, ctx.Err()
		case ev, ok := <-events:
			if ok {
				r.ed.Handle(ev)
			} else {
				r.log.Info("overlay closed")
				events = nil
				r.ed.Cancel()
			}
		case c := <-r.captured:
			r.onCaptured(c)
		}

		r.flush()
		if r.finished {
			return r.result()
		}
		opts.Host.Present(r.ed.Scene())
	}
}

func (r *runner) onSelect(region geometry.Rect) {
	jobCtx, cancel := context.WithTimeout(r.ctx, r.opts.Deadline)
	r.cancel = cancel
	capturer := r.opts.Capturer
	out := r.captured
	submitted := r.opts.Pool.Submit(jobCtx, "capture", func(ctx context.Context) {
		img, err := worker.Call(ctx, func() (image.Image, error) {
			return capturer.CaptureRegion(ctx, region)
		})
		out <- captured{img: img, region: region, err: err}
	})
	if !submitted {
		r.stopCapture()
		r.finish(fmt.Errorf("%w: capture queue is busy", ErrCaptureFailed))
		r.ed.Cancel()
	}
}

func (r *runner) stopCapture() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *runner) onCaptured(c captured) {
	r.stopCapture()
	if c.err != nil || c.img == nil {
		err := c.err
		if err == nil {
			err = errors.New("nothing captured")
		}
		r.log.Warn("capture returned no image", zap.Error(err))
		r.finish(fmt.Errorf("%w: %w", ErrCaptureFailed, err))
		r.ed.Cancel()
		return
	}

	r.res.Selection = c.region
	r.ed.EnterEditing(c.img, c.region)
	if r.opts.Settings.PlayCaptureSound {
		r.opts.Notify.CaptureSound()
	}
	if r.opts.Settings.AutoCopyAfterCapture && r.opts.Copy(c.img) {
		r.res.Copied = true
		r.log.Info("capture copied to clipboard")
	}
}

// flush runs copy and save requests raised while handling the last event.
func (r *runner) flush() {
	pending := r.pending
	r.pending = nil
	for _, cmd := range pending {
		if r.finished {
			return
		}
		img := r.composite()
		switch cmd {
		case editor.CommandCopy:
			if !r.opts.Copy(img) {
				r.opts.Notify.Error("Copy failed", "The image could not be placed on the clipboard.")
				continue
			}
			r.res.Copied = true
			r.log.Info("annotated image copied", zap.Int("annotations", r.res.Annotations))
			if r.opts.Settings.CloseAfterCopy {
				r.finish(nil)
			}
		case editor.CommandSave:
			path, err := r.opts.Save(img, r.opts.SaveDir, r.opts.Settings.DefaultExportFormat)
			if err != nil {
				r.log.Warn("save failed", zap.Error(err))
				r.opts.Notify.Error("Save failed", err.Error())
				continue
			}
			r.res.SavedPath = path
			r.log.Info("annotated image saved", zap.String("path", path))
			r.opts.Notify.Info("Saved " + path)
		}
	}
}

func (r *runner) composite() *image.RGBA {
	doc := r.ed.Document()
	r.res.Annotations = doc.Total()
	return compositor.Compose(r.ed.Base(), r.ed.Selection(), doc, nil)
}

func (r *runner) finish(err error) {
	if r.finished {
		return
	}
	r.finished = true
	r.err = err
}

func (r *runner) result() (Result, error) {
	if r.err != nil {
		return r.res, r.err
	}
	if !r.res.Exported() {
		return r.res, ErrSelectionCancelled
	}
	r.log.Info("session finished", zap.Bool("copied", r.res.Copied), zap.String("saved", r.res.SavedPath))
	return r.res, nil
}
