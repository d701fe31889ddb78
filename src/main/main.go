package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"screen-annotate/src/config"
	"screen-annotate/src/eventloop"
	"screen-annotate/src/notification"
	"screen-annotate/src/overlay"
	"screen-annotate/src/runtimeinit"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
	"screen-annotate/src/singleinstance"
	"screen-annotate/src/tray"
)

const appTitle = "Screen Annotate"

type mainOptions struct {
	runOnce bool
	hotkey  string
	envPath string
	saveDir string
	verbose bool
}

type runOnceClient interface {
	TryRunOnce(ctx context.Context) (bool, string, error)
}

func main() {
	// DPI awareness must be set before any window or metric query.
	enableDPIAwareness()

	// The tray and the overlay each own a message loop; keep main on its own
	// OS thread so they never share a queue.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := normalizeLegacyArgs(os.Args)
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-annotate",
		Short:         "Select a screen region, annotate it, then copy or save it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if opts.runOnce {
				return runOnce(ctx, *opts)
			}
			return runResident(ctx, *opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Capture once (delegating to a running resident when present) and exit")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global hotkey, overrides HOTKEY")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to a .env file")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "Directory for saved captures, overrides SAVE_DIR")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

func (o mainOptions) bootstrap(showErrors bool) (*runtimeinit.Runtime, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvPathOverride: o.envPath,
			HotkeyOverride:  o.hotkey,
			SaveDirOverride: o.saveDir,
		},
		Verbose:           o.verbose,
		ShowBlockingError: showErrors,
	})
}

// runOnce prefers delegating to the resident over TCP and falls back to a
// standalone session when none answers.
func runOnce(ctx context.Context, opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* apply to the delegation scan.
	_, _ = config.LoadWithOptions(config.LoadOptions{EnvPathOverride: opts.envPath})

	return handleRunOnceWithDelegation(ctx, singleinstance.NewClient(), func() error {
		return runStandalone(ctx, opts)
	})
}

func handleRunOnceWithDelegation(ctx context.Context, client runOnceClient, fallback func() error) error {
	log := zap.L().Named("main")
	delegated, detail, err := client.TryRunOnce(ctx)
	switch {
	case !delegated && err != nil:
		log.Warn("delegation failed, running standalone", zap.Error(err))
		return fallback()
	case !delegated:
		log.Info("no resident detected, running standalone")
		return fallback()
	case errors.Is(err, singleinstance.ErrCancelled):
		log.Info("resident session cancelled")
		return nil
	case err != nil:
		return fmt.Errorf("resident: %w", err)
	}
	if detail != "" {
		fmt.Println(detail)
	}
	return nil
}

func runStandalone(ctx context.Context, opts mainOptions) error {
	rt, err := opts.bootstrap(false)
	if err != nil {
		return err
	}
	defer rt.Logger.Sync()
	logMonitorConfiguration()

	backdrop, err := screenshot.Capture()
	if err != nil {
		return fmt.Errorf("failed to capture screen: %w", err)
	}

	res, err := session.Run(ctx, session.Options{
		Host:     overlay.New(),
		Backdrop: backdrop,
		Deadline: deadline(rt.Config),
		Settings: rt.Settings,
		SaveDir:  rt.Config.SaveDir,
		Editor:   editorOptions(rt.Config),
		Logger:   rt.Logger,
	})
	switch {
	case errors.Is(err, session.ErrSelectionCancelled), errors.Is(err, context.Canceled):
		rt.Logger.Info("run-once cancelled")
		return nil
	case err != nil:
		return err
	}
	if res.SavedPath != "" {
		fmt.Println(res.SavedPath)
	}
	return nil
}

func runResident(ctx context.Context, opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight.
	_, _ = config.LoadWithOptions(config.LoadOptions{EnvPathOverride: opts.envPath})
	startPort, _ := singleinstance.PortRange()
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(startPort))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Printf("one is already running on port %d\n", startPort)
		return fmt.Errorf("resident already running on port %d", startPort)
	}
	// Release the port so the event loop can re-bind it.
	_ = lis.Close()

	rt, err := opts.bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.Logger.Sync()
	log := rt.Logger.Named("main")
	log.Info("pre-flight: port free, starting resident", zap.Int("port", startPort))
	logMonitorConfiguration()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tooltip := fmt.Sprintf("%s - Press %s to capture", appTitle, rt.Config.Hotkey)
	loop := eventloop.New(rt.Config, rt.Settings)
	loop.SetDefaultTooltip(tooltip)

	trayIcon, err := tray.New(tray.Config{
		Title:     appTitle,
		Tooltip:   tooltip,
		Hotkey:    rt.Config.Hotkey,
		OnCapture: loop.Trigger,
		OnExit:    cancel,
	})
	if err != nil {
		return err
	}
	go trayIcon.Run()
	defer trayIcon.Destroy()

	if err := loop.StartHotkey(rt.Config.Hotkey); err != nil {
		notification.ShowBlockingError("Hotkey unavailable", err.Error())
		return err
	}
	log.Info("resident ready", zap.String("hotkey", rt.Config.Hotkey), zap.Duration("capture_deadline", loop.Deadline()))

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("event loop stopped", zap.Error(err))
		return err
	}
	return nil
}

// normalizeLegacyArgs maps single-dash long flags to the double-dash form
// cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"run-once", "hotkey", "env", "save-dir", "verbose"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
