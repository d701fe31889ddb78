package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-annotate/src/singleinstance"
)

type stressOptions struct {
	n        int
	deadline time.Duration
}

type tally struct {
	ok, cancelled, busy, absent, err int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Fire concurrent run-once requests at the resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func runWithOptions(opts stressOptions) error {
	probeCtx, cancel := context.WithTimeout(context.Background(), opts.deadline)
	port, ok := singleinstance.DetectResidentPort(probeCtx)
	cancel()
	if !ok {
		return errors.New("no resident instance is listening")
	}
	fmt.Fprintf(os.Stdout, "resident on port %d\n", port)

	var wg sync.WaitGroup
	var t tally

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := singleinstance.NewClient().TryRunOnce(ctx)
			t.record(delegated, err)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "launched=%d ok=%d cancelled=%d busy=%d absent=%d err=%d elapsed=%s\n",
		opts.n, t.ok, t.cancelled, t.busy, t.absent, t.err, elapsed)
	return nil
}

func (t *tally) record(delegated bool, err error) {
	switch {
	case !delegated && err == nil:
		atomic.AddInt32(&t.absent, 1)
	case err == nil:
		atomic.AddInt32(&t.ok, 1)
	case errors.Is(err, singleinstance.ErrCancelled):
		atomic.AddInt32(&t.cancelled, 1)
	case strings.Contains(strings.ToLower(err.Error()), "busy"):
		atomic.AddInt32(&t.busy, 1)
	default:
		atomic.AddInt32(&t.err, 1)
	}
}
