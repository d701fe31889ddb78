package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"screen-annotate/src/compositor"
	"screen-annotate/src/editor"
	"screen-annotate/src/export"
	"screen-annotate/src/geometry"
	"screen-annotate/src/logutil"
	"screen-annotate/src/screenshot"
)

const (
	maxFileSizeMB = 50
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

var errCancelled = errors.New("session cancelled by script")

type cliOptions struct {
	filePath   string
	scriptPath string
	outPath    string
	format     string
	jsonOutput bool
	verbose    bool
}

// Result summarizes one replay.
type Result struct {
	Source      string  `json:"source"`
	Output      string  `json:"output"`
	Selection   Region  `json:"selection"`
	Annotations int     `json:"annotation_count"`
	Copies      int     `json:"copy_requests"`
	Saves       int     `json:"save_requests"`
	Duration    float64 `json:"duration_seconds"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args, os.Stdin, os.Stdout)
}

func runWithArgs(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"annotate"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdin, stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "annotate",
		Short:         "Replay an annotation script against a PNG and write the composite",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, stdin, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.scriptPath, "script", "", "Path to JSON event script")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Output image path")
	cmd.Flags().StringVar(&opts.format, "format", "", "png or jpg (default from --out extension)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print a JSON summary")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout io.Writer) error {
	logger := logutil.Setup(logutil.Options{Verbose: opts.verbose})
	defer logger.Sync()

	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(opts.outPath), ".")
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	img, err := readPNG(opts.filePath, stdin)
	if err != nil {
		return err
	}
	sf, err := os.Open(opts.scriptPath)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	script, events, err := DecodeScript(sf)
	sf.Close()
	if err != nil {
		return err
	}
	logger.Debug("script loaded", zap.Int("events", len(events)))

	start := time.Now()
	res, out, err := Replay(img, script, events, logger)
	if err != nil {
		return err
	}

	of, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := export.Encode(of, out, f); err != nil {
		of.Close()
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if err := of.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	res.Source = opts.filePath
	res.Output = opts.outPath
	res.Duration = time.Since(start).Seconds()
	return outputResult(stdout, res, opts.jsonOutput)
}

func readPNG(path string, stdin io.Reader) (image.Image, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return img, nil
}

// Replay drives a fresh editor over img. Without a scripted selection the
// events must drag one out; a script with neither edits the whole image.
func Replay(img image.Image, script *Script, events []editor.Event, logger *zap.Logger) (Result, *image.RGBA, error) {
	var res Result
	var pending *geometry.Rect
	cancelled := false

	ed := editor.New(editor.Options{
		Logger:   logger,
		OnSelect: func(r geometry.Rect) { pending = &r },
		OnCancel: func() { cancelled = true },
		OnCopy:   func() { res.Copies++ },
		OnSave:   func() { res.Saves++ },
	})
	enter := func(r geometry.Rect) error {
		crop := screenshot.Crop(img, image.Point{}, r)
		if crop == nil {
			return fmt.Errorf("selection %v is outside the image", r)
		}
		ed.EnterEditing(crop, r)
		return nil
	}

	switch {
	case script.Selection != nil:
		if err := enter(script.Selection.Rect()); err != nil {
			return res, nil, err
		}
	case !dragsSelection(events):
		b := img.Bounds()
		if err := enter(geometry.R(0, 0, float64(b.Dx()), float64(b.Dy()))); err != nil {
			return res, nil, err
		}
	}

	for _, ev := range events {
		ed.Handle(ev)
		if pending != nil {
			if err := enter(*pending); err != nil {
				return res, nil, err
			}
			pending = nil
		}
		if cancelled {
			return res, nil, errCancelled
		}
	}
	if ed.Mode() != editor.ModeEditing {
		return res, nil, fmt.Errorf("script ended before a region was selected")
	}
	// An open text field counts, as it would on copy.
	ed.CommitText()

	doc := ed.Document()
	sel := ed.Selection()
	res.Annotations = doc.Total()
	res.Selection = Region{X: sel.X, Y: sel.Y, Width: sel.Width, Height: sel.Height}
	return res, compositor.Compose(ed.Base(), sel, doc, nil), nil
}

func dragsSelection(events []editor.Event) bool {
	for _, ev := range events {
		switch ev.(type) {
		case editor.PointerDown:
			return true
		case editor.SelectTool, editor.SelectColor, editor.SelectLineWidth, editor.Command, editor.KeyDown, editor.TextInput:
			return false
		}
	}
	return false
}

func outputResult(w io.Writer, res Result, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(res); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %d annotations\n", res.Output, res.Annotations)
	return err
}
