// Command filterkit is the interactive filter prompt: it loads an image,
// renders the catalog as a numbered menu, applies the chosen filters, and
// saves the result on demand.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	filterkit "github.com/rasterlab/filterkit"
	"github.com/rasterlab/filterkit/adapters/storage"
	"github.com/rasterlab/filterkit/core"
	"github.com/rasterlab/filterkit/hooks"
)

func main() {
	var (
		input    = flag.String("input", "", "path of the image to edit")
		outDir   = flag.String("out", ".", "directory saved images are written to")
		logLevel = flag.String("log", "info", "log level: debug, info, warn, error")
		workers  = flag.Int("workers", 0, "convolution worker count (0 = NumCPU)")
		histCap  = flag.Int("history", 0, "undo snapshots retained (0 = unlimited)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))

	cfg := filterkit.DefaultConfig()
	cfg.WorkerCount = *workers
	cfg.HistoryLimit = *histCap
	cfg.LogLevel = *logLevel

	editor := filterkit.New(cfg)
	editor.SetLogger(hooks.NewSlogLogger(logger))
	editor.AddHook(hooks.NewLoggingHook(hooks.NewSlogLogger(logger)))

	metrics := hooks.NewInMemoryMetrics()
	editor.SetMetrics(metrics)
	editor.AddHook(hooks.NewMetricsHook(metrics))

	store, err := storage.NewLocal(*outDir, 0)
	if err != nil {
		fatal(logger, "storage init failed", err)
	}

	in := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	path := *input
	if path == "" {
		path = prompt(in, "Enter image path: ")
	}
	if err := editor.LoadFile(ctx, path); err != nil {
		fatal(logger, "load failed", err)
	}

	session := &session{editor: editor, store: store, in: in, logger: logger}
	session.run(ctx)

	applied, errs := editor.Stats()
	logger.Info("session finished", "applied", applied, "errors", errs)
}

type session struct {
	editor *filterkit.Editor
	store  *storage.Local
	in     *bufio.Scanner
	logger *slog.Logger
}

func (s *session) run(ctx context.Context) {
	for {
		s.printMenu()
		choice := prompt(s.in, "Choose a filter (e.g. 1.1), or undo/save/exit: ")

		switch strings.ToLower(choice) {
		case "":
			continue
		case "exit", "quit":
			return
		case "undo":
			if err := s.editor.Undo(); err != nil {
				fmt.Println(" nothing to undo")
				continue
			}
			s.printDims("undone")
		case "save":
			s.save(ctx)
		default:
			s.applySelection(ctx, choice)
		}
	}
}

// printMenu renders the catalog tree with 1.1-style selectors.
func (s *session) printMenu() {
	fmt.Println("\nAvailable Filters:")
	root := s.editor.Catalog().Root()
	for i, category := range root.Children {
		fmt.Printf("%d. %s\n", i+1, category.Name)
		for j, leaf := range category.Children {
			fmt.Printf("   %d.%d %s\n", i+1, j+1, leaf.Name)
		}
	}
}

// applySelection resolves a "category.leaf" selector against the catalog and
// applies the filter it names.
func (s *session) applySelection(ctx context.Context, choice string) {
	node := s.resolve(choice)
	if node == nil || node.Key == "" {
		fmt.Println(" invalid selection")
		return
	}
	if err := s.editor.ApplyNamed(ctx, node.Key, &promptParams{in: s.in}); err != nil {
		fmt.Printf(" %s failed: %v\n", node.Name, err)
		return
	}
	s.printDims(node.Name)
}

func (s *session) resolve(choice string) *core.CatalogNode {
	parts := strings.SplitN(choice, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	ci, err1 := strconv.Atoi(parts[0])
	li, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	root := s.editor.Catalog().Root()
	if ci < 1 || ci > len(root.Children) {
		return nil
	}
	category := root.Children[ci-1]
	if li < 1 || li > len(category.Children) {
		return nil
	}
	return category.Children[li-1]
}

func (s *session) save(ctx context.Context) {
	name := prompt(s.in, "File name: ")
	if name == "" {
		return
	}
	if !strings.Contains(name, ".") {
		name += ".png"
	}

	pr, pw := io.Pipe()
	go func() {
		err := s.editor.Export(ctx, pw, formatForName(name), core.EncodeOptions{})
		pw.CloseWithError(err)
	}()
	key := core.StorageKey{Path: name}
	if err := s.store.Put(ctx, key, pr, nil); err != nil {
		fmt.Printf(" save failed: %v\n", err)
		return
	}
	fmt.Printf(" saved %s\n", name)
}

func (s *session) printDims(op string) {
	if buf := s.editor.Buffer(); buf != nil {
		fmt.Printf(" %s -> %dx%d, history depth %d\n", op, buf.Width, buf.Height, s.editor.HistoryDepth())
	}
}

// promptParams collects typed filter parameters from stdin.
type promptParams struct {
	in *bufio.Scanner
}

func (p *promptParams) Int(name string) (int, error) {
	raw := prompt(p.in, label(name))
	return strconv.Atoi(strings.TrimSpace(raw))
}

func (p *promptParams) Float(name string) (float64, error) {
	raw := prompt(p.in, label(name))
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func label(name string) string {
	if name == "" {
		return ": "
	}
	return strings.ToUpper(name[:1]) + name[1:] + ": "
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func formatForName(name string) core.Format {
	switch {
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return core.FormatJPEG
	case strings.HasSuffix(name, ".webp"):
		return core.FormatWebP
	default:
		return core.FormatPNG
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
