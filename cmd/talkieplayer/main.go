package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruiseixasm/talkiedispatch/engine"
)

const version = "0.1.0"

const usage = `player [-v] [-d MS] [-status ADDR] file1.json [file2.json...]

  -h, --help       show this help and exit
  -d, --delay MS   global offset, in milliseconds, added to every time_ms
  -v, --verbose    enable debug-level logging
  -V, --version    print the version and exit
  --status ADDR    start the read-only status surface (A4/A6/A7) at ADDR
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("player", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		delayMs    int
		verbose    bool
		showVer    bool
		statusAddr string
	)
	fs.IntVar(&delayMs, "d", 0, "global delay offset in milliseconds")
	fs.IntVar(&delayMs, "delay", 0, "global delay offset in milliseconds")
	fs.BoolVar(&verbose, "v", false, "enable debug-level logging")
	fs.BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	fs.BoolVar(&showVer, "V", false, "print the version and exit")
	fs.BoolVar(&showVer, "version", false, "print the version and exit")
	fs.StringVar(&statusAddr, "status", "", "start the status surface at this address")

	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		return 1
	}

	if showVer {
		fmt.Println("talkieplayer " + version)
		return 2
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "player: at least one input file is required")
		fs.Usage()
		return 1
	}

	setupLogger(verbose)
	attemptRealtimePriority()

	jsonText, err := readFiles(files)
	if err != nil {
		fmt.Fprintln(os.Stderr, "player:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []engine.Option{engine.WithVerbose(verbose)}
	if statusAddr != "" {
		opts = append(opts, engine.WithStatusServer(statusAddr))
	}

	report, err := engine.NewEngine(opts...).Play(ctx, jsonText, delayMs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "player:", err)
		return 1
	}

	printReport(report, verbose)
	return 0
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func printReport(r engine.PlayReport, verbose bool) {
	fmt.Printf("session %s: validated=%d incorrect=%d drag_ms=%.3f\n",
		r.SessionID, r.TotalValidated, r.TotalIncorrect, r.TotalDragMs)
	if verbose {
		fmt.Printf("  files=%d duration_s=%d json_ms=%.3f\n", r.FileCount, r.DurationSec, r.JSONProcessingMs)
		fmt.Printf("  delay avg=%.3f min=%.3f max=%.3f sd=%.3f total=%.3f\n",
			r.AverageDelayMs, r.MinimumDelayMs, r.MaximumDelayMs, r.SDDelayMs, r.TotalDelayMs)
	}
}

func readFiles(paths []string) ([]byte, error) {
	// A single input file carries the top-level array directly and is
	// passed through unchanged; several files have their top-level
	// arrays merged into one.
	if len(paths) == 1 {
		return os.ReadFile(paths[0])
	}

	var all []byte
	all = append(all, '[')
	for i, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		trimmed := trimArrayBrackets(b)
		if i > 0 {
			all = append(all, ',')
		}
		all = append(all, trimmed...)
	}
	all = append(all, ']')
	return all, nil
}

// trimArrayBrackets strips a leading '[' and trailing ']' (plus
// surrounding whitespace) so several single-file arrays can be
// concatenated into one combined top-level array.
func trimArrayBrackets(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	if start < end && b[start] == '[' {
		start++
	}
	if end > start && b[end-1] == ']' {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
