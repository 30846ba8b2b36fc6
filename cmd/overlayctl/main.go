// Command overlayctl edits the shared slide document and controls the
// overlay process.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/slide-scroller/overlay/internal/config"
	"github.com/slide-scroller/overlay/internal/lifecycle"
	"github.com/slide-scroller/overlay/internal/store"
)

// app carries everything a command touches, so commands can run against an
// in-memory store in tests.
type app struct {
	cfg     *config.AppConfig
	store   store.Store
	pid     *lifecycle.PIDFile
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
	client  *http.Client
	binary  string
	baseURL string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		os.Exit(1)
	}
	fileStore, err := store.NewFileStore(cfg.DocumentPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := &app{
		cfg:     cfg,
		store:   fileStore,
		pid:     lifecycle.NewPIDFile(cfg.PIDPath()),
		out:     os.Stdout,
		errOut:  os.Stderr,
		now:     time.Now,
		client:  &http.Client{Timeout: 3 * time.Second},
		binary:  overlayBinary(),
		baseURL: cfg.BaseURL(),
	}
	os.Exit(a.run(os.Args[1:]))
}

// overlayBinary looks for the daemon next to this executable.
func overlayBinary() string {
	name := "overlay"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func (a *app) run(args []string) int {
	if len(args) < 1 {
		a.usage(a.out)
		return 0
	}

	switch args[0] {
	case "launch":
		return a.runLaunch(args[1:])
	case "close":
		return a.runClose(args[1:])
	case "ghost":
		return a.runGhost(args[1:])
	case "border":
		return a.runBorder(args[1:])
	case "bar":
		return a.runBar(args[1:])
	case "slide":
		return a.runSlide(args[1:])
	case "event":
		return a.runEvent(args[1:])
	case "dock":
		return a.runDock(args[1:])
	case "status":
		return a.runStatus(args[1:])
	case "help", "-h", "--help":
		a.usage(a.out)
		return 0
	default:
		fmt.Fprintf(a.errOut, "Unknown command: %s\n\n", args[0])
		a.usage(a.errOut)
		return 2
	}
}

func (a *app) usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: overlayctl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  launch              Start the overlay detached")
	fmt.Fprintln(w, "  close               Stop the running overlay")
	fmt.Fprintln(w, "  ghost               Toggle click-through and restart the overlay")
	fmt.Fprintln(w, "  status              Show live rotation state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  border set          Set border roughness (--val)")
	fmt.Fprintln(w, "  border radius       Set border radius (--val)")
	fmt.Fprintln(w, "  border animation    Turn border animation on or off (--state)")
	fmt.Fprintln(w, "  border show         Show border settings")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  bar add             Append a bar (--val)")
	fmt.Fprintln(w, "  bar set             Set a bar value (--id --val)")
	fmt.Fprintln(w, "  bar rm              Remove a bar (--id)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  slide list          List configured slides")
	fmt.Fprintln(w, "  slide add           Add a slide (--type web|text|deadline|chart)")
	fmt.Fprintln(w, "  slide edit          Edit a slide (--id)")
	fmt.Fprintln(w, "  slide rm            Remove a slide (--id)")
	fmt.Fprintln(w, "  slide lock          Lock rotation on a slide (--id)")
	fmt.Fprintln(w, "  slide unlock        Resume rotation")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  event inc           Add to a bar and celebrate (--bar --val)")
	fmt.Fprintln(w, "  dock <tl|tr|bl|br>  Snap the overlay to a screen corner")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'overlayctl <command> --help' for command-specific options.")
}

// newFlagSet builds a flag set whose usage prints to errOut.
func (a *app) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() {
		fmt.Fprintf(a.errOut, "Usage: overlayctl %s\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// parse returns an exit code and false when the command should stop.
func parse(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

// subcommand splits "<action> [flags]".
func (a *app) subcommand(cmd string, args []string, actions ...string) (string, []string, bool) {
	if len(args) == 0 {
		fmt.Fprintf(a.errOut, "%s requires an action: %v\n", cmd, actions)
		return "", nil, false
	}
	for _, act := range actions {
		if args[0] == act {
			return act, args[1:], true
		}
	}
	fmt.Fprintf(a.errOut, "unknown %s action %q, expected one of %v\n", cmd, args[0], actions)
	return "", nil, false
}

func (a *app) fail(err error) int {
	fmt.Fprintf(a.errOut, "Error: %v\n", err)
	return 1
}
