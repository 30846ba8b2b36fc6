package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/slide-scroller/overlay/internal/lifecycle"
	"github.com/slide-scroller/overlay/internal/models"
)

const restartTimeout = 5 * time.Second

func (a *app) runLaunch(args []string) int {
	fs := a.newFlagSet("launch", "launch")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	return a.launch()
}

func (a *app) launch() int {
	if pid, running := a.pid.Running(); running {
		fmt.Fprintf(a.out, "Overlay is already running (PID: %d)\n", pid)
		return 0
	}

	logFile, err := os.OpenFile(a.cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return a.fail(fmt.Errorf("opening log file: %w", err))
	}
	defer logFile.Close()

	cmd := exec.Command(a.binary)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = lifecycle.Detach()
	if err := cmd.Start(); err != nil {
		return a.fail(fmt.Errorf("launching %s: %w", a.binary, err))
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Launched overlay (PID: %d)\n", pid)
	fmt.Fprintf(a.out, "Logs redirected to %s\n", a.cfg.LogPath())
	return 0
}

func (a *app) runClose(args []string) int {
	fs := a.newFlagSet("close", "close")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	pid, running := a.pid.Running()
	if !running {
		fmt.Fprintln(a.out, "Overlay is not running.")
		return 0
	}
	if err := a.stop(pid); err != nil {
		return a.fail(fmt.Errorf("closing overlay: %w", err))
	}
	fmt.Fprintf(a.out, "Sent close signal to overlay (PID: %d)\n", pid)
	return 0
}

// stop asks the overlay to save its state and exit through the control
// server, and signals the process when the server cannot be reached.
func (a *app) stop(pid int) error {
	resp, err := a.client.Post(strings.TrimRight(a.baseURL, "/")+"/api/shutdown", "application/json", nil)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusAccepted {
			return nil
		}
	}
	return lifecycle.Terminate(pid)
}

func (a *app) runGhost(args []string) int {
	fs := a.newFlagSet("ghost", "ghost")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	var enabled bool
	err := a.store.Update(func(doc *models.Document) error {
		doc.Global.ClickThrough = !doc.Global.ClickThrough
		enabled = doc.Global.ClickThrough
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Ghost mode (click-through) set to: %t\n", enabled)

	pid, running := a.pid.Running()
	if !running {
		return 0
	}

	fmt.Fprintln(a.out, "Restarting overlay to apply ghost mode...")
	if err := a.stop(pid); err != nil {
		return a.fail(fmt.Errorf("closing overlay: %w", err))
	}
	if !lifecycle.WaitExit(context.Background(), pid, restartTimeout) {
		fmt.Fprintln(a.errOut, "Timed out waiting for overlay to close.")
	}
	return a.launch()
}
