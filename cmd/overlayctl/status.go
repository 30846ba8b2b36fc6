package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/slide-scroller/overlay/internal/overlay"
)

func (a *app) runStatus(args []string) int {
	fs := a.newFlagSet("status", "status [--json]")
	raw := fs.Bool("json", false, "print the raw JSON snapshot")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	resp, err := a.client.Get(strings.TrimRight(a.baseURL, "/") + "/api/status")
	if err != nil {
		if pid, running := a.pid.Running(); running {
			return a.fail(fmt.Errorf("overlay (PID %d) is running but its control server is unreachable: %w", pid, err))
		}
		fmt.Fprintln(a.out, "Overlay is not running.")
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return a.fail(fmt.Errorf("control server returned %d: %s", resp.StatusCode, apiErr.Message))
	}

	var st overlay.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return a.fail(fmt.Errorf("decoding status: %w", err))
	}

	if *raw {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return exitOn(a, enc.Encode(st))
	}

	fmt.Fprintf(a.out, "class:        %s\n", st.ClassID)
	fmt.Fprintf(a.out, "state:        %s\n", st.State)
	fmt.Fprintf(a.out, "current:      %d\n", st.Current)
	if st.LockedSlide >= 0 {
		fmt.Fprintf(a.out, "locked:       %d\n", st.LockedSlide)
	}
	fmt.Fprintf(a.out, "badge:        %s\n", st.Badge.Text)
	fmt.Fprintf(a.out, "geometry:     %dx%d at %d,%d\n", st.Geometry.Width, st.Geometry.Height, st.Geometry.X, st.Geometry.Y)
	fmt.Fprintf(a.out, "clickthrough: %t\n", st.ClickThrough)
	fmt.Fprintf(a.out, "dock:         %s\n", st.Dock)
	fmt.Fprintf(a.out, "slides:       %d\n", len(st.Slides))
	for _, s := range st.Slides {
		marker := " "
		if s.Index == st.Current {
			marker = "*"
		}
		fmt.Fprintf(a.out, "  %s[%d] %s (%ds)\n", marker, s.Index, s.Type, s.Duration)
	}
	return 0
}

func exitOn(a *app, err error) int {
	if err != nil {
		return a.fail(err)
	}
	return 0
}
