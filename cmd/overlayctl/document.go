package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slide-scroller/overlay/internal/models"
	"github.com/slide-scroller/overlay/internal/overlay"
)

var errOutOfRange = errors.New("index out of range")

func outOfRange(idx int) error {
	return fmt.Errorf("%w: %d", errOutOfRange, idx)
}

// timestamp is the fractional Unix time used for one-shot markers.
func (a *app) timestamp() float64 {
	return float64(a.now().UnixNano()) / float64(time.Second)
}

func (a *app) runBorder(args []string) int {
	action, rest, ok := a.subcommand("border", args, "set", "radius", "animation", "show")
	if !ok {
		return 2
	}

	switch action {
	case "set", "radius":
		fs := a.newFlagSet("border "+action, "border "+action+" --val <number>")
		val := fs.Float64("val", 0, "value to set")
		if code, ok := parse(fs, rest); !ok {
			return code
		}
		if !isSet(fs, "val") {
			fmt.Fprintln(a.errOut, "--val is required")
			return 2
		}
		err := a.store.Update(func(doc *models.Document) error {
			if action == "set" {
				doc.Global.Visuals.RoughSlide = *val
			} else {
				doc.Global.Visuals.BorderRadius = *val
			}
			return nil
		})
		if err != nil {
			return a.fail(err)
		}
		if action == "set" {
			fmt.Fprintf(a.out, "Border roughness set to: %g\n", *val)
		} else {
			fmt.Fprintf(a.out, "Border radius set to: %g\n", *val)
		}

	case "animation":
		fs := a.newFlagSet("border animation", "border animation --state on|off")
		state := fs.String("state", "", "on or off")
		if code, ok := parse(fs, rest); !ok {
			return code
		}
		s := strings.ToLower(*state)
		if s != "on" && s != "off" {
			fmt.Fprintln(a.errOut, "--state must be on or off")
			return 2
		}
		enabled := s == "on"
		err := a.store.Update(func(doc *models.Document) error {
			doc.Global.Visuals.AnimationEnabled = enabled
			return nil
		})
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintf(a.out, "Border animation set to: %t\n", enabled)

	case "show":
		doc, err := a.store.Load()
		if err != nil {
			return a.fail(err)
		}
		v := doc.Global.Visuals
		fmt.Fprintf(a.out, "Current roughness: %g\n", v.RoughSlide)
		fmt.Fprintf(a.out, "Current radius: %g\n", v.BorderRadius)
		fmt.Fprintf(a.out, "Animation enabled: %t\n", v.AnimationEnabled)
	}
	return 0
}

func (a *app) runBar(args []string) int {
	action, rest, ok := a.subcommand("bar", args, "add", "set", "rm")
	if !ok {
		return 2
	}

	fs := a.newFlagSet("bar "+action, "bar "+action+" [--id <index>] [--val <number>]")
	id := fs.Int("id", -1, "bar index")
	val := fs.Float64("val", 0, "bar value")
	if code, ok := parse(fs, rest); !ok {
		return code
	}
	if action != "rm" && !isSet(fs, "val") {
		fmt.Fprintln(a.errOut, "--val is required")
		return 2
	}
	if action != "add" && !isSet(fs, "id") {
		fmt.Fprintln(a.errOut, "--id is required")
		return 2
	}

	var msg string
	err := a.store.Update(func(doc *models.Document) error {
		cls := doc.EnsureActiveClass()
		switch action {
		case "add":
			cls.Bars = append(cls.Bars, *val)
			msg = fmt.Sprintf("Added bar value: %g", *val)
		case "set":
			if *id < 0 || *id >= len(cls.Bars) {
				return outOfRange(*id)
			}
			cls.Bars[*id] = *val
			msg = fmt.Sprintf("Set bar %d to %g", *id, *val)
		case "rm":
			if *id < 0 || *id >= len(cls.Bars) {
				return outOfRange(*id)
			}
			removed := cls.Bars[*id]
			cls.Bars = append(cls.Bars[:*id], cls.Bars[*id+1:]...)
			msg = fmt.Sprintf("Removed bar %d (val: %g)", *id, removed)
		}
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, msg)
	return 0
}

// slideFlags are the content options shared by slide add and slide edit.
type slideFlags struct {
	duration *int
	url      *string
	zoom     *float64
	title    *string
	content  *string
	date     *string
}

func addSlideFlags(fs *flag.FlagSet) slideFlags {
	return slideFlags{
		duration: fs.Int("duration", models.DefaultSlideDuration, "seconds on screen"),
		url:      fs.String("url", "", "page to display (web)"),
		zoom:     fs.Float64("zoom", 1.0, "page zoom (web)"),
		title:    fs.String("title", "", "header (text, deadline)"),
		content:  fs.String("content", "", "body (text)"),
		date:     fs.String("date", "", "target date YYYY-MM-DD or DD/MM/YYYY (deadline)"),
	}
}

func (a *app) runSlide(args []string) int {
	action, rest, ok := a.subcommand("slide", args, "lock", "unlock", "rm", "add", "edit", "list")
	if !ok {
		return 2
	}

	switch action {
	case "list":
		return a.slideList(rest)
	case "add":
		return a.slideAdd(rest)
	case "edit":
		return a.slideEdit(rest)
	case "unlock":
		fs := a.newFlagSet("slide unlock", "slide unlock")
		if code, ok := parse(fs, rest); !ok {
			return code
		}
		err := a.store.Update(func(doc *models.Document) error {
			doc.EnsureActiveClass().State.LockedSlide = models.Unlocked
			return nil
		})
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintln(a.out, "Unlocked slides")
		return 0
	}

	fs := a.newFlagSet("slide "+action, "slide "+action+" --id <index>")
	id := fs.Int("id", -1, "slide index")
	if code, ok := parse(fs, rest); !ok {
		return code
	}
	if !isSet(fs, "id") {
		fmt.Fprintln(a.errOut, "--id is required")
		return 2
	}

	var msg string
	err := a.store.Update(func(doc *models.Document) error {
		cls := doc.EnsureActiveClass()
		if *id < 0 || *id >= len(cls.ActiveSlides) {
			return outOfRange(*id)
		}
		switch action {
		case "lock":
			cls.State.LockedSlide = *id
			msg = fmt.Sprintf("Locked on slide %d", *id)
		case "rm":
			removed := cls.ActiveSlides[*id]
			cls.ActiveSlides = append(cls.ActiveSlides[:*id], cls.ActiveSlides[*id+1:]...)
			msg = fmt.Sprintf("Removed slide %d (%s)", *id, removed.Type())
		}
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, msg)
	return 0
}

func (a *app) slideAdd(args []string) int {
	fs := a.newFlagSet("slide add", "slide add --type web|text|deadline|chart [options]")
	slideType := fs.String("type", "", "web, text, deadline or chart")
	opts := addSlideFlags(fs)
	if code, ok := parse(fs, args); !ok {
		return code
	}

	s := models.NewSlideConfig(*slideType, *opts.duration)
	switch *slideType {
	case models.SlideTypeWeb:
		s["url"] = orDefault(*opts.url, "about:blank")
		if isSet(fs, "zoom") {
			s["zoom"] = *opts.zoom
		}
	case models.SlideTypeText:
		s["content"] = orDefault(*opts.content, "No Content")
		s["title"] = orDefault(*opts.title, "Info")
	case models.SlideTypeDeadline:
		s["date"] = orDefault(*opts.date, a.now().Format("2006-01-02T15:04:05.000000"))
		s["title"] = orDefault(*opts.title, "Deadline")
	case models.SlideTypeChart:
	default:
		fmt.Fprintf(a.errOut, "--type must be one of web, text, deadline, chart (got %q)\n", *slideType)
		return 2
	}

	err := a.store.Update(func(doc *models.Document) error {
		cls := doc.EnsureActiveClass()
		cls.ActiveSlides = append(cls.ActiveSlides, s)
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Added new %s slide.\n", *slideType)
	return 0
}

func (a *app) slideEdit(args []string) int {
	fs := a.newFlagSet("slide edit", "slide edit --id <index> [options]")
	id := fs.Int("id", -1, "slide index")
	opts := addSlideFlags(fs)
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if !isSet(fs, "id") {
		fmt.Fprintln(a.errOut, "--id is required")
		return 2
	}

	err := a.store.Update(func(doc *models.Document) error {
		cls := doc.EnsureActiveClass()
		if *id < 0 || *id >= len(cls.ActiveSlides) {
			return outOfRange(*id)
		}
		s := cls.ActiveSlides[*id]
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "duration":
				s["duration"] = *opts.duration
			case "url":
				s["url"] = *opts.url
			case "zoom":
				s["zoom"] = *opts.zoom
			case "content":
				s["content"] = *opts.content
			case "title":
				s["title"] = *opts.title
			case "date":
				s["date"] = *opts.date
			}
		})
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Edited slide %d.\n", *id)
	return 0
}

func (a *app) slideList(args []string) int {
	fs := a.newFlagSet("slide list", "slide list")
	if code, ok := parse(fs, args); !ok {
		return code
	}

	doc, err := a.store.Load()
	if err != nil {
		return a.fail(err)
	}
	cls := doc.ActiveClass()
	if cls == nil || len(cls.ActiveSlides) == 0 {
		fmt.Fprintln(a.out, "No slides configured.")
		return 0
	}

	fmt.Fprintf(a.out, "Total slides: %d\n\n", len(cls.ActiveSlides))
	for i, s := range cls.ActiveSlides {
		typ := s.Type()
		if typ == "" {
			typ = "unknown"
		}
		locked := ""
		if cls.State.LockedSlide == i {
			locked = " [LOCKED]"
		}
		fmt.Fprintf(a.out, "[%d] %s (%ds)%s\n", i, strings.ToUpper(typ), s.Duration(), locked)

		switch typ {
		case models.SlideTypeWeb:
			fmt.Fprintf(a.out, "    - URL: %s\n", s.String("url", ""))
		case models.SlideTypeText:
			fmt.Fprintf(a.out, "    - Title: %s\n", s.String("title", ""))
			fmt.Fprintf(a.out, "    - Content: %s\n", s.String("content", ""))
		case models.SlideTypeDeadline:
			fmt.Fprintf(a.out, "    - Title: %s\n", s.String("title", ""))
			fmt.Fprintf(a.out, "    - Date: %s\n", s.String("date", ""))
		}
		fmt.Fprintln(a.out)
	}
	return 0
}

func (a *app) runEvent(args []string) int {
	action, rest, ok := a.subcommand("event", args, models.EventIncrement)
	if !ok {
		return 2
	}

	fs := a.newFlagSet("event "+action, "event inc --bar <index> [--val <number>]")
	bar := fs.Int("bar", 0, "bar index")
	val := fs.Float64("val", 1, "amount to add")
	if code, ok := parse(fs, rest); !ok {
		return code
	}

	ev := &models.Event{
		Type:  action,
		Ts:    a.timestamp(),
		ID:    uuid.New().String(),
		BarID: *bar,
		Val:   *val,
	}
	err := a.store.Update(func(doc *models.Document) error {
		doc.Global.LastEvent = ev
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Queued %s event %s (bar %d, +%g)\n", ev.Type, ev.ID, ev.BarID, ev.Val)
	return 0
}

func (a *app) runDock(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.errOut, "Usage: overlayctl dock <tl|tr|bl|br> [--margin <px>]")
		return 2
	}
	pos := strings.ToLower(args[0])
	switch pos {
	case overlay.DockTopLeft, overlay.DockTopRight, overlay.DockBottomLeft, overlay.DockBottomRight:
	default:
		fmt.Fprintf(a.errOut, "unknown dock position %q, expected tl, tr, bl or br\n", args[0])
		return 2
	}

	fs := a.newFlagSet("dock", "dock <tl|tr|bl|br> [--margin <px>]")
	margin := fs.Int("margin", models.DefaultDockMargin, "distance from the screen edge")
	if code, ok := parse(fs, args[1:]); !ok {
		return code
	}

	err := a.store.Update(func(doc *models.Document) error {
		if isSet(fs, "margin") {
			m := *margin
			doc.Global.DockMargin = &m
		}
		doc.Global.DockAction = &models.DockAction{Pos: pos, Ts: a.timestamp()}
		return nil
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Docking overlay to %s\n", pos)
	return 0
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
