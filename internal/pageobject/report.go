package pageobject

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"dashnav/internal/nav"
)

// ErrElementNotFound means a lookup completed without a match.
var ErrElementNotFound = errors.New("element not found")

// StepError identifies the sidebar entry a walk failed on.
type StepError struct {
	Path      []string
	Component string // expected marker, empty for branch clicks
	Err       error
}

func (e *StepError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("navigation %s: expected %s: %v", nav.PathString(e.Path), e.Component, e.Err)
	}
	return fmt.Sprintf("navigation %s: %v", nav.PathString(e.Path), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Step is one click in the walk.
type Step struct {
	Path      []string
	Component string
	Branch    bool
	Checked   bool // component presence was asserted
	Duration  time.Duration
}

// Report collects the steps of one walk.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Steps    []Step
	Err      error
}

// Passed reports whether the walk completed without error.
func (r *Report) Passed() bool {
	return r.Err == nil
}

// Clicks returns the label path of every click, in order.
func (r *Report) Clicks() []string {
	out := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, nav.PathString(s.Path))
	}
	return out
}

// Unchecked returns leaf steps whose component was not asserted.
func (r *Report) Unchecked() []Step {
	var out []Step
	for _, s := range r.Steps {
		if !s.Branch && !s.Checked {
			out = append(out, s)
		}
	}
	return out
}

// WriteText prints the report as an aligned table.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "MENU\tCOMPONENT\tSTATUS\tTIME\n")
	for _, s := range r.Steps {
		status := "ok"
		switch {
		case s.Branch:
			status = "expanded"
		case !s.Checked:
			status = "unchecked"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strings.Join(s.Path, " > "), dash(s.Component), status, s.Duration.Round(time.Millisecond))
	}
	if r.Err != nil {
		fmt.Fprintf(tw, "\nFAILED\t%v\n", r.Err)
	} else {
		fmt.Fprintf(tw, "\nPASSED\t%d steps in %s\n", len(r.Steps), r.Finished.Sub(r.Started).Round(time.Millisecond))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
