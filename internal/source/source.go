package source

import (
	"context"
	"fmt"
	"time"

	"github.com/eventharvest/eventharvest/internal/event"
)

// Window is the inclusive date range a harvest covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow returns today through daysAhead days out, in loc. Today
// is included from midnight so an event later the same day survives the
// filter.
func DefaultWindow(now time.Time, daysAhead int, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, daysAhead)}
}

// Request carries the per-harvest parameters shared by all adapters.
type Request struct {
	Location string
	Window   Window
}

// Result is one adapter's harvest outcome. Success is false only for a
// transport or configuration failure; zero events from a healthy source
// is a successful result.
type Result struct {
	Success     bool          `json:"success"`
	Events      []event.Event `json:"events"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Err         string        `json:"error,omitempty"`
}

func (r *Result) diag(format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

func failure(err error) Result {
	return Result{Success: false, Err: err.Error()}
}

// Adapter harvests one configured source.
type Adapter interface {
	Name() string
	Harvest(ctx context.Context, req Request) Result
}

// FilterWindow keeps events whose occurrence intersects the window plus
// all date-unparsed events, preserving order. Ranged occurrences pass
// when any covered day is inside the window. Comparison is at day
// resolution so a timed event on the window's last day still passes.
func FilterWindow(events []event.Event, w Window) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if ev.Occurs.Unparsed() {
			out = append(out, ev)
			continue
		}
		start := dayStart(ev.Occurs.Date())
		end := start
		if !ev.Occurs.End.IsZero() {
			end = dayStart(ev.Occurs.End)
		}
		if end.Before(w.Start) || start.After(w.End) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// dayStart truncates an instant to midnight in its own zone.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
