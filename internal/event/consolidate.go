package event

import (
	"sort"
	"time"

	"github.com/eventharvest/eventharvest/internal/dateparse"
)

// maxRunGapDays is the largest gap between consecutive occurrences that
// still counts as one continuous run. Weekend-spanning school events
// (Friday then Monday) need a gap of 2 to merge.
const maxRunGapDays = 2

// Consolidate merges recurring fragments of the same event into
// date-ranged records. Events sharing a normalized title and venue whose
// dates form a near-continuous run collapse into one event spanning the
// run, with Occurrences recording how many source records were merged.
// Unparsed events and singleton dates pass through unchanged.
//
// Output order follows the first appearance of each group; within a
// group, merged runs appear in date order.
func Consolidate(events []Event) []Event {
	type group struct {
		order  int
		events []Event
	}
	groups := make(map[string]*group)
	var keys []string

	for _, ev := range events {
		if ev.Occurs.Unparsed() {
			// Nothing to merge on; keep the record as-is under a key of
			// its own so output ordering still holds.
			key := "unparsed|" + ev.Identity()
			if g, ok := groups[key]; ok {
				g.events = append(g.events, ev)
			} else {
				groups[key] = &group{order: len(keys), events: []Event{ev}}
				keys = append(keys, key)
			}
			continue
		}
		key := NormalizeTitle(ev.Title) + "|" + ev.VenueLabel
		if g, ok := groups[key]; ok {
			g.events = append(g.events, ev)
		} else {
			groups[key] = &group{order: len(keys), events: []Event{ev}}
			keys = append(keys, key)
		}
	}

	var out []Event
	for _, key := range keys {
		g := groups[key]
		if g.events[0].Occurs.Unparsed() {
			out = append(out, g.events...)
			continue
		}
		out = append(out, mergeRuns(g.events)...)
	}
	return out
}

// mergeRuns sorts one group's events by date and collapses consecutive
// runs with gaps of at most maxRunGapDays into single ranged events.
func mergeRuns(events []Event) []Event {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Occurs.Date().Before(events[j].Occurs.Date())
	})

	var out []Event
	i := 0
	for i < len(events) {
		j := i
		for j+1 < len(events) && gapDays(events[j].Occurs, events[j+1].Occurs) <= maxRunGapDays {
			j++
		}
		if j == i {
			out = append(out, events[i])
		} else {
			out = append(out, mergeRun(events[i:j+1]))
		}
		i = j + 1
	}
	return out
}

// gapDays measures whole days between the end of one occurrence and the
// start of the next.
func gapDays(a, b dateparse.Spec) int {
	end := a.Date()
	if a.Kind == dateparse.KindRange {
		end = a.End
	}
	return int(dayOf(b.Date()).Sub(dayOf(end)).Hours() / 24)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// mergeRun collapses a sorted run into one event. The first record's
// fields win; the occurrence spec widens to cover the whole run.
func mergeRun(run []Event) Event {
	merged := run[0]
	start := run[0].Occurs.Date()
	last := run[len(run)-1].Occurs
	end := last.Date()
	if last.Kind == dateparse.KindRange {
		end = last.End
	}

	merged.Occurs = dateparse.Range(dayOf(start), dayOf(end), dateparse.FormatRange(start, end))
	merged.Occurrences = 0
	for _, ev := range run {
		merged.Occurrences += occurrenceCount(ev)
		if merged.Description == "" {
			merged.Description = ev.Description
		}
		if merged.LinkURL == "" {
			merged.LinkURL = ev.LinkURL
		}
	}
	return merged
}

// occurrenceCount reports how many source records an event represents.
func occurrenceCount(ev Event) int {
	if ev.Occurrences > 0 {
		return ev.Occurrences
	}
	return 1
}

// TotalOccurrences sums the source records represented by a slice of
// events. Consolidate preserves this total.
func TotalOccurrences(events []Event) int {
	n := 0
	for _, ev := range events {
		n += occurrenceCount(ev)
	}
	return n
}
