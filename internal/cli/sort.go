package cli

import (
	"sort"
	"strings"

	"github.com/eventharvest/eventharvest/internal/event"
)

// sortEvents orders events by date ascending, with date-unparsed events
// last; ties break on title.
func sortEvents(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return compareByDate(events[i], events[j])
	})
}

// compareByDate reports whether event i should come before event j.
func compareByDate(i, j event.Event) bool {
	iParsed := !i.Occurs.Unparsed()
	jParsed := !j.Occurs.Unparsed()

	if iParsed && jParsed {
		di, dj := i.Occurs.Date(), j.Occurs.Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return strings.ToLower(i.Title) < strings.ToLower(j.Title)
	}
	if iParsed != jParsed {
		return iParsed
	}
	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
