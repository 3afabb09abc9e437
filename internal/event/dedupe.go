package event

import (
	"github.com/eventharvest/eventharvest/internal/dateparse"
)

// Dedupe removes duplicate events while preserving first-appearance
// order. Two events are duplicates when their identity keys match, or
// when they share a link URL and one title is just a restatement of a
// date. In the date-title case the representative keeps the descriptive
// title and adopts the sibling's parsed date if its own failed to parse.
//
// Dedupe is idempotent: running it on its own output returns the same
// slice.
func Dedupe(events []Event) []Event {
	out := make([]Event, 0, len(events))
	byIdentity := make(map[string]int)
	byLink := make(map[string]int)

	for _, ev := range events {
		id := ev.Identity()
		if i, ok := byIdentity[id]; ok {
			mergeDuplicate(&out[i], ev)
			continue
		}

		link := CanonicalURL(ev.LinkURL)
		if link != "" {
			if i, ok := byLink[link]; ok && dateTitlePair(out[i], ev) {
				keepBetterTitle(&out[i], ev)
				// The kept title may have changed, so register the new
				// identity too or later copies would slip through.
				byIdentity[out[i].Identity()] = i
				continue
			}
		}

		byIdentity[id] = len(out)
		if link != "" {
			if _, ok := byLink[link]; !ok {
				byLink[link] = len(out)
			}
		}
		out = append(out, ev)
	}
	return out
}

// mergeDuplicate folds a dropped identity-duplicate into its
// representative, filling fields the representative is missing.
func mergeDuplicate(kept *Event, dup Event) {
	if kept.DateUnparsed && !dup.DateUnparsed {
		kept.Occurs = dup.Occurs
		kept.DateUnparsed = false
	}
	if kept.Description == "" {
		kept.Description = dup.Description
	}
	if kept.LinkURL == "" {
		kept.LinkURL = dup.LinkURL
	}
}

// dateTitlePair reports whether two same-link events differ only in that
// one of the titles reads like a date. Both titles looking like dates,
// or neither, is not a pair worth collapsing.
func dateTitlePair(a, b Event) bool {
	return dateparse.LooksLikeDate(a.Title) != dateparse.LooksLikeDate(b.Title)
}

// keepBetterTitle makes sure the kept representative carries the
// descriptive title and the best available date.
func keepBetterTitle(kept *Event, dup Event) {
	if dateparse.LooksLikeDate(kept.Title) && !dateparse.LooksLikeDate(dup.Title) {
		kept.Title = dup.Title
	}
	mergeDuplicate(kept, dup)
}
