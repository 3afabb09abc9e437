package event

import (
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/eventharvest/eventharvest/internal/dateparse"
	"github.com/eventharvest/eventharvest/internal/extract"
)

// maxDescriptionLen bounds descriptions so one runaway selector match
// can't bloat the output.
const maxDescriptionLen = 500

// NormalizeOptions carries the per-source context the normalizer needs:
// where the raw fields came from and how to interpret bare dates.
type NormalizeOptions struct {
	PageURL    string
	VenueLabel string
	SourceName string
	SourceKind SourceKind
	RefYear    int
	Location   *time.Location
}

// Normalize converts one set of raw extracted fields into an Event.
// It returns false when the fields cannot yield a valid event (no title
// after cleaning). Date parse failures do not reject the event; the
// record is flagged DateUnparsed and kept.
func Normalize(raw extract.RawFields, opts NormalizeOptions) (Event, bool) {
	title := cleanText(raw[extract.RoleTitle])
	if title == "" {
		return Event{}, false
	}

	dateText := cleanText(raw[extract.RoleDate])
	if timeText := cleanText(raw[extract.RoleTime]); timeText != "" && dateText != "" {
		// Combine separate date and time cells so the annotation parser
		// sees them as one string.
		dateText = dateText + " @" + timeText
	}

	refYear := opts.RefYear
	if refYear == 0 {
		refYear = time.Now().Year()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	spec := dateparse.Parse(dateText, refYear, loc)

	ev := Event{
		Title:        title,
		Occurs:       spec,
		VenueLabel:   opts.VenueLabel,
		Description:  truncate(cleanText(raw[extract.RoleDescription]), maxDescriptionLen),
		LinkURL:      resolveURL(opts.PageURL, raw[extract.RoleURL]),
		SourceName:   opts.SourceName,
		SourceKind:   opts.SourceKind,
		DateUnparsed: spec.Kind == dateparse.KindUnparsed,
	}
	if locText := cleanText(raw[extract.RoleLocation]); locText != "" && ev.Description == "" {
		ev.Description = truncate(locText, maxDescriptionLen)
	}
	return ev, true
}

// NormalizeAll maps raw field sets to events, dropping only records that
// cannot produce a valid event. Order is preserved.
func NormalizeAll(raws []extract.RawFields, opts NormalizeOptions) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		if ev, ok := Normalize(raw, opts); ok {
			events = append(events, ev)
		}
	}
	return events
}

func cleanText(s string) string {
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// resolveURL makes a relative href absolute against the page it was
// extracted from. Hrefs that cannot be resolved pass through unchanged
// so the raw value is still visible downstream.
func resolveURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || pageURL == "" {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
