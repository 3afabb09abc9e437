// Package ics parses public iCalendar feeds into Event records. School
// sites frequently embed a Google Calendar widget instead of rendering
// markup; the widget's calendar id resolves to a public ICS feed that is
// far more reliable than scraping the rendered page.
package ics

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/eventharvest/eventharvest/internal/dateparse"
	"github.com/eventharvest/eventharvest/internal/event"
)

// FeedURL resolves a Google Calendar id to its public ICS feed URL.
func FeedURL(calendarID string) string {
	return fmt.Sprintf("https://calendar.google.com/calendar/ical/%s/public/basic.ics",
		url.PathEscape(calendarID))
}

// FeedOptions carries the source context attached to parsed events.
type FeedOptions struct {
	VenueLabel string
	SourceName string
	SourceKind event.SourceKind
	Location   *time.Location
}

// ParseFeed converts an ICS payload into events. Individual VEVENTs that
// lack a summary or start date are skipped; a malformed calendar as a
// whole is an error.
func ParseFeed(body []byte, opts FeedOptions) ([]event.Event, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("parsing ICS feed: empty body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing ICS feed: %w", err)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var events []event.Event
	for _, ve := range cal.Events() {
		ev, ok := fromVEvent(ve, opts, loc)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func fromVEvent(ve *ical.VEvent, opts FeedOptions, loc *time.Location) (event.Event, bool) {
	var title, description, location, link string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = strings.TrimSpace(p.Value)
	}
	if title == "" {
		return event.Event{}, false
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		description = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		location = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		link = strings.TrimSpace(p.Value)
	}

	start, err := ve.GetStartAt()
	if err != nil || start.IsZero() {
		return event.Event{}, false
	}
	end, _ := ve.GetEndAt()

	spec := buildSpec(ve, start, end, loc)

	ev := event.Event{
		Title:       title,
		Occurs:      spec,
		VenueLabel:  opts.VenueLabel,
		Description: description,
		LinkURL:     link,
		SourceName:  opts.SourceName,
		SourceKind:  opts.SourceKind,
	}
	if ev.Description == "" && location != "" {
		ev.Description = location
	}
	return ev, true
}

// buildSpec maps VEVENT timing to an occurrence spec. All-day DTEND is
// exclusive in iCalendar, so a one-day event has end = start+1d and a
// multi-day event becomes an inclusive range ending the day before DTEND.
func buildSpec(ve *ical.VEvent, start, end time.Time, loc *time.Location) dateparse.Spec {
	if isAllDay(ve) {
		startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		if !end.IsZero() {
			lastDay := end.AddDate(0, 0, -1)
			if lastDay.After(start) {
				endDay := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 0, 0, 0, 0, loc)
				return dateparse.Range(startDay, endDay, dateparse.FormatRange(startDay, endDay))
			}
		}
		return dateparse.Spec{Kind: dateparse.KindDate, Start: startDay, Raw: startDay.Format("2006-01-02")}
	}
	localized := start.In(loc)
	return dateparse.Spec{Kind: dateparse.KindDateTime, Start: localized, Raw: localized.Format(time.RFC3339)}
}

// isAllDay detects VALUE=DATE starts, or bare YYYYMMDD values with no
// time component.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}
