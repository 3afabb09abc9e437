package dateparse

import (
	"regexp"
	"strings"
	"time"
)

// layout describes one date template. Layouts are tried in order and the
// first match wins, so more specific templates come first.
type layout struct {
	format   string
	hasYear  bool
	hasTime  bool
	instant  bool // machine timestamps subject to the midnight all-day sentinel
	monthDay bool // month-and-year-only layouts resolve to the first of the month
}

var layouts = []layout{
	// ISO and timestamp forms
	{format: time.RFC3339, hasYear: true, hasTime: true, instant: true},
	{format: "2006-01-02T15:04:05Z", hasYear: true, hasTime: true, instant: true},
	{format: "2006-01-02 15:04:05", hasYear: true, hasTime: true},
	{format: "2006-01-02", hasYear: true},
	// Slash and dash forms, US order first
	{format: "1/2/2006 3:04 PM", hasYear: true, hasTime: true},
	{format: "1/2/2006", hasYear: true},
	{format: "1-2-2006", hasYear: true},
	{format: "2/1/2006", hasYear: true},
	{format: "1/2/06", hasYear: true},
	// Long and abbreviated month-day-year with optional time
	{format: "January 2, 2006 at 3:04 PM", hasYear: true, hasTime: true},
	{format: "Jan 2, 2006 at 3:04 PM", hasYear: true, hasTime: true},
	{format: "Monday, January 2, 2006", hasYear: true},
	{format: "Mon, Jan 2, 2006", hasYear: true},
	{format: "January 2, 2006", hasYear: true},
	{format: "Jan 2, 2006", hasYear: true},
	{format: "January 2 2006", hasYear: true},
	{format: "Jan 2 2006", hasYear: true},
	// Day-first long forms ("9 November 2025")
	{format: "2 January 2006", hasYear: true},
	{format: "2 Jan 2006", hasYear: true},
	// Year-less variants, resolved against the reference year
	{format: "Monday, January 2"},
	{format: "Mon, Jan 2 at 3:04 PM", hasTime: true},
	{format: "Mon, Jan 2"},
	{format: "January 2"},
	{format: "Jan 2"},
	{format: "2 January"},
	{format: "2 Jan"},
	{format: "1/2"},
	{format: "1-2"},
	// Month-and-year only, meaning the first of that month
	{format: "January 2006", hasYear: true, monthDay: true},
	{format: "Jan 2006", hasYear: true, monthDay: true},
}

var (
	prefixRe     = regexp.MustCompile(`^[A-Za-z]{2,16}:\s+`)
	rangeDigitRe = regexp.MustCompile(`^(\d{1,2})\s*[\x{2013}\x{2014}]\s*\d{1,2}\s+(\p{L}+\s+\d{4})$`)
	cleanupRe    = regexp.MustCompile(`[^\w\s/:,+-]`)
	leadDigitRe  = regexp.MustCompile(`^\d{1,2}\b`)
	septRe       = regexp.MustCompile(`(?i)\bsept\b`)
	spaceRe      = regexp.MustCompile(`\s+`)
	dotDateRe    = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2,4})\b`)
	fracSecRe    = regexp.MustCompile(`(:\d{2})\.\d+`)
	timeOfDayRe  = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?\s*(?:([ap])\.?\s*m?\.?)?\s*$`)

	weekdayRe   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)\b`)
	monthRe     = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\b`)
	slashDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(/\d{2,4})?\b`)
	clockRe     = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}|\d\s*[ap]\.?m\.?|@)`)
)

// Parse interprets free-text date spelling into a Spec. It is total: every
// input yields either a parsed value or an unparsed Spec carrying the
// original text. Year-less dates resolve against refYear; machine
// timestamps with a real time component are localized to loc, while
// midnight timestamps are kept as all-day dates on the written day so a
// timezone conversion cannot shift them.
func Parse(text string, refYear int, loc *time.Location) Spec {
	raw := text
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Spec{Kind: KindUnparsed, Raw: raw}
	}

	// "Deadline: Oct 1" style prefixes carry no calendar information.
	text = prefixRe.ReplaceAllString(text, "")

	// A trailing "@6 p.m." annotation supplies the time component. A
	// malformed annotation costs only the time, never the date.
	var annotated struct {
		ok           bool
		hour, minute int
	}
	if at := strings.LastIndex(text, "@"); at > 0 {
		if h, m, ok := parseTimeOfDay(text[at+1:]); ok {
			annotated.ok, annotated.hour, annotated.minute = true, h, m
		}
		text = strings.TrimSpace(text[:at])
	}

	text = splitRange(text)
	// Fractional seconds add nothing at calendar resolution and break
	// the timestamp templates.
	text = fracSecRe.ReplaceAllString(text, "$1")
	// "4.4.26" style dotted dates survive cleanup as slash dates.
	text = dotDateRe.ReplaceAllString(text, "$1/$2/$3")
	text = strings.TrimSpace(cleanupRe.ReplaceAllString(text, ""))
	// Four-letter "Sept" has no Go layout verb.
	text = septRe.ReplaceAllString(text, "Sep")
	text = spaceRe.ReplaceAllString(text, " ")
	text = strings.Trim(text, ",- ")
	if text == "" {
		return Spec{Kind: KindUnparsed, Raw: raw}
	}

	for _, l := range layouts {
		t, err := time.ParseInLocation(l.format, text, loc)
		if err != nil {
			continue
		}
		if !l.hasYear || t.Year() == 0 {
			t = time.Date(refYear, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		}
		if l.monthDay {
			t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		}
		if l.hasTime {
			if l.instant {
				return normalizeInstant(t, raw, loc)
			}
			return Spec{Kind: KindDateTime, Start: t, Raw: raw}
		}
		if annotated.ok {
			t = time.Date(t.Year(), t.Month(), t.Day(), annotated.hour, annotated.minute, 0, 0, loc)
			return Spec{Kind: KindDateTime, Start: t, Raw: raw}
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return Spec{Kind: KindDate, Start: t, Raw: raw}
	}

	return Spec{Kind: KindUnparsed, Raw: raw}
}

// normalizeInstant applies the midnight sentinel rule for machine
// timestamps: a wall clock of exactly midnight marks an all-day date, so
// the calendar day is read from the timestamp as written instead of being
// converted between zones. Timestamps carrying a real time component are
// localized to loc.
func normalizeInstant(t time.Time, raw string, loc *time.Location) Spec {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return Spec{Kind: KindDate, Start: d, Raw: raw}
	}
	return Spec{Kind: KindDateTime, Start: t.In(loc), Raw: raw}
}

// splitRange reduces a textual date range to its left-hand date. Ranges
// written inside a single field ("3–5 October 2025") are a display
// convenience of the source; real ranges are reintroduced later by the
// consolidator from discrete records.
func splitRange(text string) string {
	if m := rangeDigitRe.FindStringSubmatch(text); m != nil {
		return m[1] + " " + m[2]
	}
	for _, sep := range []string{"–", "—", " - "} {
		if i := strings.Index(text, sep); i > 0 {
			left := strings.TrimSpace(text[:i])
			right := strings.TrimSpace(text[i+len(sep):])
			if looksLikeDatePart(right) {
				return left
			}
		}
	}
	return text
}

// looksLikeDatePart reports whether text plausibly begins a second date,
// which is what distinguishes "Aug 31 - Sep 2" from a hyphenated title.
func looksLikeDatePart(text string) bool {
	return monthRe.MatchString(text) || slashDateRe.MatchString(text) ||
		leadDigitRe.MatchString(text)
}

// parseTimeOfDay interprets "6 p.m.", "6:30 PM", "11am", and 24-hour
// "18:00" style annotations.
func parseTimeOfDay(text string) (hour, minute int, ok bool) {
	m := timeOfDayRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	hour = atoi(m[1])
	if m[2] != "" {
		minute = atoi(m[2])
	}
	if minute > 59 {
		return 0, 0, false
	}
	if m[3] == "" {
		// No am/pm marker: accept only full 24-hour clock values; a
		// bare "@6" is too ambiguous to trust.
		if m[2] == "" || hour > 23 {
			return 0, 0, false
		}
		return hour, minute, true
	}
	if hour > 12 {
		return 0, 0, false
	}
	if strings.EqualFold(m[3], "p") && hour < 12 {
		hour += 12
	}
	if strings.EqualFold(m[3], "a") && hour == 12 {
		hour = 0
	}
	return hour, minute, true
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// LooksLikeDate reports whether a string reads like a date rather than an
// event name. It requires at least two independent indicators (weekday
// name, month name, numeric slash-date, time-of-day marker) so that titles
// merely mentioning a month are not misclassified. Source markup frequently
// emits the date string as the visually prominent "title" with the real
// name in a caption; dedupe uses this to pick the better representative.
func LooksLikeDate(s string) bool {
	n := 0
	if weekdayRe.MatchString(s) {
		n++
	}
	if monthRe.MatchString(s) {
		n++
	}
	if slashDateRe.MatchString(s) {
		n++
	}
	if clockRe.MatchString(s) {
		n++
	}
	return n >= 2
}
