package dateparse

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the variants of a Spec.
type Kind int

const (
	// KindUnparsed marks text that matched no known template.
	KindUnparsed Kind = iota
	// KindDate is a single all-day calendar date.
	KindDate
	// KindDateTime is a single instant with a time-of-day component.
	KindDateTime
	// KindRange is an inclusive start/end day range.
	KindRange
)

// Spec is the canonical result of parsing a date string: a single date or
// date-time, a day range, or an explicit unparsed sentinel that preserves
// the original text.
type Spec struct {
	Kind  Kind
	Start time.Time
	End   time.Time // valid only for KindRange; End is never before Start
	Raw   string    // original input, always preserved
}

// Unparsed reports whether the spec carries no parsed calendar value.
func (s Spec) Unparsed() bool {
	return s.Kind == KindUnparsed
}

// Date returns the calendar date represented by the spec (the start date
// for ranges). Zero time for unparsed specs.
func (s Spec) Date() time.Time {
	return s.Start
}

// Range constructs a KindRange spec. Start and end are normalized so the
// inclusive-day invariant end >= start always holds.
func Range(start, end time.Time, raw string) Spec {
	if end.Before(start) {
		start, end = end, start
	}
	return Spec{Kind: KindRange, Start: start, End: end, Raw: raw}
}

// Days returns the inclusive number of days the spec covers. Single dates
// and date-times count as one day; unparsed specs count zero.
func (s Spec) Days() int {
	switch s.Kind {
	case KindDate, KindDateTime:
		return 1
	case KindRange:
		return int(s.End.Sub(s.Start).Hours()/24) + 1
	default:
		return 0
	}
}

// Label renders the spec for display: "Sep 2-5, 2025" for a same-month
// range, "Aug 31 - Sep 2, 2025" across months, "Mon, Sep 8, 2025" for a
// single date, and the raw text when unparsed.
func (s Spec) Label() string {
	switch s.Kind {
	case KindDate:
		return s.Start.Format("Mon, Jan 2, 2006")
	case KindDateTime:
		return s.Start.Format("Mon, Jan 2, 2006 at 3:04 PM")
	case KindRange:
		return FormatRange(s.Start, s.End)
	default:
		return s.Raw
	}
}

// FormatRange renders an inclusive date range. Same-month ranges use the
// short form "Sep 2-5, 2025"; cross-month ranges spell both months.
func FormatRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.Month() == end.Month() {
		if start.Day() == end.Day() {
			return start.Format("Mon, Jan 2, 2006")
		}
		return fmt.Sprintf("%s-%d, %d", start.Format("Jan 2"), end.Day(), end.Year())
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
}

// MarshalJSON serializes single values as ISO-8601 strings, ranges as a
// {start, end} ISO pair, and unparsed values as {raw: text}.
func (s Spec) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindDate:
		return json.Marshal(s.Start.Format("2006-01-02"))
	case KindDateTime:
		return json.Marshal(s.Start.Format(time.RFC3339))
	case KindRange:
		return json.Marshal(map[string]string{
			"start": s.Start.Format("2006-01-02"),
			"end":   s.End.Format("2006-01-02"),
		})
	default:
		return json.Marshal(map[string]string{"raw": s.Raw})
	}
}
