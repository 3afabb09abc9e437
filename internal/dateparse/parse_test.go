package dateparse

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantKind  Kind
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantHour  int
	}{
		{
			name:      "ISO date",
			text:      "2025-09-02",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   2,
		},
		{
			name:      "ISO timestamp with fractional seconds",
			text:      "2025-09-05T14:00:00.000Z",
			wantKind:  KindDateTime,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   5,
			wantHour:  14,
		},
		{
			name:      "US slash date",
			text:      "9/7/2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   7,
		},
		{
			name:      "Two digit year slash date",
			text:      "02/15/26",
			wantKind:  KindDate,
			wantYear:  2026,
			wantMonth: time.February,
			wantDay:   15,
		},
		{
			name:      "Dotted date",
			text:      "4.4.26",
			wantKind:  KindDate,
			wantYear:  2026,
			wantMonth: time.April,
			wantDay:   4,
		},
		{
			name:      "Day first slash date",
			text:      "15/8/2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   15,
		},
		{
			name:      "Long month",
			text:      "September 7, 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   7,
		},
		{
			name:      "Abbreviated month without comma",
			text:      "Sep 7 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   7,
		},
		{
			name:      "Four letter September abbreviation",
			text:      "Sept 7, 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   7,
		},
		{
			name:      "Weekday prefixed",
			text:      "Monday, September 8, 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   8,
		},
		{
			name:      "Day first long month",
			text:      "9 November 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.November,
			wantDay:   9,
		},
		{
			name:      "Missing year uses reference year",
			text:      "Sep 7",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   7,
		},
		{
			name:      "Weekday and no year",
			text:      "Wed, Sep 10",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   10,
		},
		{
			name:      "Month year only is first of month",
			text:      "October 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   1,
		},
		{
			name:      "Deadline prefix stripped",
			text:      "Deadline: Oct 1, 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   1,
		},
		{
			name:      "Trailing time annotation",
			text:      "Wednesday, September 10 @6 p.m.",
			wantKind:  KindDateTime,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   10,
			wantHour:  18,
		},
		{
			name:      "24-hour time annotation",
			text:      "Wednesday, September 10 @18:00",
			wantKind:  KindDateTime,
			wantYear:  2025,
			wantMonth: time.September,
			wantDay:   10,
			wantHour:  18,
		},
		{
			name:      "Malformed annotation keeps the date",
			text:      "Oct 1, 2025 @doors open",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   1,
		},
		{
			name:      "Compact digit range keeps first date",
			text:      "3–5 October 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   3,
		},
		{
			name:      "Full range keeps left date",
			text:      "20 August 2025 – 25 March 2026",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   20,
		},
		{
			name:      "Spaced hyphen range",
			text:      "Aug 31 - Sep 2, 2025",
			wantKind:  KindDate,
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   31,
		},
		{
			name:     "Empty string",
			text:     "",
			wantKind: KindUnparsed,
		},
		{
			name:     "Prose",
			text:     "Every other Tuesday night",
			wantKind: KindUnparsed,
		},
	}

	loc := time.UTC
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, 2025, loc)
			if got.Kind != tt.wantKind {
				t.Fatalf("Parse(%q) kind = %v, want %v", tt.text, got.Kind, tt.wantKind)
			}
			if tt.wantKind == KindUnparsed {
				if got.Raw != tt.text {
					t.Errorf("unparsed spec lost raw text: got %q", got.Raw)
				}
				return
			}
			if got.Start.Year() != tt.wantYear || got.Start.Month() != tt.wantMonth || got.Start.Day() != tt.wantDay {
				t.Errorf("Parse(%q) = %v, want %d-%d-%d", tt.text, got.Start, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if tt.wantKind == KindDateTime && got.Start.Hour() != tt.wantHour {
				t.Errorf("Parse(%q) hour = %d, want %d", tt.text, got.Start.Hour(), tt.wantHour)
			}
		})
	}
}

// Equivalent spellings of the same calendar date must parse to the same day
// regardless of which template matched.
func TestParseRoundTripAcrossTemplates(t *testing.T) {
	spellings := []string{
		"2025-09-07",
		"9/7/2025",
		"September 7, 2025",
		"Sep 7, 2025",
		"Sunday, September 7, 2025",
		"7 September 2025",
		"7 Sep 2025",
	}
	want := time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)
	for _, s := range spellings {
		got := Parse(s, 2025, time.UTC)
		if got.Unparsed() {
			t.Errorf("Parse(%q) unparsed, want %v", s, want)
			continue
		}
		if !got.Start.Equal(want) {
			t.Errorf("Parse(%q) = %v, want %v", s, got.Start, want)
		}
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", "@", "@@@", "–", "— — —", ": :", "Deadline:",
		"9999999999/99/99", "Jan", "32 January 2025", "a - b - c",
		"\x00\x01", "日曜日", "Sep 31", "0/0/0000",
	}
	for _, s := range inputs {
		got := Parse(s, 2025, time.UTC)
		if !got.Unparsed() && got.Start.IsZero() {
			t.Errorf("Parse(%q) returned parsed spec with zero time", s)
		}
	}
}

func TestParseMidnightUTCIsAllDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// Midnight UTC is the all-day sentinel: converting through Eastern time
	// would shift the calendar date back a day.
	got := Parse("2025-09-02T00:00:00Z", 2025, loc)
	if got.Kind != KindDate {
		t.Fatalf("kind = %v, want KindDate", got.Kind)
	}
	if got.Start.Day() != 2 {
		t.Errorf("all-day date shifted: got day %d, want 2", got.Start.Day())
	}

	// A real time component localizes to the supplied zone.
	got = Parse("2025-09-02T11:30:00Z", 2025, loc)
	if got.Kind != KindDateTime {
		t.Fatalf("kind = %v, want KindDateTime", got.Kind)
	}
	if got.Start.Hour() != 7 {
		t.Errorf("localized hour = %d, want 7", got.Start.Hour())
	}
}

// An evening local time whose UTC equivalent is midnight must stay a
// timed event on its own day, not become an all-day date on the next one.
func TestParseLocalEveningKeepsDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	got := Parse("January 2, 2026 at 7:00 PM", 2026, loc)
	if got.Kind != KindDateTime {
		t.Fatalf("kind = %v, want KindDateTime", got.Kind)
	}
	if got.Start.Month() != time.January || got.Start.Day() != 2 {
		t.Errorf("date = %v, want Jan 2", got.Start)
	}
	if got.Start.Hour() != 19 {
		t.Errorf("hour = %d, want 19", got.Start.Hour())
	}

	// The same instant written as a timestamp with an explicit offset
	// keeps its written day too.
	got = Parse("2026-01-02T19:00:00-05:00", 2026, loc)
	if got.Kind != KindDateTime {
		t.Fatalf("kind = %v, want KindDateTime", got.Kind)
	}
	if got.Start.Day() != 2 || got.Start.Hour() != 19 {
		t.Errorf("got %v, want Jan 2 19:00", got.Start)
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{
			name:  "Same month short form",
			start: time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC),
			want:  "Sep 2-5, 2025",
		},
		{
			name:  "Cross month",
			start: time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
			want:  "Aug 31 - Sep 2, 2025",
		},
		{
			name:  "Single day collapses",
			start: time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, time.September, 2, 0, 0, 0, 0, time.UTC),
			want:  "Tue, Sep 2, 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRange(tt.start, tt.end); got != tt.want {
				t.Errorf("FormatRange() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLooksLikeDate(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Wednesday, September 10 @6 p.m.", true},
		{"Mon, Sep 8 6:30 PM", true},
		{"Fall Open House", false},
		{"May Fair", false},
		{"Friday Night Lights", false},
		{"Friday 9/12", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := LooksLikeDate(tt.text); got != tt.want {
			t.Errorf("LooksLikeDate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
