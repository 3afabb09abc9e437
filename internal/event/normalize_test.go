package event

import (
	"strings"
	"testing"
	"time"

	"github.com/eventharvest/eventharvest/internal/dateparse"
	"github.com/eventharvest/eventharvest/internal/extract"
)

func testOpts() NormalizeOptions {
	return NormalizeOptions{
		PageURL:    "https://school.example.org/calendar",
		VenueLabel: "Shiloh Elementary",
		SourceName: "shiloh-elementary",
		SourceKind: KindSchool,
		RefYear:    2025,
		Location:   time.UTC,
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      extract.RawFields
		wantOK   bool
		check    func(t *testing.T, ev Event)
	}{
		{
			name: "full record",
			raw: extract.RawFields{
				extract.RoleTitle:       "Fall Open House",
				extract.RoleDate:        "September 12, 2025",
				extract.RoleDescription: "Meet the teachers",
				extract.RoleURL:         "/events/open-house",
			},
			wantOK: true,
			check: func(t *testing.T, ev Event) {
				if ev.Title != "Fall Open House" {
					t.Errorf("Title = %q", ev.Title)
				}
				if ev.Occurs.Date().Day() != 12 || ev.Occurs.Date().Month() != time.September {
					t.Errorf("date = %v", ev.Occurs.Date())
				}
				if ev.LinkURL != "https://school.example.org/events/open-house" {
					t.Errorf("LinkURL = %q, relative href not resolved", ev.LinkURL)
				}
				if ev.DateUnparsed {
					t.Error("DateUnparsed = true for a parseable date")
				}
			},
		},
		{
			name: "separate date and time combined",
			raw: extract.RawFields{
				extract.RoleTitle: "PTA Meeting",
				extract.RoleDate:  "October 3, 2025",
				extract.RoleTime:  "6 p.m.",
			},
			wantOK: true,
			check: func(t *testing.T, ev Event) {
				if ev.Occurs.Kind != dateparse.KindDateTime {
					t.Fatalf("Kind = %v, want KindDateTime", ev.Occurs.Kind)
				}
				if ev.Occurs.Date().Hour() != 18 {
					t.Errorf("hour = %d, want 18", ev.Occurs.Date().Hour())
				}
			},
		},
		{
			name: "unparseable date kept and flagged",
			raw: extract.RawFields{
				extract.RoleTitle: "Chess Club",
				extract.RoleDate:  "Every other Tuesday",
			},
			wantOK: true,
			check: func(t *testing.T, ev Event) {
				if !ev.DateUnparsed {
					t.Error("DateUnparsed = false")
				}
				if ev.Occurs.Raw != "Every other Tuesday" {
					t.Errorf("Raw = %q, original text lost", ev.Occurs.Raw)
				}
			},
		},
		{
			name: "html entities unescaped",
			raw: extract.RawFields{
				extract.RoleTitle: "Arts &amp; Crafts Night",
				extract.RoleDate:  "11/14/2025",
			},
			wantOK: true,
			check: func(t *testing.T, ev Event) {
				if ev.Title != "Arts & Crafts Night" {
					t.Errorf("Title = %q", ev.Title)
				}
			},
		},
		{
			name:   "no title rejects",
			raw:    extract.RawFields{extract.RoleDate: "9/1/2025"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Normalize(tt.raw, testOpts())
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && tt.check != nil {
				tt.check(t, ev)
			}
		})
	}
}

func TestNormalize_DescriptionTruncated(t *testing.T) {
	raw := extract.RawFields{
		extract.RoleTitle:       "Book Fair",
		extract.RoleDate:        "10/6/2025",
		extract.RoleDescription: strings.Repeat("word ", 200),
	}
	ev, ok := Normalize(raw, testOpts())
	if !ok {
		t.Fatal("Normalize rejected valid record")
	}
	if len(ev.Description) > maxDescriptionLen+3 {
		t.Errorf("Description length = %d", len(ev.Description))
	}
	if !strings.HasSuffix(ev.Description, "...") {
		t.Errorf("truncated description missing ellipsis: %q", ev.Description[len(ev.Description)-10:])
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	raws := []extract.RawFields{
		{extract.RoleTitle: "First", extract.RoleDate: "9/1/2025"},
		{extract.RoleDate: "9/2/2025"}, // no title, dropped
		{extract.RoleTitle: "Second", extract.RoleDate: "9/3/2025"},
	}
	events := NormalizeAll(raws, testOpts())
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Title != "First" || events[1].Title != "Second" {
		t.Errorf("order not preserved: %q, %q", events[0].Title, events[1].Title)
	}
}
