package event

import (
	"reflect"
	"testing"
	"time"

	"github.com/eventharvest/eventharvest/internal/dateparse"
)

func dated(title, link string, day int) Event {
	return Event{
		Title:      title,
		LinkURL:    link,
		VenueLabel: "Shiloh Elementary",
		Occurs: dateparse.Spec{
			Kind:  dateparse.KindDate,
			Start: time.Date(2025, time.September, day, 0, 0, 0, 0, time.UTC),
			Raw:   "sep",
		},
	}
}

func TestDedupe_IdentityDuplicates(t *testing.T) {
	events := []Event{
		dated("Fall Festival", "https://school.org/fall", 20),
		dated("fall festival!", "https://school.org/fall/", 20),
		dated("Book Fair", "https://school.org/books", 22),
	}

	got := Dedupe(events)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "Fall Festival" || got[1].Title != "Book Fair" {
		t.Errorf("order or representatives wrong: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestDedupe_DateTitledSibling(t *testing.T) {
	link := "https://school.org/events/open-house"
	dateTitled := dated("Friday, September 12", link, 12)
	descriptive := Event{
		Title:        "Fall Open House",
		LinkURL:      link,
		VenueLabel:   "Shiloh Elementary",
		Occurs:       dateparse.Spec{Kind: dateparse.KindUnparsed, Raw: "TBD"},
		DateUnparsed: true,
	}

	got := Dedupe([]Event{dateTitled, descriptive})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Title != "Fall Open House" {
		t.Errorf("Title = %q, want descriptive title kept", got[0].Title)
	}
	if got[0].DateUnparsed {
		t.Error("parsed date from dropped sibling not adopted")
	}
	if got[0].Occurs.Date().Day() != 12 {
		t.Errorf("date = %v, want Sep 12", got[0].Occurs.Date())
	}
}

func TestDedupe_BothDescriptiveTitlesKept(t *testing.T) {
	link := "https://school.org/events/week"
	a := dated("Spirit Week Kickoff", link, 15)
	b := dated("Spirit Week Finale", link, 19)

	got := Dedupe([]Event{a, b})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2; distinct events on one page link collapsed", len(got))
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	events := []Event{
		dated("Fall Festival", "https://school.org/fall", 20),
		dated("Friday, September 12", "https://school.org/open-house", 12),
		{Title: "Fall Open House", LinkURL: "https://school.org/open-house", VenueLabel: "Shiloh Elementary",
			Occurs: dateparse.Spec{Kind: dateparse.KindUnparsed, Raw: "TBD"}, DateUnparsed: true},
		dated("Book Fair", "", 22),
	}

	once := Dedupe(events)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDedupe_VenueFallbackIdentity(t *testing.T) {
	a := Event{Title: "Potluck", VenueLabel: "First Baptist"}
	b := Event{Title: "Potluck", VenueLabel: "Grace Church"}

	got := Dedupe([]Event{a, b})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2; same title at different venues is not a duplicate", len(got))
	}
}
