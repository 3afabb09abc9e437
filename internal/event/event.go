package event

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/eventharvest/eventharvest/internal/dateparse"
)

// SourceKind classifies the family of site an Event came from.
type SourceKind string

const (
	KindChurch  SourceKind = "church"
	KindSchool  SourceKind = "school"
	KindSocial  SourceKind = "social"
	KindListing SourceKind = "listing"
)

// Event is the canonical normalized record handed to the orchestrator.
// Title and Occurs are always present. Events are constructed once and
// mutated only by the consolidation merge step.
type Event struct {
	Title        string         `json:"title"`
	Occurs       dateparse.Spec `json:"occurs"`
	VenueLabel   string         `json:"venue_label"`
	Description  string         `json:"description,omitempty"`
	LinkURL      string         `json:"link_url,omitempty"`
	ContactEmail string         `json:"contact_email,omitempty"`
	ContactPhone string         `json:"contact_phone,omitempty"`
	SourceName   string         `json:"source_name"`
	SourceKind   SourceKind     `json:"source_kind"`

	// DateUnparsed marks an event whose date text matched no template.
	// The raw text survives in Occurs.Raw.
	DateUnparsed bool `json:"date_unparsed,omitempty"`

	// Occurrences is the number of discrete source records merged into
	// this event by consolidation; zero means it was never merged.
	Occurrences int `json:"occurrences,omitempty"`
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// NormalizeTitle reduces a title to its dedup form: lowercase, punctuation
// and emoji stripped, whitespace collapsed.
func NormalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = nonWordRe.ReplaceAllString(t, "")
	return strings.Join(strings.Fields(t), " ")
}

// CanonicalURL normalizes a link for identity comparison: lowercased
// scheme and host, fragment dropped, trailing slash trimmed. Unparseable
// links canonicalize to their trimmed form so identity stays total.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

// Identity returns the deterministic dedup key:
// normalized title plus canonical link, falling back to the venue label
// when the event has no link. Order-independent by construction, so two
// extraction passes over the same source dedup identically.
func (e *Event) Identity() string {
	if e.LinkURL != "" {
		return NormalizeTitle(e.Title) + "|" + CanonicalURL(e.LinkURL)
	}
	return NormalizeTitle(e.Title) + "|" + e.VenueLabel
}
