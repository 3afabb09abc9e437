package extract

// RawFields is the untyped intermediate result of extraction, keyed by
// role ("title", "date", "time", "description", "location", "url").
// An absent key means the field was not observed, not that it is empty.
type RawFields map[string]string

// Field role keys used in RawFields.
const (
	RoleTitle       = "title"
	RoleDate        = "date"
	RoleTime        = "time"
	RoleDescription = "description"
	RoleLocation    = "location"
	RoleURL         = "url"
)

// Pattern pairs a container selector with ordered candidate selectors per
// field role. For each role the first candidate that matches non-empty
// text wins.
type Pattern struct {
	Name        string
	Container   string
	Title       []string
	Date        []string
	Time        []string
	Description []string
	Location    []string
	URL         []string
}

// commonRoles is the shared candidate set most sites answer to; the
// generic library varies only the container.
var commonRoles = Pattern{
	Title:       []string{"h1", "h2", "h3", ".title", ".event-title", ".name"},
	Date:        []string{".date", ".event-date", ".when", "time", ".datetime"},
	Time:        []string{".time", ".event-time", ".start-time"},
	Description: []string{".description", ".content", ".details", "p"},
	Location:    []string{".location", ".where", ".venue"},
	URL:         []string{"a"},
}

func generic(name, container string) Pattern {
	p := commonRoles
	p.Name = name
	p.Container = container
	return p
}

// CommonPatterns returns the generic structural pattern library, tried in
// order after any declared site patterns. The FinalSite entries cover the
// calendar system used by many school district sites.
func CommonPatterns() []Pattern {
	finalsite := Pattern{
		Name:      "finalsite-calendar",
		Container: ".fsCalendarDayBox .fsCalendarInfo, .fsCalendarEvent, .fsCalendarLongEvent, .fsCalendarDayViewEvent",
		Title: []string{
			".fsCalendarTitle", ".fsCalendarEventTitle", ".fsCalendarLongEventDescription",
			".fsCalendarInfo a", ".fsElementContent", "a",
		},
		Date:        []string{"[data-start-date]", "[data-date]", ".fsCalendarDate", ".fsCalendarEventDate", "time"},
		Description: []string{".fsElementContent p", "p"},
		URL:         []string{"a"},
	}

	return []Pattern{
		generic("event-container", ".event"),
		generic("list-item", "li"),
		generic("calendar-event", ".calendar-event"),
		generic("card", ".card"),
		generic("event-class-wildcard", "[class*='event']"),
		finalsite,
		generic("tribe-events", ".tribe-events-list-event"),
		generic("fullcalendar", ".fc-event"),
	}
}
