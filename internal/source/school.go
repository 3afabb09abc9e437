package source

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/eventharvest/eventharvest/internal/config"
	"github.com/eventharvest/eventharvest/internal/event"
	"github.com/eventharvest/eventharvest/internal/extract"
	"github.com/eventharvest/eventharvest/internal/fetch"
	"github.com/eventharvest/eventharvest/internal/ics"
	"github.com/eventharvest/eventharvest/internal/logger"
)

// locationOnlyTitles are markup fragments that name a room or a payment
// portal rather than an event; containers reduced to one of these are
// calendar chrome, not events.
var locationOnlyTitles = []string{
	"my paymentsplus", "paymentsplus", "payment plus",
	"gymnasium", "cafeteria", "auditorium",
	"library", "parking lot", "main office",
}

var titleCleanupRes = []*regexp.Regexp{
	regexp.MustCompile(` - Calendar.*$`),
	regexp.MustCompile(` Calendar.*$`),
	regexp.MustCompile(` \| .*$`),
	regexp.MustCompile(`^Calendar - `),
	regexp.MustCompile(`^Calendar$`),
}

// SchoolAdapter harvests every configured school calendar for one
// district: per-tier URL lists, cascade extraction, and the ICS feed
// strategy for pages that embed a Google Calendar.
type SchoolAdapter struct {
	cfg     config.SchoolSource
	client  *fetch.Client
	loc     *time.Location
	feedURL func(calendarID string) string
}

func NewSchoolAdapter(cfg config.SchoolSource, client *fetch.Client, loc *time.Location) *SchoolAdapter {
	if loc == nil {
		loc = time.UTC
	}
	return &SchoolAdapter{cfg: cfg, client: client, loc: loc, feedURL: ics.FeedURL}
}

func (a *SchoolAdapter) Name() string { return "school" }

func (a *SchoolAdapter) Harvest(ctx context.Context, req Request) Result {
	started := time.Now()
	res := Result{Success: true}

	tiers := make([]string, 0, len(a.cfg.Tiers))
	for tier := range a.cfg.Tiers {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	attempted, failed := 0, 0
	var all []event.Event
	for _, tier := range tiers {
		for _, pageURL := range a.cfg.Tiers[tier] {
			attempted++
			events, err := a.harvestPage(ctx, pageURL, req)
			if err != nil {
				failed++
				res.diag("school page %s failed: %v", pageURL, err)
				logger.Warn("school page failed", logger.Fields{"url": pageURL})
				continue
			}
			all = append(all, events...)
		}
	}
	if attempted > 0 && failed == attempted {
		res.Success = false
		res.Err = "all school calendar pages failed"
		return res
	}

	all = event.Dedupe(all)
	all = event.Consolidate(all)
	all = FilterWindow(all, req.Window)

	res.Events = all
	logger.RecordTiming("school.harvest", time.Since(started))
	logger.AddCounter("school.events", int64(len(all)))
	return res
}

func (a *SchoolAdapter) harvestPage(ctx context.Context, pageURL string, req Request) ([]event.Event, error) {
	doc, err := a.client.GetDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	school := a.schoolName(doc, pageURL)

	// An embedded Google Calendar means the markup is an empty widget;
	// the public ICS feed has the real data.
	if calID := extract.FindCalendarFeed(doc); calID != "" {
		events, err := a.harvestFeed(ctx, calID, school)
		if err == nil && len(events) > 0 {
			return events, nil
		}
		logger.Debug("ics feed fallback failed, scraping page", logger.Fields{
			"url": pageURL, "calendar": calID,
		})
	}

	raws := extract.Extract(doc, extract.CommonPatterns())
	raws = dropLocationOnly(raws)
	events := event.NormalizeAll(raws, event.NormalizeOptions{
		PageURL:    pageURL,
		VenueLabel: school,
		SourceName: school,
		SourceKind: event.KindSchool,
		RefYear:    req.Window.Start.Year(),
		Location:   a.loc,
	})
	return events, nil
}

func (a *SchoolAdapter) harvestFeed(ctx context.Context, calendarID, school string) ([]event.Event, error) {
	body, err := a.client.Get(ctx, a.feedURL(calendarID))
	if err != nil {
		return nil, err
	}
	return ics.ParseFeed(body, ics.FeedOptions{
		VenueLabel: school,
		SourceName: school,
		SourceKind: event.KindSchool,
		Location:   a.loc,
	})
}

// schoolName resolves a display name for one calendar page: the
// configured domain mapping first, then the cleaned page title, then the
// domain itself.
func (a *SchoolAdapter) schoolName(doc *goquery.Document, pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if name, ok := a.cfg.DomainNames[host]; ok {
			return name
		}
		if name := cleanPageTitle(doc); name != "" {
			return name
		}
		name := host
		for _, suffix := range []string{".com", ".org", ".edu", ".net"} {
			name = strings.TrimSuffix(name, suffix)
		}
		return titleCase(strings.ReplaceAll(name, "-", " "))
	}
	return cleanPageTitle(doc)
}

func cleanPageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, re := range titleCleanupRes {
		title = re.ReplaceAllString(title, "")
	}
	title = strings.TrimSpace(title)
	if len(title) <= 5 {
		return ""
	}
	return title
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// dropLocationOnly removes extracted records whose title names a room or
// portal instead of an event.
func dropLocationOnly(raws []extract.RawFields) []extract.RawFields {
	out := make([]extract.RawFields, 0, len(raws))
	for _, raw := range raws {
		title := strings.ToLower(raw[extract.RoleTitle])
		skip := false
		for _, pattern := range locationOnlyTitles {
			if strings.Contains(title, pattern) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, raw)
		}
	}
	return out
}
