package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/eventharvest/eventharvest/internal/config"
	"github.com/eventharvest/eventharvest/internal/dateparse"
	"github.com/eventharvest/eventharvest/internal/event"
	"github.com/eventharvest/eventharvest/internal/fetch"
	"github.com/eventharvest/eventharvest/internal/logger"
)

const listingAPIBase = "https://api.macaronikid.com/api/v1/event/v2"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// listingItem is the wire shape of one listing-API event.
type listingItem struct {
	ID            string `json:"_id"`
	Title         string `json:"title"`
	StartDateTime string `json:"startDateTime"`
	Who           string `json:"who"`
}

// ListingAdapter harvests a regional family-events listing site through
// its JSON API instead of scraping the rendered calendar.
type ListingAdapter struct {
	cfg     config.ListingSource
	client  *fetch.Client
	loc     *time.Location
	apiBase string
}

func NewListingAdapter(cfg config.ListingSource, client *fetch.Client, loc *time.Location) *ListingAdapter {
	if loc == nil {
		loc = time.UTC
	}
	return &ListingAdapter{cfg: cfg, client: client, loc: loc, apiBase: listingAPIBase}
}

func (a *ListingAdapter) Name() string { return "listing:" + a.cfg.Name }

func (a *ListingAdapter) Harvest(ctx context.Context, req Request) Result {
	started := time.Now()
	res := Result{Success: true}

	if a.cfg.TownID == "" {
		return failure(fmt.Errorf("listing %s: no town id configured", a.cfg.Name))
	}

	var items []listingItem
	if err := a.client.GetJSON(ctx, a.queryURL(req.Window), &items); err != nil {
		return failure(fmt.Errorf("listing %s: %w", a.cfg.Name, err))
	}

	events := make([]event.Event, 0, len(items))
	for _, item := range items {
		ev, ok := a.toEvent(item, req.Window)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	if dropped := len(items) - len(events); dropped > 0 {
		res.diag("%d listing items dropped (missing fields or outside window)", dropped)
	}

	res.Events = event.Dedupe(events)
	logger.RecordTiming("listing.harvest", time.Since(started))
	logger.AddCounter("listing.events", int64(len(res.Events)))
	return res
}

// queryURL builds the API request: an active-events query for the town
// within the harvest window, JSON-encoded into a single query parameter.
func (a *ListingAdapter) queryURL(w Window) string {
	query, _ := json.Marshal(map[string]string{
		"status":    "active",
		"townOwner": a.cfg.TownID,
		"startDate": w.Start.UTC().Format("2006-01-02T15:04:05.000Z"),
		"endDate":   w.End.UTC().Format("2006-01-02T15:04:05.000Z"),
	})
	return a.apiBase + "?query=" + url.QueryEscape(string(query)) + "&impression=true"
}

// toEvent validates and converts one API item. Items missing an id,
// title, or start time are skipped, as are starts outside the window;
// the window check compares calendar days so a timed start on the last
// day is kept.
func (a *ListingAdapter) toEvent(item listingItem, w Window) (event.Event, bool) {
	if item.ID == "" || item.Title == "" || item.StartDateTime == "" {
		return event.Event{}, false
	}

	spec := dateparse.Parse(item.StartDateTime, w.Start.Year(), a.loc)
	if spec.Unparsed() {
		return event.Event{}, false
	}
	d := dayStart(spec.Date())
	if d.Before(w.Start) || d.After(w.End) {
		return event.Event{}, false
	}

	ev := event.Event{
		Title:       strings.TrimSpace(item.Title),
		Occurs:      spec,
		VenueLabel:  a.cfg.Name,
		Description: audienceLine(item.Who),
		LinkURL:     a.eventURL(item.ID),
		SourceName:  a.cfg.Name,
		SourceKind:  event.KindListing,
	}
	return ev, true
}

// audienceLine strips markup from the "who should attend" field.
func audienceLine(who string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(who, ""))
}

// eventURL reconstructs the public event page from the item id and the
// configured site URL.
func (a *ListingAdapter) eventURL(id string) string {
	u, err := url.Parse(a.cfg.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s/events/%s", u.Scheme, u.Host, id)
}
