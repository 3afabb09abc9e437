package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/eventharvest/eventharvest/internal/config"
	"github.com/eventharvest/eventharvest/internal/event"
	"github.com/eventharvest/eventharvest/internal/extract"
	"github.com/eventharvest/eventharvest/internal/fetch"
	"github.com/eventharvest/eventharvest/internal/logger"
)

// detailFetchLimit caps per-event detail-page fetches so one church page
// with dozens of events does not turn into dozens of extra requests.
const detailFetchLimit = 5

// FetchRendered supplies fully rendered HTML for sites whose event
// markup only exists after client-side rendering. Browser automation
// itself lives outside this module.
type FetchRendered func(ctx context.Context, url string) (string, error)

// ChurchAdapter harvests one church's events page using its declared
// selectors, falling back to the generic pattern library.
type ChurchAdapter struct {
	cfg      config.ChurchSource
	client   *fetch.Client
	rendered FetchRendered
	loc      *time.Location
}

// NewChurchAdapter builds an adapter for one configured church. rendered
// may be nil; sites marked Rendered then degrade to a plain fetch with a
// diagnostic.
func NewChurchAdapter(cfg config.ChurchSource, client *fetch.Client, rendered FetchRendered, loc *time.Location) *ChurchAdapter {
	if loc == nil {
		loc = time.UTC
	}
	return &ChurchAdapter{cfg: cfg, client: client, rendered: rendered, loc: loc}
}

func (a *ChurchAdapter) Name() string { return "church:" + a.cfg.Name }

func (a *ChurchAdapter) Harvest(ctx context.Context, req Request) Result {
	started := time.Now()
	res := Result{Success: true}

	doc, err := a.document(ctx, &res)
	if err != nil {
		return failure(fmt.Errorf("church %s: %w", a.cfg.Name, err))
	}

	if a.cfg.CampusID != "" {
		removed := filterCampus(doc, a.cfg.CampusID)
		if removed > 0 {
			res.diag("campus filter removed %d events not tagged for location id %s", removed, a.cfg.CampusID)
		}
	}

	patterns := append(a.declaredPatterns(), extract.CommonPatterns()...)
	raws := extract.Extract(doc, patterns)
	if len(raws) == 0 {
		res.diag("no events extracted from %s", a.cfg.URL)
	}

	events := event.NormalizeAll(raws, event.NormalizeOptions{
		PageURL:    a.cfg.URL,
		VenueLabel: a.cfg.Name,
		SourceName: a.cfg.Name,
		SourceKind: event.KindChurch,
		RefYear:    req.Window.Start.Year(),
		Location:   a.loc,
	})
	events = event.Dedupe(events)
	events = FilterWindow(events, req.Window)

	if a.cfg.DetailPages {
		a.fetchDetails(ctx, events, &res)
	}

	res.Events = events
	logger.RecordTiming("church.harvest", time.Since(started))
	logger.AddCounter("church.events", int64(len(events)))
	return res
}

func (a *ChurchAdapter) document(ctx context.Context, res *Result) (*goquery.Document, error) {
	if a.cfg.Rendered {
		if a.rendered == nil {
			res.diag("site %s needs rendering but no renderer is configured; using raw HTML", a.cfg.URL)
		} else {
			html, err := a.rendered(ctx, a.cfg.URL)
			if err != nil {
				res.diag("renderer failed for %s: %v; using raw HTML", a.cfg.URL, err)
			} else {
				return goquery.NewDocumentFromReader(strings.NewReader(html))
			}
		}
	}
	return a.client.GetDocument(ctx, a.cfg.URL)
}

// declaredPatterns turns the config's selector hints into a Pattern tried
// before the generic library.
func (a *ChurchAdapter) declaredPatterns() []extract.Pattern {
	if a.cfg.Container == "" {
		return nil
	}
	p := extract.Pattern{Name: "declared:" + a.cfg.Name, Container: a.cfg.Container}
	sel := func(role string) []string {
		if s := a.cfg.Selectors[role]; s != "" {
			return []string{s}
		}
		return nil
	}
	p.Title = sel(extract.RoleTitle)
	p.Date = sel(extract.RoleDate)
	p.Time = sel(extract.RoleTime)
	p.Description = sel(extract.RoleDescription)
	p.Location = sel(extract.RoleLocation)
	p.URL = sel(extract.RoleURL)
	if p.Title == nil {
		p.Title = []string{"h1", "h2", "h3", ".title"}
	}
	if p.URL == nil {
		p.URL = []string{"a"}
	}
	return []extract.Pattern{p}
}

// filterCampus removes event containers tagged for other campuses. A
// data-locations value of "0" means all campuses and always passes.
// Returns how many containers were removed.
func filterCampus(doc *goquery.Document, campusID string) int {
	removed := 0
	doc.Find("[data-locations]").Each(func(_ int, sel *goquery.Selection) {
		v, _ := sel.Attr("data-locations")
		for _, id := range strings.Split(v, ",") {
			id = strings.TrimSpace(id)
			if id == campusID || id == "0" {
				return
			}
		}
		sel.Remove()
		removed++
	})
	return removed
}

// fetchDetails fills missing descriptions from each event's detail page
// meta description, bounded by detailFetchLimit.
func (a *ChurchAdapter) fetchDetails(ctx context.Context, events []event.Event, res *Result) {
	fetched := 0
	for i := range events {
		if events[i].Description != "" || events[i].LinkURL == "" {
			continue
		}
		if fetched >= detailFetchLimit {
			return
		}
		fetched++
		doc, err := a.client.GetDocument(ctx, events[i].LinkURL)
		if err != nil {
			res.diag("detail fetch failed for %s: %v", events[i].LinkURL, err)
			continue
		}
		if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
			events[i].Description = strings.TrimSpace(desc)
		}
	}
}
