package source

import (
	"context"
	"time"

	"github.com/eventharvest/eventharvest/internal/event"
	"github.com/eventharvest/eventharvest/internal/extract"
	"github.com/eventharvest/eventharvest/internal/logger"
)

// PageFetcher supplies pre-fetched pages of social-network event JSON.
// How those pages are obtained (session handling, rendering, private
// APIs) is the collaborator's problem; this module only interprets them.
type PageFetcher interface {
	FetchPages(ctx context.Context, location string) ([][]byte, error)
}

// SocialAdapter scans injected social-network payloads for event-shaped
// JSON objects.
type SocialAdapter struct {
	name    string
	fetcher PageFetcher
	loc     *time.Location
}

func NewSocialAdapter(name string, fetcher PageFetcher, loc *time.Location) *SocialAdapter {
	if loc == nil {
		loc = time.UTC
	}
	return &SocialAdapter{name: name, fetcher: fetcher, loc: loc}
}

func (a *SocialAdapter) Name() string { return "social:" + a.name }

func (a *SocialAdapter) Harvest(ctx context.Context, req Request) Result {
	started := time.Now()
	res := Result{Success: true}

	if a.fetcher == nil {
		res.diag("no page fetcher configured for %s; source skipped", a.name)
		res.Events = []event.Event{}
		return res
	}

	pages, err := a.fetcher.FetchPages(ctx, req.Location)
	if err != nil {
		return failure(err)
	}

	var all []event.Event
	for i, page := range pages {
		raws := extract.ScanEventJSON(page)
		if len(raws) == 0 {
			res.diag("page %d contained no event-shaped objects", i+1)
			continue
		}
		all = append(all, event.NormalizeAll(raws, event.NormalizeOptions{
			VenueLabel: a.name,
			SourceName: a.name,
			SourceKind: event.KindSocial,
			RefYear:    req.Window.Start.Year(),
			Location:   a.loc,
		})...)
	}

	all = event.Dedupe(all)
	all = FilterWindow(all, req.Window)

	res.Events = all
	logger.RecordTiming("social.harvest", time.Since(started))
	logger.AddCounter("social.events", int64(len(all)))
	return res
}
