package contact

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/eventharvest/eventharvest/internal/fetch"
	"github.com/eventharvest/eventharvest/internal/logger"
)

const (
	defaultWorkers      = 10
	defaultMinDelay     = 500 * time.Millisecond
	defaultFetchTimeout = 8 * time.Second

	// maxDepth bounds the contact-link crawl: the landing page plus one
	// same-site contact page.
	maxDepth = 2
)

// Record holds whatever contact details one URL yielded. Fields are nil
// when the page did not expose them or the fetch failed.
type Record struct {
	URL       string  `json:"url"`
	PageTitle *string `json:"page_title"`
	MetaDesc  *string `json:"meta_description"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// Options tunes a single Enrich call. Zero values take the defaults.
type Options struct {
	Workers      int
	MinDelay     time.Duration
	FetchTimeout time.Duration
	Client       *fetch.Client
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.MinDelay <= 0 {
		o.MinDelay = defaultMinDelay
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = defaultFetchTimeout
	}
	if o.Client == nil {
		o.Client = fetch.New(fetch.Config{Timeout: o.FetchTimeout})
	}
	return o
}

// Fetcher runs contact enrichment batches.
type Fetcher struct {
	opts    Options
	limiter *rate.Limiter
}

// NewFetcher builds a Fetcher with one shared limiter; all workers of
// all batches issued through it observe the same minimum delay.
func NewFetcher(opts Options) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.MinDelay), 1),
	}
}

// Enrich fetches contact details for each URL. The result slice is
// aligned 1:1 with the input: result[i] always describes urls[i].
// Duplicate URLs and additional URLs on an already-visited registrable
// domain are not fetched again; their records come back empty. The
// visited sets live only for this call.
func (f *Fetcher) Enrich(ctx context.Context, urls []string) []Record {
	records := make([]Record, len(urls))
	for i, u := range urls {
		records[i] = Record{URL: u}
	}

	type job struct {
		index int
		url   string
	}
	jobs := make(chan job)

	visitedURL := make(map[string]bool)
	visitedDomain := make(map[string]bool)

	var wg sync.WaitGroup
	for w := 0; w < f.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				records[j.index] = f.fetchRecord(ctx, j.url)
			}
		}()
	}

	for i, u := range urls {
		key := strings.TrimRight(strings.TrimSpace(u), "/")
		domain := registrableDomain(u)

		seen := visitedURL[key] || (domain != "" && visitedDomain[domain])
		if !seen {
			visitedURL[key] = true
			if domain != "" {
				visitedDomain[domain] = true
			}
		}
		if seen {
			logger.Debug("contact url skipped", logger.Fields{"url": u, "reason": "domain visited"})
			continue
		}

		select {
		case jobs <- job{index: i, url: u}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return records
		}
	}
	close(jobs)
	wg.Wait()
	return records
}

// fetchRecord fetches one URL within the shared rate limit and extracts
// contact fields, following at most one same-site contact link when the
// landing page is missing email and phone. Every failure degrades to an
// empty record.
func (f *Fetcher) fetchRecord(ctx context.Context, pageURL string) Record {
	rec := Record{URL: pageURL}
	f.crawl(ctx, pageURL, 1, &rec)
	return rec
}

func (f *Fetcher) crawl(ctx context.Context, pageURL string, depth int, rec *Record) {
	if depth > maxDepth {
		return
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.opts.FetchTimeout)
	defer cancel()

	doc, err := f.opts.Client.GetDocument(fetchCtx, pageURL)
	if err != nil {
		logger.Warn("contact fetch failed", logger.Fields{"url": pageURL, "depth": depth})
		logger.IncrCounter("contact.fetch_failures")
		return
	}
	logger.IncrCounter("contact.pages_fetched")

	merge(rec, extractPage(doc))

	if rec.Email != nil && rec.Phone != nil {
		return
	}
	if next := contactLink(doc, pageURL); next != "" {
		f.crawl(ctx, next, depth+1, rec)
	}
}

// merge fills rec's nil fields from found without overwriting values the
// earlier page already supplied.
func merge(rec *Record, found Record) {
	if rec.PageTitle == nil {
		rec.PageTitle = found.PageTitle
	}
	if rec.MetaDesc == nil {
		rec.MetaDesc = found.MetaDesc
	}
	if rec.Email == nil {
		rec.Email = found.Email
	}
	if rec.Phone == nil {
		rec.Phone = found.Phone
	}
}

// registrableDomain reduces a URL to its eTLD+1 so subdomains of one
// organization count as one fetch target.
func registrableDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(domain)
}
