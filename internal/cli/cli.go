package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/eventharvest/eventharvest/internal/config"
	"github.com/eventharvest/eventharvest/internal/contact"
	"github.com/eventharvest/eventharvest/internal/event"
	"github.com/eventharvest/eventharvest/internal/fetch"
	"github.com/eventharvest/eventharvest/internal/logger"
	"github.com/eventharvest/eventharvest/internal/source"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagLocation string
	flagSources  []string
	flagConfig   string
	flagFormat   string
	flagDays     int
	flagEnrich   bool
	flagWatch    string
	flagVerbose  bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventharvest",
		Short: "Harvest family events from a location's configured websites",
		Long: `Harvests calendar events for a configured location: church event
pages, school district calendars, and regional listing sites are fetched,
extracted, normalized, and reported as one deduplicated list.`,
		RunE: runHarvest,
	}

	cmd.Flags().StringVar(&flagLocation, "location", "", "Location to harvest, e.g. 'Snellville, GA' (required)")
	cmd.Flags().StringSliceVar(&flagSources, "sources", []string{"church", "school", "listing"}, "Source kinds to harvest")
	cmd.Flags().StringVar(&flagConfig, "config", "config.yaml", "Path to location config file")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&flagDays, "days", 0, "Days ahead to include (default from config)")
	cmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Fetch contact details for events missing them")
	cmd.Flags().StringVar(&flagWatch, "watch", "", "Cron schedule for periodic re-harvest, e.g. '*/30 * * * *'")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.MarkFlagRequired("location")

	return cmd
}

// runHarvest is the main command logic
func runHarvest(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	h, err := newHarvester(cfg, flagLocation, flagSources, flagDays, flagEnrich)
	if err != nil {
		return err
	}

	if flagWatch != "" {
		return watch(h, format)
	}

	result := h.run(context.Background())
	if err := WriteOutput(os.Stdout, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// watch re-harvests on a cron schedule, writing each run's output as it
// completes. An immediate harvest runs before the first scheduled one.
func watch(h *harvester, format OutputFormat) error {
	run := func() {
		result := h.run(context.Background())
		if err := WriteOutput(os.Stdout, result, format, flagVerbose); err != nil {
			logger.Error("writing output", nil, err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(flagWatch, run); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", flagWatch, err)
	}

	logger.Info("watch mode started", logger.Fields{"schedule": flagWatch})
	run()
	c.Start()
	select {} // runs until killed
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

// harvester holds everything one harvest run needs, so watch mode can
// repeat runs without re-reading configuration.
type harvester struct {
	location  string
	adapters  []source.Adapter
	daysAhead int
	tz        *time.Location
	enrich    bool
	enricher  *contact.Fetcher
}

func newHarvester(cfg *config.Config, location string, kinds []string, days int, enrich bool) (*harvester, error) {
	loc, ok := cfg.Lookup(location)
	if !ok {
		return nil, fmt.Errorf("location %q is not configured (known: %s)",
			location, strings.Join(cfg.LocationNames(), ", "))
	}

	tz, err := time.LoadLocation(cfg.Defaults.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Defaults.Timezone, err)
	}

	client := fetch.New(fetch.Config{UserAgent: cfg.Defaults.UserAgent})

	wanted := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wanted[strings.ToLower(strings.TrimSpace(k))] = true
	}

	var adapters []source.Adapter
	if wanted["church"] {
		for _, church := range loc.Churches {
			adapters = append(adapters, source.NewChurchAdapter(church, client, nil, tz))
		}
	}
	if wanted["school"] && loc.Schools != nil {
		adapters = append(adapters, source.NewSchoolAdapter(*loc.Schools, client, tz))
	}
	if wanted["listing"] && loc.Listing != nil {
		adapters = append(adapters, source.NewListingAdapter(*loc.Listing, client, tz))
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no sources of kind %s configured for %q",
			strings.Join(kinds, "/"), location)
	}

	daysAhead := cfg.Defaults.DaysAhead
	if days > 0 {
		daysAhead = days
	}

	h := &harvester{
		location:  location,
		adapters:  adapters,
		daysAhead: daysAhead,
		tz:        tz,
		enrich:    enrich,
	}
	if enrich {
		h.enricher = contact.NewFetcher(contact.Options{
			Workers:  cfg.Defaults.Workers,
			MinDelay: time.Duration(cfg.Defaults.MinDelayMS) * time.Millisecond,
			Client:   client,
		})
	}
	return h, nil
}

// run harvests every adapter and merges the results. A failed source is
// reported alongside the others; it never aborts the run.
func (h *harvester) run(ctx context.Context) *OutputResult {
	started := time.Now()
	req := source.Request{
		Location: h.location,
		Window:   source.DefaultWindow(started, h.daysAhead, h.tz),
	}

	result := &OutputResult{
		HarvestedAt: started.UTC(),
		Location:    h.location,
	}

	var all []event.Event
	for _, adapter := range h.adapters {
		res := adapter.Harvest(ctx, req)
		result.Sources = append(result.Sources, SourceOutput{
			Name:        adapter.Name(),
			Success:     res.Success,
			EventCount:  len(res.Events),
			Diagnostics: res.Diagnostics,
			Err:         res.Err,
		})
		if !res.Success {
			logger.Warn("source failed", logger.Fields{"source": adapter.Name(), "error": res.Err})
			continue
		}
		all = append(all, res.Events...)
	}

	all = event.Dedupe(all)
	if h.enrich {
		h.enrichEvents(ctx, all)
	}
	sortEvents(all)

	result.Events = all
	result.EventCount = len(all)
	logger.Info("harvest complete", logger.Fields{
		"location": h.location,
		"events":   len(all),
		"elapsed":  time.Since(started).String(),
	})
	return result
}

// enrichEvents fetches contact details for events that have a link but
// no email or phone.
func (h *harvester) enrichEvents(ctx context.Context, events []event.Event) {
	var indexes []int
	var urls []string
	for i, ev := range events {
		if ev.LinkURL != "" && ev.ContactEmail == "" && ev.ContactPhone == "" {
			indexes = append(indexes, i)
			urls = append(urls, ev.LinkURL)
		}
	}
	if len(urls) == 0 {
		return
	}

	records := h.enricher.Enrich(ctx, urls)
	for j, rec := range records {
		i := indexes[j]
		if rec.Email != nil {
			events[i].ContactEmail = *rec.Email
		}
		if rec.Phone != nil {
			events[i].ContactPhone = *rec.Phone
		}
		if events[i].Description == "" && rec.MetaDesc != nil {
			events[i].Description = *rec.MetaDesc
		}
	}
}
