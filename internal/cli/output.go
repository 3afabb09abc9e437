package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/eventharvest/eventharvest/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// SourceOutput summarizes one source's harvest.
type SourceOutput struct {
	Name        string   `json:"name"`
	Success     bool     `json:"success"`
	EventCount  int      `json:"event_count"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Err         string   `json:"error,omitempty"`
}

// OutputResult contains data to be output
type OutputResult struct {
	HarvestedAt time.Time      `json:"harvested_at"`
	Location    string         `json:"location"`
	Sources     []SourceOutput `json:"sources"`
	Events      []event.Event  `json:"events"`
	EventCount  int            `json:"event_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fmt.Fprintf(w, "Events for %s:\n", result.Location)

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
	}

	for _, evt := range result.Events {
		fmt.Fprintf(w, "  %s: %s (%s)\n", evt.Occurs.Label(), evt.Title, evt.VenueLabel)
		if evt.DateUnparsed {
			fmt.Fprintf(w, "       (date could not be interpreted)\n")
		}
		if verbose {
			if evt.Description != "" {
				fmt.Fprintf(w, "       %s\n", evt.Description)
			}
			if evt.LinkURL != "" {
				fmt.Fprintf(w, "       Link: %s\n", evt.LinkURL)
			}
			if evt.ContactEmail != "" {
				fmt.Fprintf(w, "       Email: %s\n", evt.ContactEmail)
			}
			if evt.ContactPhone != "" {
				fmt.Fprintf(w, "       Phone: %s\n", evt.ContactPhone)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events from %d sources\n", result.EventCount, len(result.Sources))

	for _, src := range result.Sources {
		if !src.Success {
			fmt.Fprintf(w, "  FAILED %s: %s\n", src.Name, src.Err)
			continue
		}
		if verbose {
			fmt.Fprintf(w, "  %s: %d events\n", src.Name, src.EventCount)
			for _, d := range src.Diagnostics {
				fmt.Fprintf(w, "    note: %s\n", d)
			}
		}
	}

	return nil
}
