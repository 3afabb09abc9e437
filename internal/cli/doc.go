// Package cli implements the command-line interface for eventharvest.
//
// The cli package provides the Cobra-based CLI: harvesting a configured
// location across its sources, formatting output (text/JSON), optional
// contact enrichment, and a cron-scheduled watch mode for periodic
// re-harvests.
package cli
