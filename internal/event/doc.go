// Package event defines the canonical Event record and the pipeline
// stages that shape it: normalization of raw extracted fields, duplicate
// removal by deterministic identity key, and consolidation of recurring
// fragments into date-ranged events.
//
// An Event always carries a title and an occurrence spec. Dates that fail
// every parse template are kept and flagged rather than dropped, so
// callers can observe parse failures instead of silently losing records.
package event
