// Package source defines the Adapter interface and the adapters for each
// family of site the harvester understands: church event pages, school
// district calendars, regional listing APIs, and pre-fetched social
// event pages.
//
// Adapters never fail a whole harvest for one bad page. Per-URL errors
// become diagnostics on the Result; Success is false only when the
// source as a whole could not be reached or is misconfigured.
package source
