// Package contact fetches organizer pages and pulls out whatever contact
// details they expose: page title, meta description, email, phone.
//
// Fetching is politeness-constrained. A worker pool shares one rate
// limiter, each registrable domain is visited at most once per call, and
// a page that fails or times out yields an empty record rather than
// aborting the batch.
package contact
