// Package fetch provides the shared HTTP client used by every source
// adapter and the contact fetcher. All request context (headers, user
// agent, timeout) lives in an explicit Config rather than process-wide
// state, so two harvests with different settings cannot interfere.
package fetch
