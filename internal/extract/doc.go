// Package extract recovers raw event fields from arbitrary HTML markup.
//
// The engine runs a cascade of strategies over a parsed document: declared
// site-specific selector patterns first, then a library of generic
// structural patterns, then embedded structured data (JSON-LD and
// script-embedded event objects matched by shape), and finally loose
// text-pattern scanning. A pattern that produces a titled field set on a
// bounded sample of containers is committed for the whole page; a selector
// that blows up is treated as a non-match for that element only, so one
// bad selector never aborts a page.
package extract
