// Package dateparse turns free-text date and time spellings into canonical
// calendar values.
//
// Listing sites spell dates dozens of ways: "September 7, 2025",
// "Mon, Sep 8", "9/7/25", "3–5 October 2025", "Deadline: Oct 1 @6 p.m.".
// Parse tries an ordered list of layout templates and always returns a
// Spec: either a parsed date/date-time/range or an explicit unparsed
// value carrying the original text. It never panics and never guesses:
// text that matches no template is reported as unparsed so callers can
// observe the failure.
package dateparse
