package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textScanLimit caps heuristic results; text scanning is the noisiest
// strategy and a page of prose can match many date patterns.
const textScanLimit = 5

var (
	isoStampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z?`)

	textDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2}(?:,?\s*\d{4})?\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
	}

	eventKeywordRe = regexp.MustCompile(`(?i)\b(event|meeting|conference|celebration|festival|show|game|performance|concert|fair|night|day|camp|class)\b`)
)

// TextScan is the last-resort strategy: find date-looking strings in the
// page text and pair each with a nearby line that reads like an event
// title. Output is capped to bound noise.
func TextScan(doc *goquery.Document) []RawFields {
	text := doc.Text()
	var results []RawFields
	seen := make(map[string]bool)

	for _, re := range textDateRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if len(results) >= textScanLimit {
				return results
			}
			dateStr := text[loc[0]:loc[1]]

			start := loc[0] - 100
			if start < 0 {
				start = 0
			}
			end := loc[1] + 100
			if end > len(text) {
				end = len(text)
			}

			title := nearbyTitle(text[start:end])
			if title == "" {
				continue
			}
			key := title + "|" + dateStr
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, RawFields{
				RoleTitle: title,
				RoleDate:  dateStr,
			})
		}
	}
	return results
}

// nearbyTitle picks the first line in the context window that plausibly
// names an event: reasonable length, not purely numeric, and carrying an
// event-ish keyword.
func nearbyTitle(context string) string {
	for _, line := range strings.Split(context, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 || len(line) > 100 {
			continue
		}
		if isNumeric(line) {
			continue
		}
		if eventKeywordRe.MatchString(line) {
			return line
		}
	}
	return ""
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

var calendarIDRes = []*regexp.Regexp{
	regexp.MustCompile(`[?&]src=([^&\s]+)`),
	regexp.MustCompile(`[?&]cid=([^&\s]+)`),
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
}

// FindCalendarFeed looks for an embedded Google Calendar iframe and
// extracts its calendar id so the caller can fetch the public ICS feed
// instead of scraping the rendered widget. Returns "" when the page
// embeds no recognizable calendar.
func FindCalendarFeed(doc *goquery.Document) string {
	id := ""
	doc.Find(`iframe[src*="calendar.google.com"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok {
			return true
		}
		if decoded, err := url.QueryUnescape(src); err == nil {
			src = decoded
		}
		for _, re := range calendarIDRes {
			m := re.FindStringSubmatch(src)
			if m == nil {
				continue
			}
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			if strings.Contains(candidate, "@") || strings.HasSuffix(candidate, ".calendar.google.com") {
				id = candidate
				return false
			}
		}
		return true
	})
	return id
}
