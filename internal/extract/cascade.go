package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eventharvest/eventharvest/internal/logger"
)

// probeLimit bounds how many containers are sampled before a pattern is
// judged to have worked on a page.
const probeLimit = 5

// Extract runs the selector cascade over a parsed document. Patterns are
// tried in order; the first pattern that yields a titled field set on a
// bounded sample of containers is applied to every matching container and
// the rest are skipped. When no pattern works the structured-data and
// text-scan fallbacks run. Extraction is a pure function of the document
// and pattern list.
func Extract(doc *goquery.Document, patterns []Pattern) []RawFields {
	for _, p := range patterns {
		containers := safeFind(doc.Selection, p.Container)
		if containers == nil || containers.Length() == 0 {
			continue
		}

		worked := false
		containers.EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if i >= probeLimit {
				return false
			}
			if fs := applyPattern(sel, p); fs != nil {
				worked = true
				return false
			}
			return true
		})
		if !worked {
			continue
		}

		// Committed: the pattern worked, so it owns the whole page.
		results := make([]RawFields, 0, containers.Length())
		containers.Each(func(_ int, sel *goquery.Selection) {
			if fs := applyPattern(sel, p); fs != nil {
				results = append(results, fs)
			}
		})
		logger.Debug("selector pattern committed", logger.Fields{
			"pattern": p.Name,
			"results": len(results),
		})
		return results
	}

	if results := Structured(doc); len(results) > 0 {
		logger.Debug("structured-data fallback produced results", logger.Fields{
			"results": len(results),
		})
		return results
	}
	return TextScan(doc)
}

// applyPattern extracts one RawFields from a container, or nil when no
// title resolves. Selector failures inside the container degrade to
// missing fields rather than failing the element.
func applyPattern(sel *goquery.Selection, p Pattern) RawFields {
	title := firstText(sel, p.Title)
	if title == "" {
		return nil
	}

	fs := RawFields{RoleTitle: title}
	if v := firstDate(sel, p.Date); v != "" {
		fs[RoleDate] = v
	}
	if v := firstText(sel, p.Time); v != "" {
		fs[RoleTime] = v
	}
	if v := firstText(sel, p.Description); v != "" && v != title {
		fs[RoleDescription] = v
	}
	if v := firstText(sel, p.Location); v != "" {
		fs[RoleLocation] = v
	}
	if v := firstHref(sel, p.URL); v != "" {
		fs[RoleURL] = v
	}
	return fs
}

// firstText returns the first non-empty trimmed text among the candidate
// selectors, in order.
func firstText(sel *goquery.Selection, candidates []string) string {
	for _, c := range candidates {
		found := safeFind(sel, c)
		if found == nil || found.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(found.First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// dateAttrs are machine-readable date attributes checked before text
// content; calendar systems often put the reliable value there.
var dateAttrs = []string{"datetime", "data-start-date", "data-date", "data-event-date"}

// firstDate resolves a date candidate, preferring machine-readable
// attributes (including the FinalSite data-occur-id encoding) over the
// element's display text.
func firstDate(sel *goquery.Selection, candidates []string) string {
	if v := occurIDDate(sel); v != "" {
		return v
	}
	for _, c := range candidates {
		found := safeFind(sel, c)
		if found == nil || found.Length() == 0 {
			continue
		}
		el := found.First()
		for _, attr := range dateAttrs {
			if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		if text := strings.TrimSpace(el.Text()); text != "" {
			return text
		}
	}
	return ""
}

// occurIDDate pulls the start timestamp out of a FinalSite data-occur-id
// attribute ("id_2025-08-04T00:00:00Z_2025-08-05T00:00:00Z") found on the
// container or a descendant link.
func occurIDDate(sel *goquery.Selection) string {
	candidates := []*goquery.Selection{sel}
	if links := safeFind(sel, "[data-occur-id]"); links != nil && links.Length() > 0 {
		candidates = append(candidates, links.First())
	}
	for _, c := range candidates {
		v, ok := c.Attr("data-occur-id")
		if !ok {
			continue
		}
		if m := isoStampRe.FindString(v); m != "" {
			return m
		}
	}
	return ""
}

// firstHref returns the first non-empty href among the candidates. When
// the container itself is an anchor its own href is used.
func firstHref(sel *goquery.Selection, candidates []string) string {
	if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	for _, c := range candidates {
		found := safeFind(sel, c)
		if found == nil || found.Length() == 0 {
			continue
		}
		if href, ok := found.First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
	}
	return ""
}

// safeFind applies a selector, absorbing panics from malformed selector
// syntax so a bad declared selector reads as "no match".
func safeFind(sel *goquery.Selection, selector string) (out *goquery.Selection) {
	if strings.TrimSpace(selector) == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("selector recovered", logger.Fields{"selector": selector})
			out = nil
		}
	}()
	return sel.Find(selector)
}
