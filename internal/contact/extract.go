package contact

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?1?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	digitRe = regexp.MustCompile(`\d`)

	// Placeholder domains that appear in page templates, never as real
	// contact addresses.
	placeholderDomains = []string{"example.com", "test.com", "domain.com", "email.com", "yourdomain.com"}

	contactLinkWords = []string{"contact", "about", "support", "help"}
	excludedPathWords = []string{"login", "signin", "sign-in", "auth", "gateway"}
)

// extractPage pulls the contact fields visible on one parsed page.
func extractPage(doc *goquery.Document) Record {
	var rec Record

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		rec.PageTitle = &title
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		desc = strings.TrimSpace(desc)
		if desc != "" {
			rec.MetaDesc = &desc
		}
	}

	text := doc.Text()
	// mailto links are more trustworthy than body text.
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.Index(addr, "?"); i >= 0 {
			addr = addr[:i]
		}
		if validEmail(addr) {
			rec.Email = &addr
			return false
		}
		return true
	})
	if rec.Email == nil {
		for _, m := range emailRe.FindAllString(text, 10) {
			if validEmail(m) {
				email := m
				rec.Email = &email
				break
			}
		}
	}

	if m := phoneRe.FindString(text); m != "" {
		if n := len(digitRe.FindAllString(m, -1)); n >= 10 && n <= 12 {
			phone := strings.TrimSpace(m)
			rec.Phone = &phone
		}
	}
	return rec
}

func validEmail(addr string) bool {
	addr = strings.TrimSpace(addr)
	if !emailRe.MatchString(addr) {
		return false
	}
	lower := strings.ToLower(addr)
	for _, d := range placeholderDomains {
		if strings.HasSuffix(lower, "@"+d) {
			return false
		}
	}
	// Image filenames like logo@2x.png match the loose email pattern.
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// contactLink finds a same-site link likely to lead to contact details.
// Auth-ish paths are excluded so the crawl never lands on a login wall.
func contactLink(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		if abs.Hostname() != base.Hostname() {
			return true
		}

		probe := strings.ToLower(abs.Path + " " + sel.Text())
		for _, w := range excludedPathWords {
			if strings.Contains(probe, w) {
				return true
			}
		}
		for _, w := range contactLinkWords {
			if strings.Contains(probe, w) {
				abs.Fragment = ""
				candidate := abs.String()
				if strings.TrimRight(candidate, "/") != strings.TrimRight(pageURL, "/") {
					found = candidate
					return false
				}
			}
		}
		return true
	})
	return found
}
