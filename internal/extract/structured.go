package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Structured extracts events from embedded structured data: JSON-LD
// blocks whose @type names an event, and application/json script payloads
// scanned recursively for objects shaped like events. Matching is by
// structural shape, not by any one site's format.
func Structured(doc *goquery.Document) []RawFields {
	var results []RawFields

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return
		}
		results = append(results, fromJSONLD(data)...)
	})

	doc.Find(`script[type="application/json"], script[data-sjs]`).Each(func(_ int, sel *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return
		}
		results = append(results, scanJSON(data, 0)...)
	})

	return dedupeByTitleURL(results)
}

// ScanEventJSON searches a raw JSON payload for event-shaped objects.
// Social-network event pages deliver their data this way, pre-fetched by
// an external collaborator.
func ScanEventJSON(payload []byte) []RawFields {
	var data interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil
	}
	return dedupeByTitleURL(scanJSON(data, 0))
}

// fromJSONLD walks a JSON-LD document, which may be a single object or a
// list, and converts entries whose @type contains "event".
func fromJSONLD(data interface{}) []RawFields {
	switch v := data.(type) {
	case []interface{}:
		var out []RawFields
		for _, item := range v {
			out = append(out, fromJSONLD(item)...)
		}
		return out
	case map[string]interface{}:
		typ, _ := v["@type"].(string)
		if !strings.Contains(strings.ToLower(typ), "event") {
			// @graph containers nest the real entries.
			if graph, ok := v["@graph"]; ok {
				return fromJSONLD(graph)
			}
			return nil
		}
		fs := RawFields{}
		if s := stringField(v, "name", "headline"); s != "" {
			fs[RoleTitle] = s
		}
		if s := stringField(v, "startDate", "datePublished"); s != "" {
			fs[RoleDate] = s
		}
		if s := stringField(v, "description"); s != "" {
			fs[RoleDescription] = s
		}
		if s := stringField(v, "url"); s != "" {
			fs[RoleURL] = s
		}
		if loc, ok := v["location"].(map[string]interface{}); ok {
			if s := stringField(loc, "name", "address"); s != "" {
				fs[RoleLocation] = s
			}
		}
		if fs[RoleTitle] == "" {
			return nil
		}
		return []RawFields{fs}
	default:
		return nil
	}
}

// scanJSONDepthLimit bounds recursion through script-embedded JSON, which
// some sites nest pathologically deep.
const scanJSONDepthLimit = 40

// scanJSON recursively searches arbitrary JSON for objects that look like
// events: a name plus either an explicit event type tag or a start
// date/timestamp.
func scanJSON(data interface{}, depth int) []RawFields {
	if depth > scanJSONDepthLimit {
		return nil
	}
	var out []RawFields
	switch v := data.(type) {
	case map[string]interface{}:
		if fs := eventShaped(v); fs != nil {
			out = append(out, fs)
		}
		for _, value := range v {
			out = append(out, scanJSON(value, depth+1)...)
		}
	case []interface{}:
		for _, item := range v {
			out = append(out, scanJSON(item, depth+1)...)
		}
	}
	return out
}

// eventShaped converts a JSON object to RawFields when its shape says
// "event": a non-empty name with a typename tag, a start date, or a
// day/time sentence alongside an id.
func eventShaped(v map[string]interface{}) RawFields {
	name := stringField(v, "name", "title")
	if name == "" {
		return nil
	}
	typename, _ := v["__typename"].(string)
	date := stringField(v, "startDate", "startDateTime", "day_time_sentence", "start_time")
	if _, ok := v["start_timestamp"]; ok && date == "" {
		date = stringField(v, "start_timestamp")
	}
	id := stringField(v, "id", "_id")

	isEvent := strings.EqualFold(typename, "event") || date != "" && id != ""
	if !isEvent {
		return nil
	}

	fs := RawFields{RoleTitle: name}
	if date != "" {
		fs[RoleDate] = date
	}
	if s := stringField(v, "description"); s != "" {
		fs[RoleDescription] = s
	}
	if s := stringField(v, "url", "eventUrl", "website"); s != "" {
		fs[RoleURL] = s
	}
	if place, ok := v["event_place"].(map[string]interface{}); ok {
		if s := stringField(place, "contextual_name", "name"); s != "" {
			fs[RoleLocation] = s
		}
	} else if s := stringField(v, "location", "venue"); s != "" {
		fs[RoleLocation] = s
	}
	return fs
}

// stringField returns the first non-empty string among the named keys.
// Numeric values (epoch timestamps) are not converted here; the temporal
// normalizer only consumes text.
func stringField(v map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := v[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// dedupeByTitleURL removes exact repeats that occur when the same object
// is embedded in several script blocks.
func dedupeByTitleURL(in []RawFields) []RawFields {
	seen := make(map[string]bool, len(in))
	out := make([]RawFields, 0, len(in))
	for _, fs := range in {
		key := fs[RoleTitle] + "|" + fs[RoleURL]
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fs)
	}
	return out
}
