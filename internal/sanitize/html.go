// Package sanitize normalizes user-supplied rich-text content before it is
// persisted. All content fields (world overviews, entry bodies, lore
// articles, timeline events) pass through the same allow-list policy.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows the small tag set produced by the rich-text editor and
// strips everything else, including scripts, event handlers and iframes.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "strong", "em", "u", "s",
		"h1", "h2", "h3",
		"ul", "ol", "li",
		"blockquote", "pre", "code", "hr",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	p.AllowAttrs("src", "alt").OnElements("img")
	return p
}()

// HTML returns s with everything outside the editor allow-list removed.
func HTML(s string) string {
	return policy.Sanitize(s)
}
