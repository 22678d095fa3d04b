package filter

// whitelistDomains are known-good personal blogs and essay sites whose
// pages are always kept, regardless of how the heuristics score them.
// Keyed by raw domain (no scheme, no www prefix).
var whitelistDomains = map[string]struct{}{
	"danluu.com":           {},
	"paulgraham.com":       {},
	"gwern.net":            {},
	"jakeseliger.com":      {},
	"amasad.me":            {},
	"slatestarcodex.com":   {},
	"astralcodexten.com":   {},
	"hypertext.joodaloop.com": {},
	"worrydream.com":       {},
	"stratechery.com":      {},
}

// IsWhitelisted reports whether the raw domain bypasses the content filter.
func IsWhitelisted(rawDomain string) bool {
	_, ok := whitelistDomains[rawDomain]
	return ok
}
