package link

import "strings"

// suppressedDomains is a deny-list of hosts we never enqueue: link farms,
// paywalls, ToS-incompatible platforms, and domains that drown the corpus
// in low-value pages. Matching is substring match against the full URL.
var suppressedDomains = []string{
	"wikipedia.org", "amazon.com", "youtube.com", "twitter.com",
	"facebook.com", "reddit.com", "instagram.com", "google.com/patent",
	"wikimedia.org", "t.co", "amzn.to", "github.com", "codeforces.com",
	"tandfonline.com", "wiley.com", "oup.com", "sagepub.com",
	"arxiv.org", "cbsnews.com", "cnn.com", "scholar.google.com",
	"play.google.com", "goo.gl", "techcrunch.com", "ssrn.com",
	"sciencedirect.com", "springer.com", "jstor.org", "nature.com",
	"sciencemag.org", "sciencenews.org", "elifesciences", "fool.com",
	"bloomberg.com", "forbes.com", "bbc.com", "economist.com", "ft.com",
	"vimeo.com", "linkedin.com", "soundcloud.com", "prnewswire.com",
	"archive.org", "stackexchange.com", "doi.org", "mail-archive.com",
	"ncbi.nlm.nih.gov", "vice.com", "biorxiv.org", "psychologytoday.com",
	"dailymail", ".gov", "knowyourmeme", "technologyreview.com",
	"businessinsider.com", "investopedia.com", "smithsonianmag.com",
	"sciencedaily.com", "plus.google.com", "openid.net",
	"developer.apple.com", "cnbc.com", "brookings.edu", "tvtropes.org",
	"theregister.com", "theonion.com", "telegraph.co.uk",
	"quoteinvestigator.com", "biomedcentral", "tumblr.com", "9to5google",
	"brill.com", "slideshare.net", "stackoverflow.com", "britannica.com",
	"popsci.com", "espn.com", "goodreads.com", "baseball-reference.com",
	"man7.org", "en.wikiquote.org", "bmj.com",
}

// unsupportedExtensions lists binary and document formats we do not parse.
var unsupportedExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx",
	".zip", ".rar", ".7z", ".gz", ".png", ".jpg", ".jpeg",
}

// IsSuppressed reports whether the URL hits the deny-list.
func IsSuppressed(url string) bool {
	for _, domain := range suppressedDomains {
		if strings.Contains(url, domain) {
			return true
		}
	}
	return false
}
