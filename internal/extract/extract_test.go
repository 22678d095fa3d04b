package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freeman-jiang/resonant/internal/link"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="A Proper Essay">
</head>
<body>
  <article>
    <h1>A Proper Essay</h1>
    <p>PARAGRAPH</p>
    <p>Read <a href="https://other.org/next">the follow-up</a> and
       <a href="/local/page">a local page</a>.</p>
    <p>Ignore <a rel="sponsored" href="https://ads.example/buy">this ad</a>
       and <a rel="nofollow ugc" href="https://spam.example/x">this spam</a>.</p>
    <p>Self link: <a href="https://example.com/essay">here</a>.</p>
  </article>
</body>
</html>`

func testHTML() []byte {
	// readability needs real paragraph mass to find the article body.
	para := strings.Repeat("This essay considers the design of durable systems in some depth. ", 20)
	return []byte(strings.Replace(articleHTML, "PARAGRAPH", para, 1))
}

func TestExtract_TitleAndContent(t *testing.T) {
	t.Parallel()

	l, err := link.FromURL("https://example.com/essay")
	require.NoError(t, err)

	res, extractErr := New().Extract(testHTML(), l)
	require.NoError(t, extractErr)
	require.Equal(t, "A Proper Essay", res.Title)
	require.Contains(t, res.Content, "durable systems")
	require.Equal(t, l, res.Link)
}

func TestExtract_HarvestsOutboundLinks(t *testing.T) {
	t.Parallel()

	l, err := link.FromURL("https://example.com/essay")
	require.NoError(t, err)

	res, extractErr := New().Extract(testHTML(), l)
	require.NoError(t, extractErr)

	urls := make([]string, 0, len(res.Outbound))
	for _, out := range res.Outbound {
		urls = append(urls, out.URL)
		require.Equal(t, l.Depth+1, out.Depth)
		require.Equal(t, l.URL, out.ParentURL)
	}
	require.Contains(t, urls, "https://other.org/next")
	require.Contains(t, urls, "https://example.com/local/page")
	require.NotContains(t, urls, "https://ads.example/buy")
	require.NotContains(t, urls, "https://spam.example/x")
	require.NotContains(t, urls, l.URL)
}

func TestExtract_EmptyPage(t *testing.T) {
	t.Parallel()

	l, err := link.FromURL("https://example.com/blank")
	require.NoError(t, err)

	_, extractErr := New().Extract([]byte("<html><body></body></html>"), l)
	require.Error(t, extractErr)
}
