package link

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean_StripsQueryAndFragment(t *testing.T) {
	t.Parallel()

	cleaned, err := Clean("https://x.com/p?q=1#frag")
	require.NoError(t, err)
	require.Equal(t, "https://x.com/p", cleaned)
}

func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	once, err := Clean("https://example.com/a/b?utm_source=feed#top")
	require.NoError(t, err)
	twice, err := Clean(once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	require.True(t, IsValid("http://worrydream.com/ABriefRantOnTheFutureOfInteractionDesign/"))
	require.True(t, IsValid("https://danluu.com/hiring-lemons"))
	require.False(t, IsValid("ftp://example.com/file"))
	require.False(t, IsValid("/relative/path"))
	require.False(t, IsValid("not a url"))
}

func TestFromURL_CleansAndValidates(t *testing.T) {
	t.Parallel()

	l, err := FromURL("https://example.com/post?ref=hn")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/post", l.URL)
	require.Zero(t, l.Depth)
	require.Empty(t, l.ParentURL)

	_, err = FromURL("mailto:someone@example.com")
	require.Error(t, err)
}

func TestChildLink_DepthMonotonicity(t *testing.T) {
	t.Parallel()

	parent := Link{URL: "https://example.com/essay", Depth: 3}
	child, ok := parent.ChildLink("next", "https://other.org/page")
	require.True(t, ok)
	require.Equal(t, parent.Depth+1, child.Depth)
	require.Equal(t, parent.URL, child.ParentURL)
}

func TestChildLink_ResolvesRelativeForms(t *testing.T) {
	t.Parallel()

	parent := Link{URL: "https://example.com/blog", Depth: 0}

	cases := []struct {
		name string
		href string
		want string
	}{
		{"absolute", "https://other.org/a", "https://other.org/a"},
		{"protocol relative", "//other.org/a", "http://other.org/a"},
		{"root relative", "/about", "https://example.com/about"},
		{"relative", "part-two", "https://example.com/blog/part-two"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			child, ok := parent.ChildLink("", tc.href)
			require.True(t, ok)
			require.Equal(t, tc.want, child.URL)
		})
	}
}

func TestChildLink_Discards(t *testing.T) {
	t.Parallel()

	parent := Link{URL: "https://example.com/blog", Depth: 0}

	for _, href := range []string{
		"",
		"#section-2",
		"mailto:a@b.com",
		"http://hidden.onion",
		"http://hidden.onion/page",
		"https://hidden.abc.onion/deep/path",
		"https://example.com/paper.pdf",
		"https://example.com/archive.zip",
		"https://" + strings.Repeat("a", MaxURLLength) + ".com",
	} {
		_, ok := parent.ChildLink("", href)
		require.False(t, ok, "expected %q to be discarded", href)
	}
}

func TestChildLink_SuppressedDomainNeverProducesLink(t *testing.T) {
	t.Parallel()

	parent := Link{URL: "https://example.com/blog", Depth: 0}

	for _, href := range []string{
		"https://www.youtube.com/watch",
		"https://en.wikipedia.org/wiki/Go",
		"https://twitter.com/someone/status/1",
		"/local-path-to-youtube.com-mirror", // suppression applies to the resolved URL
	} {
		_, ok := parent.ChildLink("", href)
		require.False(t, ok, "expected %q to be suppressed", href)
	}
}

func TestChildLink_CleansResolvedURL(t *testing.T) {
	t.Parallel()

	parent := Link{URL: "https://example.com/blog", Depth: 1}
	child, ok := parent.ChildLink("", "https://other.org/page?utm_campaign=x#frag")
	require.True(t, ok)
	require.Equal(t, "https://other.org/page", child.URL)
}

func TestDomainHelpers(t *testing.T) {
	t.Parallel()

	l := Link{URL: "https://www.example.com/a/b"}
	require.Equal(t, "https://www.example.com", l.Domain())
	require.Equal(t, "example.com", l.RawDomain())
}
