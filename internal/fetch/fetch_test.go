package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Staff Engineer</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Staff Engineer</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.ContentType)
	assert.Equal(t, DefaultUserAgent, gotAgent)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/job", "https://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(context.Background(), raw, nil)
			require.Error(t, err)

			var fetchErr *Error
			assert.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_TruncatesLargeBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxBodyBytes+100)))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Len(t, result.HTML, MaxBodyBytes)
}

func TestURL_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := URL(ctx, server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractMainText_StripsChrome(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Backend Engineer</h1>
				<p>You will own the billing service.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer\nYou will own the billing service.", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div>Some   content
		here.</div></body></html>`

	text, err := ExtractMainText(html, []string{".missing"})
	require.NoError(t, err)
	assert.Equal(t, "Some content\nhere.", text)
}

func TestExtractMainText_JobPostingSelectorsWinOverMain(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Sidebar junk</div>
			<main>
				<div class="related">Other openings</div>
				<div class="job-description">
					<h2>Requirements</h2>
					<ul><li>5 years experience in Go</li><li>Postgres</li></ul>
				</div>
			</main>
		</body>
	</html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Requirements\n5 years experience in Go\nPostgres", text)
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><main><p>Keep</p><div class="eeo">Drop</div></main></body></html>`

	text, err := ExtractMainText(html, []string{"main"}, ".eeo")
	require.NoError(t, err)
	assert.Equal(t, "Keep", text)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   Loading...   "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}

func TestError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &Error{URL: "https://example.com", Message: "HTTP request failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetch error for https://example.com: HTTP request failed: context deadline exceeded", err.Error())
}
