package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchErr(t *testing.T, err error) *domain.FetchError {
	t.Helper()
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	return fe
}

func TestFetchText_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("HK-01,vless,a.example,443,uuid"))
	}))
	defer ts.Close()

	body, err := fetch.NewClient(fetch.Options{}).FetchText(context.Background(), domain.FetchNodeList, ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "HK-01,vless,a.example,443,uuid", body)
}

func TestFetchText_UnsupportedScheme(t *testing.T) {
	_, err := fetch.NewClient(fetch.Options{}).FetchText(context.Background(), domain.FetchNodeList, "file:///etc/passwd")
	fe := fetchErr(t, err)
	assert.Equal(t, fetch.CodeInvalidArgument, fe.Code)
	assert.Equal(t, domain.FetchNodeList, fe.Kind)
}

func TestFetchText_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := fetch.NewClient(fetch.Options{}).FetchText(context.Background(), domain.FetchRuleBody, ts.URL)
	fe := fetchErr(t, err)
	assert.Equal(t, fetch.CodeFailed, fe.Code)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestFetchText_TooLarge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 32)))
	}))
	defer ts.Close()

	client := fetch.NewClient(fetch.Options{MaxBytes: 10})
	_, err := client.FetchText(context.Background(), domain.FetchNodeList, ts.URL)
	assert.Equal(t, fetch.CodeTooLarge, fetchErr(t, err).Code)

	client = fetch.NewClient(fetch.Options{MaxBytes: 32})
	_, err = client.FetchText(context.Background(), domain.FetchNodeList, ts.URL)
	assert.NoError(t, err, "a body of exactly MaxBytes is accepted")
}

func TestFetchText_InvalidUTF8(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe, 0xfd})
	}))
	defer ts.Close()

	_, err := fetch.NewClient(fetch.Options{}).FetchText(context.Background(), domain.FetchNodeList, ts.URL)
	assert.Equal(t, fetch.CodeInvalidUTF8, fetchErr(t, err).Code)
}

func TestFetchText_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	client := fetch.NewClient(fetch.Options{Timeout: 20 * time.Millisecond})
	_, err := client.FetchText(context.Background(), domain.FetchNodeList, ts.URL)
	fe := fetchErr(t, err)
	assert.Equal(t, fetch.CodeTimeout, fe.Code)
	assert.True(t, fe.Timeout())
}

func TestFetchText_TooManyRedirects(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ts.URL+"/again", http.StatusFound)
	}))
	defer ts.Close()

	_, err := fetch.NewClient(fetch.Options{MaxRedirects: 2}).FetchText(context.Background(), domain.FetchNodeList, ts.URL)
	assert.Equal(t, fetch.CodeFailed, fetchErr(t, err).Code)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetchText_TokenOnlyForGitHub(t *testing.T) {
	var seen []string
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.Host+"|"+r.Header.Get("Authorization"))
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader("ok")),
			Header:     http.Header{},
			Request:    r,
		}, nil
	})
	client := fetch.NewClient(fetch.Options{Token: "secret"}).WithTransport(rt)
	ctx := context.Background()

	_, err := client.FetchText(ctx, domain.FetchNodeList, "https://gist.githubusercontent.com/u/abc/raw")
	require.NoError(t, err)
	_, err = client.FetchText(ctx, domain.FetchNodeList, "https://example.com/list.txt")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"gist.githubusercontent.com|token secret",
		"example.com|",
	}, seen)
}

func TestNormalizeSourceURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://gist.github.com/user/abc", "https://gist.githubusercontent.com/user/abc/raw"},
		{"https://gist.github.com/user/abc/raw/file.txt", "https://gist.github.com/user/abc/raw/file.txt"},
		{"  https://raw.githubusercontent.com/u/r/main/list.txt ", "https://raw.githubusercontent.com/u/r/main/list.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fetch.NormalizeSourceURL(tt.in))
	}
}

func TestGitHubLister(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name": "YouTube", "type": "dir"},
			{"name": "README.md", "type": "file"},
			{"name": "Netflix", "type": "dir"}
		]`))
	}))
	defer ts.Close()

	lister := fetch.NewGitHubLister(fetch.NewClient(fetch.Options{}), ts.URL)
	names, err := lister.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"YouTube", "Netflix"}, names)
}

func TestGitHubLister_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer ts.Close()

	_, err := fetch.NewGitHubLister(fetch.NewClient(fetch.Options{}), ts.URL).ListCategories(context.Background())
	assert.Error(t, err)
}

func TestRuleCache(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload:\n  - DOMAIN-SUFFIX,youtube.com\n"))
	}))
	defer ts.Close()

	rc := fetch.NewRuleCache(fetch.NewClient(fetch.Options{}), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		body, err := rc.Get(ctx, ts.URL+"/YouTube.yaml")
		require.NoError(t, err)
		assert.Contains(t, body, "youtube.com")
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, rc.Len())

	_, err := rc.Get(ctx, ts.URL+"/missing")
	assert.Error(t, err)
	_, _ = rc.Get(ctx, ts.URL+"/missing")
	assert.Equal(t, int32(3), hits.Load(), "failures are not cached")

	rc.Flush()
	assert.Equal(t, 0, rc.Len())
}
