package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/conet/pkg/cache"
	"github.com/matzehuels/conet/pkg/httputil"
	"github.com/matzehuels/conet/pkg/observability"
)

func testClient(t *testing.T, srv *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { backend.Close() })
	c := NewClient(backend, "test", time.Hour, headers).WithBaseDelay(time.Millisecond)
	if srv != nil {
		c.http = srv.Client()
	}
	return c
}

func TestClientGet(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
	}))
	defer srv.Close()

	c := testClient(t, srv, map[string]string{"Accept": "application/json"})

	var resp map[string]string
	if err := c.Get(context.Background(), srv.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp["message"] != "hello" {
		t.Errorf("message = %q", resp["message"])
	}
	if !strings.HasPrefix(gotUA, "conet/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestClientGet_Status(t *testing.T) {
	tests := []struct {
		status    int
		notFound  bool
		retryable bool
	}{
		{http.StatusNotFound, true, false},
		{http.StatusTooManyRequests, false, true},
		{http.StatusInternalServerError, false, true},
		{http.StatusForbidden, false, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			var resp map[string]string
			err := testClient(t, srv, nil).Get(context.Background(), srv.URL, &resp)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrNotFound); got != tt.notFound {
				t.Errorf("ErrNotFound = %v, want %v (%v)", got, tt.notFound, err)
			}
			var re *httputil.RetryableError
			if got := errors.As(err, &re); got != tt.retryable {
				t.Errorf("retryable = %v, want %v (%v)", got, tt.retryable, err)
			}
		})
	}
}

type cacheCounter struct {
	observability.NoopCacheHooks
	hits, misses, sets atomic.Int32
}

func (c *cacheCounter) OnCacheHit(context.Context, string)      { c.hits.Add(1) }
func (c *cacheCounter) OnCacheMiss(context.Context, string)     { c.misses.Add(1) }
func (c *cacheCounter) OnCacheSet(context.Context, string, int) { c.sets.Add(1) }

func TestClientCached(t *testing.T) {
	counter := &cacheCounter{}
	observability.SetCacheHooks(counter)
	defer observability.Reset()

	c := testClient(t, nil, nil)
	type payload struct {
		Value string `json:"value"`
	}

	fetches := 0
	get := func(refresh bool) payload {
		var v payload
		err := c.Cached(context.Background(), "pkg", refresh, &v, func() error {
			fetches++
			v = payload{Value: "fetched"}
			return nil
		})
		if err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
		return v
	}

	if v := get(false); v.Value != "fetched" {
		t.Errorf("first value = %+v", v)
	}
	if v := get(false); v.Value != "fetched" {
		t.Errorf("cached value = %+v", v)
	}
	get(true)

	if fetches != 2 {
		t.Errorf("fetches = %d, want 2 (miss, hit, refresh)", fetches)
	}
	if counter.hits.Load() != 1 || counter.misses.Load() != 1 || counter.sets.Load() != 2 {
		t.Errorf("hooks hits=%d misses=%d sets=%d", counter.hits.Load(), counter.misses.Load(), counter.sets.Load())
	}
}

func TestClientCached_FetchError(t *testing.T) {
	c := testClient(t, nil, nil)

	calls := 0
	var v string
	err := c.Cached(context.Background(), "missing", false, &v, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("non-retryable error fetched %d times", calls)
	}

	// Failures are not cached.
	err = c.Cached(context.Background(), "missing", false, &v, func() error {
		v = "found"
		return nil
	})
	if err != nil || v != "found" {
		t.Errorf("second call = %q, %v", v, err)
	}
}

func TestClientRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var resp map[string]string
	err := testClient(t, srv, nil).Get(context.Background(), srv.URL, &resp)
	var re *httputil.RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RetryableError", err)
	}
	if re.After != 2*time.Second {
		t.Errorf("After = %v, want 2s", re.After)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := testClient(t, srv, nil)
	var resp map[string]string
	err := c.Cached(context.Background(), "k", true, &resp, func() error {
		return c.Get(context.Background(), srv.URL, &resp)
	})
	if err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if calls.Load() != 2 || resp["status"] != "ok" {
		t.Errorf("calls = %d, resp = %v", calls.Load(), resp)
	}
}

func TestNormalizePkgName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Package", "package"},
		{"underscore to dash", "my_package", "my-package"},
		{"trim spaces", "  package  ", "package"},
		{"combined", "  My_Package  ", "my-package"},
		{"empty", "", ""},
		{"already normalized", "my-package", "my-package"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePkgName(tt.input); got != tt.want {
				t.Errorf("NormalizePkgName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"https url", "https://github.com/user/repo", "https://github.com/user/repo"},
		{"with .git suffix", "https://github.com/user/repo.git", "https://github.com/user/repo"},
		{"git@ to https", "git@github.com:user/repo", "https://github.com/user/repo"},
		{"git:// to https", "git://github.com/user/repo", "https://github.com/user/repo"},
		{"git+ prefix", "git+https://github.com/user/repo", "https://github.com/user/repo"},
		{"with spaces", "  https://github.com/user/repo  ", "https://github.com/user/repo"},
		{"combined", "git+git@github.com:user/repo.git", "https://github.com/user/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRepoURL(tt.input); got != tt.want {
				t.Errorf("NormalizeRepoURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGitHubRepoURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://github.com/pallets/flask", "https://github.com/pallets/flask"},
		{"https://github.com/pallets/flask/issues", "https://github.com/pallets/flask"},
		{"http://github.com/psf/requests/tree/main/docs", "https://github.com/psf/requests"},
		{"git+https://github.com/user/repo.git", "https://github.com/user/repo"},
		{"git@github.com:user/repo.git", "https://github.com/user/repo"},
		{"(https://github.com/user/repo).", "https://github.com/user/repo"},
		{"github.com/user/repo", "https://github.com/user/repo"},
		{"https://github.com/user", ""},
		{"https://github.com/sponsors/user", ""},
		{"https://gitlab.com/user/repo", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := GitHubRepoURL(tt.in); got != tt.want {
			t.Errorf("GitHubRepoURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindGitHubURL(t *testing.T) {
	tests := []struct {
		name        string
		homepage    string
		urls        map[string]string
		description string
		want        string
	}{
		{
			name:     "homepage first",
			homepage: "https://github.com/a/home",
			urls:     map[string]string{"Source": "https://github.com/a/source"},
			want:     "https://github.com/a/home",
		},
		{
			name:     "well-known key before others",
			homepage: "https://example.org",
			urls: map[string]string{
				"Changelog": "https://github.com/a/changelog",
				"Source":    "https://github.com/a/source",
			},
			want: "https://github.com/a/source",
		},
		{
			name: "other keys by name",
			urls: map[string]string{
				"Tracker": "https://github.com/a/tracker/issues",
				"Docs":    "https://docs.example.org",
			},
			want: "https://github.com/a/tracker",
		},
		{
			name:        "description tokens",
			homepage:    "https://example.org",
			description: "Fork me on https://github.com/a/desc.",
			want:        "https://github.com/a/desc",
		},
		{
			name:        "nothing",
			homepage:    "https://example.org",
			description: "no links here",
			want:        "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindGitHubURL(tt.homepage, tt.urls, tt.description); got != tt.want {
				t.Errorf("FindGitHubURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
