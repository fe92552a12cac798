package integrations

import (
	"errors"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// GitHubRepoURL reduces any URL pointing into a GitHub repository (issues,
// tree, blob pages...) to https://<host>/<owner>/<repo>. It returns "" if
// raw does not mention github.com or has no owner/repo path.
func GitHubRepoURL(raw string) string {
	s := NormalizeRepoURL(strings.Trim(raw, "()<>[]\"',;."))
	if !strings.Contains(s, "github.com") {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" || parts[0] == "sponsors" {
		return ""
	}
	return "https://" + u.Host + "/" + parts[0] + "/" + strings.TrimSuffix(parts[1], ".git")
}

var repoURLKeys = []string{"Source", "Repository", "Code", "Homepage"}

// FindGitHubURL searches package metadata for a GitHub repository, in
// order: the home page, the project URLs (well-known keys first, then the
// rest by name), then whitespace-separated tokens of the description.
// It returns "" when nothing matches.
func FindGitHubURL(homepage string, projectURLs map[string]string, description string) string {
	if u := GitHubRepoURL(homepage); u != "" {
		return u
	}

	keys := slices.Sorted(maps.Keys(projectURLs))
	slices.SortStableFunc(keys, func(a, b string) int {
		return rankKey(a) - rankKey(b)
	})
	for _, k := range keys {
		if u := GitHubRepoURL(projectURLs[k]); u != "" {
			return u
		}
	}

	for _, tok := range strings.Fields(description) {
		if u := GitHubRepoURL(tok); u != "" {
			return u
		}
	}
	return ""
}

func rankKey(k string) int {
	if i := slices.Index(repoURLKeys, k); i >= 0 {
		return i
	}
	return len(repoURLKeys)
}
