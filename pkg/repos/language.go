package repos

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/conet/pkg/cache"
	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/integrations/npm"
	"github.com/matzehuels/conet/pkg/integrations/pypi"
)

// Fetcher looks up the repository URL of one package. An empty URL with a
// nil error means the package exists but names no GitHub repository.
type Fetcher interface {
	RepoURL(ctx context.Context, pkg string) (string, error)
}

// Language binds manifest parsers to the registry that resolves them.
type Language struct {
	Name       string
	Registry   string
	Aliases    []string
	Parsers    []Parser
	Validate   func(name string) error
	NewFetcher func(backend cache.Cache, ttl time.Duration) Fetcher
}

// ParseFile reads the dependency names listed in the manifest at path.
func (l *Language) ParseFile(path string) ([]string, error) {
	return parseFile(path, l.Parsers)
}

var languages = []*Language{
	{
		Name:     "python",
		Registry: "pypi",
		Aliases:  []string{"py", "pypi"},
		Parsers:  []Parser{Requirements{}},
		Validate: errors.ValidatePythonPackageName,
		NewFetcher: func(backend cache.Cache, ttl time.Duration) Fetcher {
			return pypiFetcher{pypi.NewClient(backend, ttl)}
		},
	},
	{
		Name:     "javascript",
		Registry: "npm",
		Aliases:  []string{"js", "node", "npm"},
		Parsers:  []Parser{PackageJSON{}},
		Validate: errors.ValidateNpmPackageName,
		NewFetcher: func(backend cache.Cache, ttl time.Duration) Fetcher {
			return npmFetcher{npm.NewClient(backend, ttl)}
		},
	},
}

// Languages returns the supported language names.
func Languages() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.Name
	}
	return names
}

// Lookup finds a language by name or alias, case-insensitively.
func Lookup(name string) (*Language, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range languages {
		if l.Name == name || slices.Contains(l.Aliases, name) {
			return l, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported language %q (available: %s)",
		name, strings.Join(Languages(), ", "))
}

type pypiFetcher struct{ c *pypi.Client }

func (f pypiFetcher) RepoURL(ctx context.Context, pkg string) (string, error) {
	info, err := f.c.FetchPackage(ctx, pkg, false)
	if err != nil {
		return "", err
	}
	return info.RepoURL, nil
}

type npmFetcher struct{ c *npm.Client }

func (f npmFetcher) RepoURL(ctx context.Context, pkg string) (string, error) {
	info, err := f.c.FetchPackage(ctx, pkg, false)
	if err != nil {
		return "", err
	}
	return info.RepoURL, nil
}
