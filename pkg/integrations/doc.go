// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// The repository resolver maps package names to their GitHub source
// repositories. Each supported registry has its own subpackage:
//
//   - [pypi]: Python Package Index
//   - [npm]: Node Package Manager
//
// # Client Pattern
//
// Registry clients follow a consistent pattern:
//
//	client := pypi.NewClient(backend, cache.TTLHTTP)
//	pkg, err := client.FetchPackage(ctx, "fastapi", false)  // false = use cache
//
// Clients handle:
//   - HTTP requests with retry on 429 and 5xx responses
//   - Response caching through any [cache.Cache] backend
//   - API-specific parsing and normalization
//
// # Repository URLs
//
// [FindGitHubURL] and [GitHubRepoURL] reduce homepage, project URL and
// description links to a canonical https://github.com/<owner>/<repo> form.
//
// [pypi]: github.com/matzehuels/conet/pkg/integrations/pypi
// [npm]: github.com/matzehuels/conet/pkg/integrations/npm
// [cache.Cache]: github.com/matzehuels/conet/pkg/cache.Cache
package integrations
