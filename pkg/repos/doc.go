// Package repos maps the dependencies listed in a manifest to the GitHub
// repositories that host their source.
//
// Two ecosystems are supported:
//
//   - python: requirements.txt files, resolved against PyPI
//   - javascript: package.json files, resolved against the npm registry
//
// # Usage
//
//	lang, err := repos.Lookup("python")
//	names, err := lang.ParseFile("requirements.txt")
//	r := repos.NewResolver(lang, backend)
//	for _, link := range r.Resolve(ctx, names) {
//	    fmt.Println(link.Package, link.RepoURL, link.Err)
//	}
//
// A failure to resolve one package is recorded on its [Link] and never
// stops the others.
package repos
