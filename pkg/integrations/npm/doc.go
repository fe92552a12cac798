// Package npm provides an HTTP client for the npm registry API.
//
// # Usage
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "express", false)
//
// The client reads the version tagged "latest" in dist-tags. Scoped names
// such as "@babel/core" are escaped for the registry. [PackageInfo.RepoURL]
// comes from the "repository" field, falling back to "homepage".
package npm
