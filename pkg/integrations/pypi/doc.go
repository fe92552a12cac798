// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Usage
//
//	client := pypi.NewClient(backend, 24*time.Hour)
//
//	pkg, err := client.FetchPackage(ctx, "fastapi", false)  // false = use cache
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(pkg.Name, pkg.RepoURL)
//
// # Repository Discovery
//
// [PackageInfo.RepoURL] is the first GitHub repository found in the home
// page, then the project URLs, then the long description. Links into a
// repository (issues, tree, blob) are reduced to the repository root.
//
// # Dependency Filtering
//
// Dependencies are extracted from requires_dist, filtering out extras, dev
// and test markers. Package names are normalized following PEP 503.
package pypi
