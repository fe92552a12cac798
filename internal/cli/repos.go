package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conet/pkg/cache"
	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/repos"
)

// repoKeyScope prefixes resolved-URL cache keys. Bump it when the URL
// extraction rules change so stale entries are ignored.
const repoKeyScope = "v1:"

// reposCommand creates the repos command.
func (c *CLI) reposCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "repos <language> <manifest>",
		Short: "List the GitHub repositories of a manifest's dependencies",
		Long: fmt.Sprintf(`Repos reads the dependencies of a manifest and looks each one up in its
package registry to find the GitHub repository hosting its source.

Supported languages: %s.
  python      requirements.txt, resolved on PyPI
  javascript  package.json (dependencies, devDependencies, peerDependencies), resolved on npm

Packages that cannot be resolved are reported and skipped.`, strings.Join(repos.Languages(), ", ")),
		Example: `  conet repos python requirements.txt
  conet repos javascript package.json --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			lang, err := repos.Lookup(args[0])
			if err != nil {
				return err
			}
			names, err := lang.ParseFile(args[1])
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No dependencies found in %s", args[1])
				return nil
			}

			backend, err := newCache(ctx, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			resolver := repos.NewResolver(lang, backend).
				WithKeyer(cache.NewScopedKeyer(nil, repoKeyScope)).
				WithLogger(logger).
				WithWorkers(workers)

			var sp *spinner
			if !asJSON {
				sp = newSpinner(ctx, os.Stderr, resolvingMessage(lang.Registry, 0, len(names)))
				resolver = resolver.WithProgress(func(done, total int) {
					sp.Update(resolvingMessage(lang.Registry, done, total))
				})
				sp.Start()
			}
			st := startStage(logger, "resolve", "language", lang.Name, "packages", len(names))
			links := resolver.Resolve(ctx, names)
			if sp != nil {
				sp.Stop()
			}
			st.done("resolved", countFound(links))
			if err := ctx.Err(); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(links)
			}
			printLinks(links)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the registry response cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVarP(&workers, "workers", "w", repos.DefaultWorkers, "concurrent registry lookups")

	return cmd
}

func resolvingMessage(registry string, done, total int) string {
	return fmt.Sprintf("Resolving %s packages %d/%d...", registry, done, total)
}

func countFound(links []repos.Link) int {
	n := 0
	for _, l := range links {
		if l.Found() {
			n++
		}
	}
	return n
}

// printLinks prints one line per package and a summary.
func printLinks(links []repos.Link) {
	found, missing, failed := 0, 0, 0
	for _, l := range links {
		switch {
		case l.Err != nil:
			failed++
			printError("%s %s", l.Package, StyleDim.Render(errors.UserMessage(l.Err)))
		case l.RepoURL == "":
			missing++
			printWarning("%s: no GitHub repository listed", l.Package)
		default:
			found++
			printResolved(l.Package, l.RepoURL, l.Cached)
		}
	}
	printNewline()
	printDetail("%d resolved, %d without repository, %d failed", found, missing, failed)
}
