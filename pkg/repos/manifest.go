package repos

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/integrations"
)

// Parser extracts direct dependency names from a manifest.
type Parser interface {
	// Type returns the manifest type (e.g. "requirements.txt").
	Type() string
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Parse reads the manifest and returns dependency names in file order
	// without duplicates.
	Parse(r io.Reader) ([]string, error)
}

var reqNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// Requirements parses pip requirements files. Comments, pip options and
// URL or VCS lines are skipped; version specifiers, extras and environment
// markers are dropped and names are PEP 503 normalized.
type Requirements struct{}

func (Requirements) Type() string { return "requirements.txt" }

func (Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (Requirements) Parse(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if m := reqNameRE.FindStringSubmatch(line); len(m) > 1 {
			names = appendUnique(names, integrations.NormalizePkgName(m[1]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read requirements")
	}
	return names, nil
}

// PackageJSON parses npm package.json files. It collects dependencies,
// devDependencies and peerDependencies, each group sorted by name.
type PackageJSON struct{}

func (PackageJSON) Type() string              { return "package.json" }
func (PackageJSON) Supports(name string) bool { return strings.EqualFold(name, "package.json") }

func (PackageJSON) Parse(r io.Reader) ([]string, error) {
	var pkg struct {
		Dependencies     map[string]string `json:"dependencies"`
		DevDependencies  map[string]string `json:"devDependencies"`
		PeerDependencies map[string]string `json:"peerDependencies"`
	}
	if err := json.NewDecoder(r).Decode(&pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode package.json")
	}

	var names []string
	for _, group := range []map[string]string{pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies} {
		keys := make([]string, 0, len(group))
		for k := range group {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			names = appendUnique(names, k)
		}
	}
	return names, nil
}

func appendUnique(names []string, name string) []string {
	if slices.Contains(names, name) {
		return names
	}
	return append(names, name)
}

// parseFile opens path and runs p over it. The parser is chosen by the
// caller; the filename is only checked to produce a clearer error.
func parseFile(path string, parsers []Parser) ([]string, error) {
	base := filepath.Base(path)
	var p Parser
	for _, candidate := range parsers {
		if candidate.Supports(base) {
			p = candidate
			break
		}
	}
	if p == nil {
		if len(parsers) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no manifest parsers")
		}
		// Unknown filenames fall back to the language's primary manifest.
		p = parsers[0]
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return p.Parse(f)
}
