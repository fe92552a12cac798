package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey generates a key for a registry HTTP response.
	HTTPKey(namespace, key string) string

	// RepoKey generates a key for a resolved repository URL.
	RepoKey(language, pkg string) string
}

// DefaultKeyer is the standard Keyer.
//
//	http:pypi:requests
//	repo:python:<sha256 of the package name>
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return join("http", namespace, key)
}

// RepoKey returns "repo:<language>:<digest>". The package name is hashed
// since npm scopes and PyPI names may contain characters that some
// backends treat specially.
func (DefaultKeyer) RepoKey(language, pkg string) string {
	return join("repo", language, digest(pkg))
}

// ScopedKeyer prepends a fixed scope to every key of an inner Keyer, for
// example a schema version so that entries written by older rules are
// ignored.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, scope: scope}
}

// HTTPKey implements Keyer.
func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.scope + k.inner.HTTPKey(namespace, key)
}

// RepoKey implements Keyer.
func (k ScopedKeyer) RepoKey(language, pkg string) string {
	return k.scope + k.inner.RepoKey(language, pkg)
}

func join(parts ...string) string { return strings.Join(parts, ":") }

// digest returns the hex SHA-256 of s.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
