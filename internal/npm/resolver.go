// Package npm resolves installed npm packages on disk. The phantomjs
// probe uses it to locate the executable bundled with the
// phantomjs-prebuilt (2.x) and phantomjs (1.x) packages.
package npm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrNotFound reports that a package is not installed anywhere visible
var ErrNotFound = errors.New("npm: package not found")

// Resolver locates installed packages
type Resolver interface {
	// Resolve returns the root directory of the named package, walking
	// node_modules from baseDir upwards and falling back to the global
	// prefix.
	Resolve(ctx context.Context, pkg, baseDir string) (string, error)
}

// FSResolver resolves packages by probing the filesystem
type FSResolver struct {
	fs afero.Fs

	// lookupEnv defaults to os.LookupEnv; injected in tests
	lookupEnv func(string) (string, bool)
}

// NewFSResolver creates a filesystem-backed package resolver
func NewFSResolver(fs afero.Fs) *FSResolver {
	return &FSResolver{fs: fs, lookupEnv: os.LookupEnv}
}

// NewFSResolverWithEnv creates a resolver with an injected environment
func NewFSResolverWithEnv(fs afero.Fs, lookupEnv func(string) (string, bool)) *FSResolver {
	return &FSResolver{fs: fs, lookupEnv: lookupEnv}
}

// Resolve returns the root directory of the named package
func (r *FSResolver) Resolve(ctx context.Context, pkg, baseDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Local resolution: node_modules in baseDir and every ancestor
	dir := baseDir
	for {
		candidate := filepath.Join(dir, "node_modules", pkg)
		if r.isPackageDir(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Global resolution: npm prefix, then APPDATA\npm
	for _, root := range r.globalRoots() {
		candidate := filepath.Join(root, "node_modules", pkg)
		if r.isPackageDir(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, pkg)
}

// isPackageDir reports whether dir looks like an installed package
func (r *FSResolver) isPackageDir(dir string) bool {
	ok, err := afero.Exists(r.fs, filepath.Join(dir, "package.json"))
	return err == nil && ok
}

// globalRoots lists directories whose node_modules hold global packages
func (r *FSResolver) globalRoots() []string {
	var roots []string
	if prefix, ok := r.lookupEnv("npm_config_prefix"); ok && prefix != "" {
		roots = append(roots, prefix)
	}
	if appData, ok := r.lookupEnv("APPDATA"); ok && appData != "" {
		roots = append(roots, filepath.Join(appData, "npm"))
	}
	return roots
}
