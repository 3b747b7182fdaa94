package browsers

import (
	"context"

	"github.com/quantmind-br/browserscout/internal/helpers"
	"github.com/spf13/afero"
)

// 2.x ships the binary under lib/phantom/bin, 1.x directly under
// lib/phantom.
var phantomPackages = []struct {
	name    string
	binPath string
}{
	{"phantomjs-prebuilt", `lib\phantom\bin\phantomjs.exe`},
	{"phantomjs", `lib\phantom\phantomjs.exe`},
}

// phantomPackageProbe resolves the installed npm package (2.x name
// first, then 1.x) to its bundled executable.
func phantomPackageProbe(ctx context.Context, pc ProbeContext) {
	for _, pkg := range phantomPackages {
		dir, err := pc.Packages.Resolve(ctx, pkg.name, ".")
		if err != nil {
			continue
		}

		exe := helpers.JoinPath(dir, pkg.binPath)
		if ok, _ := afero.Exists(pc.Fs, exe); ok {
			pc.Report(exe, nil)
			return
		}

		// Fall back to the package's command shim; the pre-hook
		// resolves it
		shim := helpers.JoinPath(dir, `bin\phantomjs`)
		if ok, _ := afero.Exists(pc.Fs, shim); ok {
			pc.Report(shim, nil)
			return
		}
	}
}

// phantomPreHook resolves command shims to the real binary. A shim can
// sit in a global prefix (packages under <dir>\node_modules) or in a
// local node_modules\.bin (packages one level up); both layouts are
// checked for the 2.x and 1.x package names. A resolved path that is
// itself a shim is handed back for one more pass; the executor caps the
// recursion so mutually-referencing global and local shims cannot loop.
func phantomPreHook(ctx context.Context, deps Deps, path string) (string, HookResult) {
	if err := ctx.Err(); err != nil {
		return "", HookDrop
	}
	if helpers.HasExeExt(path) {
		return path, HookKeep
	}

	dir := helpers.DirName(path)
	bases := []string{
		helpers.JoinPath(dir, "node_modules"), // global prefix layout
		helpers.DirName(dir),                  // local node_modules\.bin layout
	}

	for _, base := range bases {
		for _, pkg := range phantomPackages {
			pkgDir := helpers.JoinPath(base, pkg.name)

			exe := helpers.JoinPath(pkgDir, pkg.binPath)
			if ok, _ := afero.Exists(deps.Fs, exe); ok {
				return exe, HookKeep
			}

			shim := helpers.JoinPath(pkgDir, `bin\phantomjs`)
			if ok, _ := afero.Exists(deps.Fs, shim); ok {
				return shim, HookRetry
			}
		}
	}

	return "", HookDrop
}
