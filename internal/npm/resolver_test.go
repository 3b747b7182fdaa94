package npm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func writePackage(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	manifest := filepath.Join(dir, "package.json")
	if err := afero.WriteFile(fs, manifest, []byte(`{"name":"x"}`), 0644); err != nil {
		t.Fatalf("write %s: %v", manifest, err)
	}
}

func noEnv(string) (string, bool) { return "", false }

func TestResolveLocal(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	pkgDir := filepath.Join("/proj", "node_modules", "phantomjs-prebuilt")
	writePackage(t, fs, pkgDir)

	r := NewFSResolverWithEnv(fs, noEnv)

	t.Run("direct node_modules", func(t *testing.T) {
		got, err := r.Resolve(ctx, "phantomjs-prebuilt", "/proj")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != pkgDir {
			t.Errorf("Resolve() = %q, want %q", got, pkgDir)
		}
	})

	t.Run("walks up from nested dir", func(t *testing.T) {
		got, err := r.Resolve(ctx, "phantomjs-prebuilt", "/proj/app/src")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != pkgDir {
			t.Errorf("Resolve() = %q, want %q", got, pkgDir)
		}
	})
}

func TestResolveGlobal(t *testing.T) {
	ctx := context.Background()

	t.Run("npm prefix", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		pkgDir := filepath.Join("/usr/local", "node_modules", "phantomjs")
		writePackage(t, fs, pkgDir)

		env := func(name string) (string, bool) {
			if name == "npm_config_prefix" {
				return "/usr/local", true
			}
			return "", false
		}
		r := NewFSResolverWithEnv(fs, env)

		got, err := r.Resolve(ctx, "phantomjs", "/elsewhere")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != pkgDir {
			t.Errorf("Resolve() = %q, want %q", got, pkgDir)
		}
	})

	t.Run("appdata npm root", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		pkgDir := filepath.Join("/appdata", "npm", "node_modules", "phantomjs")
		writePackage(t, fs, pkgDir)

		env := func(name string) (string, bool) {
			if name == "APPDATA" {
				return "/appdata", true
			}
			return "", false
		}
		r := NewFSResolverWithEnv(fs, env)

		got, err := r.Resolve(ctx, "phantomjs", "/elsewhere")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != pkgDir {
			t.Errorf("Resolve() = %q, want %q", got, pkgDir)
		}
	})
}

func TestResolveNotFound(t *testing.T) {
	r := NewFSResolverWithEnv(afero.NewMemMapFs(), noEnv)
	_, err := r.Resolve(context.Background(), "phantomjs", "/proj")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveDirWithoutManifestIgnored(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	// A bare directory without package.json is not an installed package
	if err := fs.MkdirAll(filepath.Join("/proj", "node_modules", "phantomjs"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r := NewFSResolverWithEnv(fs, noEnv)
	if _, err := r.Resolve(ctx, "phantomjs", "/proj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewFSResolverWithEnv(afero.NewMemMapFs(), noEnv)
	if _, err := r.Resolve(ctx, "phantomjs", "/proj"); err == nil {
		t.Error("Resolve() with canceled context should fail")
	}
}
