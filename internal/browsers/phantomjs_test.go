package browsers

import (
	"context"
	"testing"

	"github.com/spf13/afero"
)

func phantomDeps(fs afero.Fs) Deps {
	return Deps{Fs: fs}
}

func writeFile(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestPhantomPreHook(t *testing.T) {
	ctx := context.Background()

	t.Run("real executable kept as-is", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		path := `C:\tools\phantomjs.exe`
		got, verdict := phantomPreHook(ctx, phantomDeps(fs), path)
		if verdict != HookKeep {
			t.Fatalf("verdict = %v, want HookKeep", verdict)
		}
		if got != path {
			t.Errorf("path = %q, want unchanged", got)
		}
	})

	t.Run("global prefix shim resolves to bundled exe", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		exe := `C:\npm\node_modules\phantomjs-prebuilt\lib\phantom\bin\phantomjs.exe`
		writeFile(t, fs, exe)

		got, verdict := phantomPreHook(ctx, phantomDeps(fs), `C:\npm\phantomjs.cmd`)
		if verdict != HookKeep {
			t.Fatalf("verdict = %v, want HookKeep", verdict)
		}
		if got != exe {
			t.Errorf("path = %q, want %q", got, exe)
		}
	})

	t.Run("local bin shim resolves through parent node_modules", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		exe := `C:\proj\node_modules\phantomjs\lib\phantom\phantomjs.exe`
		writeFile(t, fs, exe)

		got, verdict := phantomPreHook(ctx, phantomDeps(fs), `C:\proj\node_modules\.bin\phantomjs.cmd`)
		if verdict != HookKeep {
			t.Fatalf("verdict = %v, want HookKeep", verdict)
		}
		if got != exe {
			t.Errorf("path = %q, want %q", got, exe)
		}
	})

	t.Run("package shim without exe asks for another pass", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		shim := `C:\npm\node_modules\phantomjs-prebuilt\bin\phantomjs`
		writeFile(t, fs, shim)

		got, verdict := phantomPreHook(ctx, phantomDeps(fs), `C:\npm\phantomjs.cmd`)
		if verdict != HookRetry {
			t.Fatalf("verdict = %v, want HookRetry", verdict)
		}
		if got != shim {
			t.Errorf("path = %q, want %q", got, shim)
		}
	})

	t.Run("unresolvable shim dropped", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		_, verdict := phantomPreHook(ctx, phantomDeps(fs), `C:\npm\phantomjs.cmd`)
		if verdict != HookDrop {
			t.Fatalf("verdict = %v, want HookDrop", verdict)
		}
	})

	t.Run("canceled context drops", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()
		_, verdict := phantomPreHook(canceled, phantomDeps(afero.NewMemMapFs()), `C:\tools\phantomjs.exe`)
		if verdict != HookDrop {
			t.Fatalf("verdict = %v, want HookDrop", verdict)
		}
	})
}
