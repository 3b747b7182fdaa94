package browsers

import (
	"sort"
	"testing"

	"github.com/quantmind-br/browserscout/internal/core"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(nil)

	t.Run("knows every browser", func(t *testing.T) {
		want := []string{"chrome", "chromium", "firefox", "ie", "maxthon", "opera", "phantomjs", "safari", "yandex"}
		got := reg.IDs()
		if len(got) != len(want) {
			t.Fatalf("IDs() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("IDs()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("ids are sorted", func(t *testing.T) {
		ids := reg.IDs()
		if !sort.StringsAreSorted(ids) {
			t.Errorf("IDs() not sorted: %v", ids)
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		def, ok := reg.Lookup("Chrome")
		if !ok {
			t.Fatal("Lookup(Chrome) failed")
		}
		if def.ID != "chrome" {
			t.Errorf("ID = %q", def.ID)
		}
		if _, ok := reg.Lookup("FIREFOX"); !ok {
			t.Error("Lookup(FIREFOX) failed")
		}
	})

	t.Run("unknown browser", func(t *testing.T) {
		if _, ok := reg.Lookup("netscape"); ok {
			t.Error("Lookup(netscape) should fail")
		}
	})

	t.Run("every definition has a binary and probes", func(t *testing.T) {
		for _, id := range reg.IDs() {
			def, _ := reg.Lookup(id)
			if def.Binary == "" {
				t.Errorf("%s: empty binary", id)
			}
			if len(def.Probes) == 0 {
				t.Errorf("%s: no probes", id)
			}
		}
	})

	t.Run("chromium has no path probe", func(t *testing.T) {
		def, _ := reg.Lookup("chromium")
		for _, p := range def.Probes {
			if p.Kind == core.ProbeInPath {
				t.Error("chromium must not search PATH, its binary name collides with chrome")
			}
		}
	})
}

func TestRegistryChromeChannels(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		reg := NewRegistry(nil)
		channels := reg.ChromeChannels()
		if len(channels) != len(DefaultChromeChannels) {
			t.Fatalf("ChromeChannels() has %d entries, want %d", len(channels), len(DefaultChromeChannels))
		}
		if ch := channels["{8A69D345-D564-463C-AFF1-A69D9E530F96}"]; ch != "stable" {
			t.Errorf("stable GUID maps to %q", ch)
		}
	})

	t.Run("custom mapping is case-folded", func(t *testing.T) {
		reg := NewRegistry(map[string]string{"{abc}": "sideload"})
		channels := reg.ChromeChannels()
		if ch := channels["{ABC}"]; ch != "sideload" {
			t.Errorf("channels[{ABC}] = %q, want sideload", ch)
		}
	})

	t.Run("returns a copy", func(t *testing.T) {
		reg := NewRegistry(nil)
		channels := reg.ChromeChannels()
		channels["{NEW}"] = "x"
		if _, ok := reg.ChromeChannels()["{NEW}"]; ok {
			t.Error("mutation leaked into the registry")
		}
	})
}

func TestProgramFilesExpansion(t *testing.T) {
	probes := expand(programFiles(`Internet Explorer`))
	if len(probes) != 2 {
		t.Fatalf("programFiles expanded to %d probes, want 2", len(probes))
	}
	if probes[0].EnvVar != "ProgramFiles" || probes[1].EnvVar != "ProgramFiles(x86)" {
		t.Errorf("env vars = %q, %q", probes[0].EnvVar, probes[1].EnvVar)
	}
	for _, p := range probes {
		if p.Kind != core.ProbeDir {
			t.Errorf("kind = %q, want dir", p.Kind)
		}
		if p.RelPath != `Internet Explorer` {
			t.Errorf("rel path = %q", p.RelPath)
		}
	}
}
