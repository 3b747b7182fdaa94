// Package browsers holds the per-browser detection strategies: a static
// table mapping each browser identifier to its ordered probe list plus
// optional pre/post hooks. The table is built once and never mutated;
// the engine in internal/detect interprets it.
package browsers

import (
	"context"
	"sort"
	"strings"

	"github.com/quantmind-br/browserscout/internal/core"
	"github.com/quantmind-br/browserscout/internal/npm"
	"github.com/quantmind-br/browserscout/internal/winreg"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Deps are the read-only collaborators probes and hooks may use
type Deps struct {
	Fs             afero.Fs
	Env            func(name string) (string, bool)
	Registry       winreg.Reader
	Packages       npm.Resolver
	ChromeChannels map[string]string
	Log            *zerolog.Logger
}

// ProbeContext is handed to custom probes by the executor
type ProbeContext struct {
	Deps

	// Report delivers one candidate path with optional extra fields
	// (channel, bitness, guid, uninstall)
	Report func(path string, extra map[string]string)

	// Spawn runs a sub-lookup concurrently; the engine reserves a
	// completion slot for it so the browser's phase waits for it
	Spawn func(fn func(ctx context.Context))
}

// CustomProbe is an arbitrary asynchronous discovery function
type CustomProbe func(ctx context.Context, pc ProbeContext)

// HookResult is a pre-hook's verdict on a candidate path
type HookResult int

const (
	// HookKeep accepts the (possibly replaced) path
	HookKeep HookResult = iota
	// HookRetry means the replacement is itself a shim and needs
	// another resolution pass; the executor caps these at two levels
	HookRetry
	// HookDrop discards the candidate
	HookDrop
)

// PreHook may replace a candidate path before verification
type PreHook func(ctx context.Context, deps Deps, path string) (string, HookResult)

// PostHook enriches a verified record. It must be a pure function of
// the record's path and metadata.
type PostHook func(info core.ExecutableInfo) core.ExecutableInfo

// Probe is one discovery heuristic, a tagged variant interpreted by the
// executor according to Kind.
type Probe struct {
	Kind core.ProbeKind

	EnvVar  string // env, dir
	RelPath string // dir

	Key             string // registry; versionRegistry key template (%s)
	ValueName       string // registry, versionRegistry
	PathIsParentDir bool   // registry

	VersionKey       string // versionRegistry
	VersionValueName string // versionRegistry

	Pattern string // startMenu

	Custom CustomProbe // custom
}

// Definition is one browser's immutable detection strategy
type Definition struct {
	ID     string
	Binary string
	Probes []Probe
	Pre    PreHook
	Post   PostHook
}

// Registry is the immutable browser-definition table
type Registry struct {
	defs     map[string]Definition
	ids      []string
	channels map[string]string
}

// NewRegistry builds the definition table. chromeChannels maps Google
// Update client GUIDs (braced, any case) to channel names; nil selects
// DefaultChromeChannels.
func NewRegistry(chromeChannels map[string]string) *Registry {
	if chromeChannels == nil {
		chromeChannels = DefaultChromeChannels
	}
	channels := make(map[string]string, len(chromeChannels))
	for guid, ch := range chromeChannels {
		channels[strings.ToUpper(guid)] = ch
	}

	defs := []Definition{
		{
			ID:     "chrome",
			Binary: "chrome.exe",
			Probes: expand(
				dirProbe("LOCALAPPDATA", `Google\Chrome\Application`),
				dirProbe("LOCALAPPDATA", `Google\Chrome SxS\Application`), // canary
				programFiles(`Google\Chrome\Application`),
				regProbe(`Google\Update`, "LastInstallerSuccessLaunchCmdLine"),
				regParentProbe(`Microsoft\Windows\CurrentVersion\App Paths\chrome.exe`),
				startMenu("Google Chrome"),
				inPath(),
				envProbe("CHROME_BIN"),
				customProbe(chromeUpdateClientsProbe),
				customProbe(chromeProgIDProbe),
			),
			Post: chromePostHook(channels),
		},
		{
			ID:     "chromium",
			Binary: "chrome.exe",
			// No inPath probe: the binary filename collides with chrome's
			Probes: expand(
				dirProbe("LOCALAPPDATA", `Chromium\Application`),
				regProbe("Chromium", "InstallerSuccessLaunchCmdLine"),
				envProbe("CHROMIUM_BIN"),
			),
		},
		{
			ID:     "firefox",
			Binary: "firefox.exe",
			Probes: expand(
				programFiles(`Mozilla Firefox`),
				programFiles(`Firefox Developer Edition`),
				programFiles(`Firefox Nightly`),
				startMenu(""),
				regProbe(`Mozilla\Mozilla Firefox`, "PathToExe"),
				versionRegProbe(`Mozilla\Mozilla Firefox`, "CurrentVersion", `Mozilla\Mozilla Firefox\%s\Main`, "PathToExe"),
				inPath(),
			),
			Post: firefoxPostHook,
		},
		{
			ID:     "ie",
			Binary: "iexplore.exe",
			Probes: expand(
				programFiles(`Internet Explorer`),
				startMenu(""),
				inPath(),
			),
		},
		{
			ID:     "maxthon",
			Binary: "Maxthon.exe",
			Probes: expand(
				programFiles(`Maxthon\Bin`),
				startMenu(""),
				regProbe(`Classes\MaxthonAddonFile\shell\open\command`, ""),
				inPath(),
			),
		},
		{
			ID: "phantomjs",
			// No forced extension so PATH shims (.cmd wrappers) are found
			// and resolved by the pre-hook
			Binary: "phantomjs",
			Probes: expand(
				inPath(),
				envProbe("PHANTOMJS_BIN"),
				customProbe(phantomPackageProbe),
			),
			Pre: phantomPreHook,
		},
		{
			ID:     "opera",
			Binary: "Launcher.exe",
			Probes: expand(
				operaVariantProbes("Opera", "OperaStable"),
				operaVariantProbes("Opera beta", "OperaBeta"),
				operaVariantProbes("Opera developer", "OperaDeveloper"),
				inPath(),
			),
			Post: operaPostHook,
		},
		{
			// Incomplete by design: Safari for Windows is long
			// discontinued and these probes cover what installers left
			// behind
			ID:     "safari",
			Binary: "safari.exe",
			Probes: expand(
				startMenu(""),
				regProbe(`Apple Computer, Inc.\Safari`, "BrowserExe"),
				inPath(),
			),
		},
		{
			ID:     "yandex",
			Binary: "browser.exe",
			Probes: expand(
				dirProbe("LOCALAPPDATA", `Yandex\YandexBrowser\Application`),
				regProbe("YandexBrowser", "InstallerSuccessLaunchCmdLine"),
				startMenu(""),
				inPath(),
			),
		},
	}

	r := &Registry{defs: make(map[string]Definition, len(defs)), channels: channels}
	for _, def := range defs {
		r.defs[def.ID] = def
		r.ids = append(r.ids, def.ID)
	}
	sort.Strings(r.ids)
	return r
}

// Lookup returns the definition for a browser identifier,
// case-insensitively.
func (r *Registry) Lookup(id string) (Definition, bool) {
	def, ok := r.defs[strings.ToLower(id)]
	return def, ok
}

// IDs returns every known browser identifier, sorted
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// ChromeChannels returns the GUID-to-channel mapping the table was
// built with.
func (r *Registry) ChromeChannels() map[string]string {
	out := make(map[string]string, len(r.channels))
	for guid, ch := range r.channels {
		out[guid] = ch
	}
	return out
}

// probeSet lets definition entries contribute one probe or several
// (programFiles expands to two dir probes).
type probeSet []Probe

func expand(sets ...probeSet) []Probe {
	var probes []Probe
	for _, s := range sets {
		probes = append(probes, s...)
	}
	return probes
}

func envProbe(name string) probeSet {
	return probeSet{{Kind: core.ProbeEnv, EnvVar: name}}
}

func dirProbe(envVar, relPath string) probeSet {
	return probeSet{{Kind: core.ProbeDir, EnvVar: envVar, RelPath: relPath}}
}

// programFiles expands to two dir probes covering the native and WoW64
// Program Files locations.
func programFiles(relPath string) probeSet {
	return probeSet{
		{Kind: core.ProbeDir, EnvVar: "ProgramFiles", RelPath: relPath},
		{Kind: core.ProbeDir, EnvVar: "ProgramFiles(x86)", RelPath: relPath},
	}
}

func regProbe(key, valueName string) probeSet {
	return probeSet{{Kind: core.ProbeRegistry, Key: key, ValueName: valueName}}
}

// regParentProbe reads a key whose value names the directory holding
// the binary rather than the binary itself.
func regParentProbe(key string) probeSet {
	return probeSet{{Kind: core.ProbeRegistry, Key: key, PathIsParentDir: true}}
}

func versionRegProbe(versionKey, versionValueName, keyTemplate, valueName string) probeSet {
	return probeSet{{
		Kind:             core.ProbeVersionRegistry,
		VersionKey:       versionKey,
		VersionValueName: versionValueName,
		Key:              keyTemplate,
		ValueName:        valueName,
	}}
}

func startMenu(pattern string) probeSet {
	return probeSet{{Kind: core.ProbeStartMenu, Pattern: pattern}}
}

func inPath() probeSet {
	return probeSet{{Kind: core.ProbeInPath}}
}

func customProbe(fn CustomProbe) probeSet {
	return probeSet{{Kind: core.ProbeCustom, Custom: fn}}
}

// operaVariantProbes builds the per-variant probe triple for one Opera
// install flavor. dirName is the Program Files directory ("Opera beta"),
// clientName the registered client identifier ("OperaBeta").
func operaVariantProbes(dirName, clientName string) probeSet {
	return expand(
		programFiles(dirName),
		regProbe(`Clients\StartMenuInternet\`+clientName+`\shell\open\command`, ""),
		regProbe(`Classes\`+clientName+`\shell\open\command`, ""),
	)
}
