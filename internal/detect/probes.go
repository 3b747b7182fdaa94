package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/quantmind-br/browserscout/internal/browsers"
	"github.com/quantmind-br/browserscout/internal/core"
	"github.com/quantmind-br/browserscout/internal/helpers"
	"github.com/quantmind-br/browserscout/internal/winreg"
	"github.com/spf13/afero"
)

const startMenuClientsKey = `Clients\StartMenuInternet`

// runProbe interprets one probe descriptor. ctx bounds the probe and
// is canceled when it returns; scope stays alive for the whole browser
// so sub-lookups spawned by custom probes keep running after the
// spawning probe has returned. Probes only read from the OS; any
// failure is logged and swallowed, never propagated.
func (d *Detector) runProbe(ctx, scope context.Context, def browsers.Definition, p browsers.Probe, deps browsers.Deps, b *barrier, report func(string, map[string]string)) {
	switch p.Kind {
	case core.ProbeEnv:
		d.runEnvProbe(p, report)
	case core.ProbeDir:
		d.runDirProbe(def, p, report)
	case core.ProbeRegistry:
		d.runRegistryProbe(ctx, def, p, report)
	case core.ProbeVersionRegistry:
		d.runVersionRegistryProbe(ctx, p, report)
	case core.ProbeStartMenu:
		d.runStartMenuProbe(ctx, def, p, report)
	case core.ProbeInPath:
		d.runInPathProbe(def, report)
	case core.ProbeCustom:
		p.Custom(ctx, browsers.ProbeContext{
			Deps:   deps,
			Report: report,
			Spawn: func(fn func(ctx context.Context)) {
				b.Reserve(1)
				go func() {
					defer b.Release()
					sctx, cancel := context.WithTimeout(scope, d.opts.ProbeTimeout)
					defer cancel()
					fn(sctx)
				}()
			},
		})
	default:
		d.opts.Log.Error().Str("kind", string(p.Kind)).Msg("unknown probe kind in definition table")
	}
}

// runEnvProbe reports the variable's value as a direct candidate
func (d *Detector) runEnvProbe(p browsers.Probe, report func(string, map[string]string)) {
	if v, ok := d.opts.Env(p.EnvVar); ok && v != "" {
		report(v, nil)
	}
}

// runDirProbe joins an environment base directory with a relative path,
// appending the default binary when the joined path has no executable
// extension.
func (d *Detector) runDirProbe(def browsers.Definition, p browsers.Probe, report func(string, map[string]string)) {
	base, ok := d.opts.Env(p.EnvVar)
	if !ok || base == "" {
		return
	}
	path := helpers.JoinPath(base, p.RelPath)
	if !helpers.HasExeExt(path) {
		path = helpers.JoinPath(path, def.Binary)
	}
	if ok, _ := afero.Exists(d.opts.Fs, path); ok {
		report(path, nil)
	}
}

// runRegistryProbe queries one value across every hive/view
func (d *Detector) runRegistryProbe(ctx context.Context, def browsers.Definition, p browsers.Probe, report func(string, map[string]string)) {
	results, err := d.opts.Registry.QueryValue(ctx, p.Key, p.ValueName)
	if err != nil {
		d.opts.Log.Debug().Err(err).Str("key", p.Key).Msg("registry probe failed")
		return
	}
	for _, res := range results {
		path := helpers.ExtractExecutable(res.Data)
		if path == "" {
			continue
		}
		if p.PathIsParentDir {
			path = helpers.JoinPath(path, def.Binary)
		}
		report(path, nil)
	}
}

// runVersionRegistryProbe reads a version string, substitutes it into
// the templated key path, and reads the executable path from the
// computed key. Both reads happen in the same hive/view.
func (d *Detector) runVersionRegistryProbe(ctx context.Context, p browsers.Probe, report func(string, map[string]string)) {
	for _, loc := range winreg.Locations() {
		version, err := d.opts.Registry.ValueAt(ctx, loc, p.VersionKey, p.VersionValueName)
		if err != nil || version == "" {
			continue
		}
		key := fmt.Sprintf(p.Key, version)
		data, err := d.opts.Registry.ValueAt(ctx, loc, key, p.ValueName)
		if err != nil {
			continue
		}
		if path := helpers.ExtractExecutable(data); path != "" {
			report(path, nil)
		}
	}
}

// runStartMenuProbe searches the Start Menu internet-application
// registrations. With a pattern the display name is fuzzy-matched;
// without one the registered command must launch the browser's default
// binary.
func (d *Detector) runStartMenuProbe(ctx context.Context, def browsers.Definition, p browsers.Probe, report func(string, map[string]string)) {
	refs, err := d.opts.Registry.EnumSubkeys(ctx, startMenuClientsKey)
	if err != nil {
		d.opts.Log.Debug().Err(err).Msg("start menu enumeration failed")
		return
	}
	for _, ref := range refs {
		cmdline, err := d.opts.Registry.ValueAt(ctx, ref.Location, ref.Path+`\shell\open\command`, "")
		if err != nil {
			continue
		}
		exe := helpers.ExtractExecutable(cmdline)
		if exe == "" {
			continue
		}

		if p.Pattern != "" {
			display, err := d.opts.Registry.ValueAt(ctx, ref.Location, ref.Path, "")
			if err != nil || display == "" {
				display = helpers.BaseName(ref.Path)
			}
			if !fuzzy.MatchFold(p.Pattern, display) {
				continue
			}
		} else if !strings.EqualFold(helpers.BaseName(exe), def.Binary) {
			continue
		}

		report(exe, nil)
	}
}

// runInPathProbe searches every PATH directory for the default binary.
// A binary declared without extension is also looked up as a command
// shim (.exe, .cmd, .bat).
func (d *Detector) runInPathProbe(def browsers.Definition, report func(string, map[string]string)) {
	pathVar, ok := d.opts.Env("PATH")
	if !ok || pathVar == "" {
		return
	}

	names := []string{def.Binary}
	if !helpers.HasAnyExt(def.Binary) {
		names = []string{def.Binary + ".exe", def.Binary + ".cmd", def.Binary + ".bat"}
	}

	for _, dir := range strings.Split(pathVar, ";") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		for _, name := range names {
			candidate := helpers.JoinPath(dir, name)
			if ok, _ := afero.Exists(d.opts.Fs, candidate); ok {
				report(candidate, nil)
			}
		}
	}
}
