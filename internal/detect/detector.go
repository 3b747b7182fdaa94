// Package detect implements the probe-orchestration engine: it fans out
// every probe of every requested browser concurrently, joins on a
// counting barrier per browser, then normalizes, deduplicates, and
// enriches the merged candidates into the final result set.
package detect

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quantmind-br/browserscout/internal/browsers"
	"github.com/quantmind-br/browserscout/internal/core"
	"github.com/quantmind-br/browserscout/internal/npm"
	"github.com/quantmind-br/browserscout/internal/peinfo"
	"github.com/quantmind-br/browserscout/internal/winreg"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const defaultProbeTimeout = 10 * time.Second

// Pre-hook shim resolution is capped regardless of what the hook does,
// so mutually-referencing shims cannot loop.
const maxShimDepth = 2

// Options configures a Detector. Zero-value fields get production
// defaults.
type Options struct {
	Fs       afero.Fs
	Env      func(name string) (string, bool)
	Registry winreg.Reader
	Metadata peinfo.Reader
	Packages npm.Resolver
	Browsers *browsers.Registry
	Log      *zerolog.Logger

	// ProbeTimeout bounds each individual probe
	ProbeTimeout time.Duration

	// OnProbeDone, if set, is called once per completed probe
	// (sub-lookups spawned by custom probes excluded)
	OnProbeDone func()
}

// Detector runs browser detection. Safe for concurrent use; it holds no
// state across Detect calls.
type Detector struct {
	opts Options
}

// New creates a Detector, filling unset options with OS-backed defaults
func New(opts Options) *Detector {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Env == nil {
		opts.Env = os.LookupEnv
	}
	if opts.Registry == nil {
		opts.Registry = winreg.NewOSReader()
	}
	if opts.Metadata == nil {
		opts.Metadata = peinfo.NewPEReader(opts.Fs)
	}
	if opts.Packages == nil {
		opts.Packages = npm.NewFSResolverWithEnv(opts.Fs, opts.Env)
	}
	if opts.Browsers == nil {
		opts.Browsers = browsers.NewRegistry(nil)
	}
	if opts.Log == nil {
		nop := zerolog.Nop()
		opts.Log = &nop
	}
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	return &Detector{opts: opts}
}

// Detect locates the requested browsers. Passing no names (or an empty
// slice) detects every known browser. Names are matched
// case-insensitively; an unknown name is a configuration fault and
// fails the whole call. A browser that is simply not installed
// contributes nothing and is never an error.
func (d *Detector) Detect(ctx context.Context, names ...string) ([]core.ExecutableInfo, error) {
	defs, err := d.resolveNames(names)
	if err != nil {
		return nil, err
	}

	// Phase 1: run every probe of every browser concurrently, joining
	// per browser on its counting barrier.
	gathered := make([][]core.Candidate, len(defs))
	var wg sync.WaitGroup
	for i, def := range defs {
		wg.Add(1)
		go func(i int, def browsers.Definition) {
			defer wg.Done()
			gathered[i] = d.gather(ctx, def)
		}(i, def)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: normalize, dedup, and enrich per browser in identifier
	// order so the result set is deterministic regardless of probe
	// completion order.
	results := make([]core.ExecutableInfo, 0)
	seen := make(map[string]struct{})
	for i, def := range defs {
		results = append(results, d.finalize(ctx, def, gathered[i], seen)...)
	}
	return results, nil
}

// TotalProbes reports how many probes a Detect call with the given
// names will schedule. Used for progress display.
func (d *Detector) TotalProbes(names ...string) int {
	defs, err := d.resolveNames(names)
	if err != nil {
		return 0
	}
	total := 0
	for _, def := range defs {
		total += len(def.Probes)
	}
	return total
}

// resolveNames maps requested identifiers to definitions, sorted by ID
func (d *Detector) resolveNames(names []string) ([]browsers.Definition, error) {
	reg := d.opts.Browsers

	ids := names
	if len(ids) == 0 {
		ids = reg.IDs()
	}

	defs := make([]browsers.Definition, 0, len(ids))
	requested := make(map[string]struct{}, len(ids))
	for _, name := range ids {
		def, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown browser identifier %q", name)
		}
		if _, dup := requested[def.ID]; dup {
			continue
		}
		requested[def.ID] = struct{}{}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// deps builds the collaborator bundle handed to probes and hooks
func (d *Detector) deps() browsers.Deps {
	return browsers.Deps{
		Fs:             d.opts.Fs,
		Env:            d.opts.Env,
		Registry:       d.opts.Registry,
		Packages:       d.opts.Packages,
		ChromeChannels: chromeChannelMap(d.opts.Browsers),
		Log:            d.opts.Log,
	}
}

// gather runs every probe of one browser and collects the raw
// candidates. Returns once the browser's barrier reports all reserved
// slots consumed.
func (d *Detector) gather(ctx context.Context, def browsers.Definition) []core.Candidate {
	b := newBarrier()
	deps := d.deps()

	var mu sync.Mutex
	var cands []core.Candidate

	for _, p := range def.Probes {
		p := p
		b.Reserve(1)
		go func() {
			defer func() {
				// Callback before Release so every tick lands before
				// Detect returns
				if d.opts.OnProbeDone != nil {
					d.opts.OnProbeDone()
				}
				b.Release()
			}()
			// Sub-lookups spawned by a probe outlive it, so they derive
			// their timeout from ctx rather than pctx.
			pctx, cancel := context.WithTimeout(ctx, d.opts.ProbeTimeout)
			defer cancel()
			d.runProbe(pctx, ctx, def, p, deps, b, func(path string, extra map[string]string) {
				if strings.TrimSpace(path) == "" {
					return
				}
				d.opts.Log.Debug().
					Str("browser", def.ID).
					Str("probe", string(p.Kind)).
					Str("path", path).
					Msg("candidate reported")
				mu.Lock()
				cands = append(cands, core.Candidate{
					Browser: def.ID,
					RawPath: path,
					Origin:  p.Kind,
					Extra:   extra,
				})
				mu.Unlock()
			})
		}()
	}

	if err := b.Wait(ctx); err != nil {
		d.opts.Log.Warn().Err(err).Str("browser", def.ID).Msg("probe phase interrupted")
	}
	return cands
}

// chromeChannelMap recovers the GUID mapping the registry was built
// with. The registry owns the table; probes only read it.
func chromeChannelMap(reg *browsers.Registry) map[string]string {
	return reg.ChromeChannels()
}
