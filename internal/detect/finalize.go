package detect

import (
	"context"
	"sort"

	"github.com/quantmind-br/browserscout/internal/browsers"
	"github.com/quantmind-br/browserscout/internal/core"
	"github.com/quantmind-br/browserscout/internal/helpers"
)

// finalize turns one browser's raw candidates into verified records:
// normalize and pre-hook, dedup by case-folded path, metadata
// enrichment, filtering, post-hook. seen is shared across browsers so a
// path never yields two records even when different browsers discover
// it; the caller invokes finalize in browser-identifier order to keep
// the winner deterministic.
func (d *Detector) finalize(ctx context.Context, def browsers.Definition, cands []core.Candidate, seen map[string]struct{}) []core.ExecutableInfo {
	var infos []core.ExecutableInfo
	log := d.opts.Log

	orderCandidates(def, cands)
	for _, cand := range cands {
		path := helpers.CleanPath(cand.RawPath)

		if def.Pre != nil {
			resolved, ok := d.resolvePreHook(ctx, def, path)
			if !ok {
				log.Debug().Str("browser", def.ID).Str("path", path).Msg("candidate dropped by pre-hook")
				continue
			}
			path = helpers.CleanPath(resolved)
		}

		if !helpers.HasExeExt(path) {
			log.Debug().Str("browser", def.ID).Str("path", path).Msg("candidate rejected: not an executable")
			continue
		}

		key := helpers.NormalizeKey(path)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		meta, err := d.opts.Metadata.Read(ctx, path)
		if err != nil {
			log.Debug().Err(err).Str("browser", def.ID).Str("path", path).Msg("candidate rejected: metadata lookup failed")
			continue
		}
		version := meta.Version()
		if version == "" {
			log.Debug().Str("browser", def.ID).Str("path", path).Msg("candidate rejected: no version string")
			continue
		}

		metadata := make(map[string]string, len(meta.Strings))
		for k, v := range meta.Strings {
			metadata[k] = v
		}

		info := core.ExecutableInfo{
			Name:         def.ID,
			Path:         path,
			Version:      version,
			Architecture: meta.Architecture,
			Metadata:     metadata,
			Channel:      core.Channel(cand.Extra["channel"]),
			Bitness:      cand.Extra["bitness"],
			GUID:         cand.Extra["guid"],
			Uninstall:    cand.Extra["uninstall"],
		}
		if def.Post != nil {
			info = def.Post(info)
		}

		log.Info().
			Str("browser", def.ID).
			Str("path", info.Path).
			Str("version", info.Version).
			Str("channel", string(info.Channel)).
			Msg("browser detected")
		infos = append(infos, info)
	}

	return infos
}

// orderCandidates sorts one browser's candidates into a total order
// before dedup, so the surviving record for a path reported by several
// probes never depends on probe completion order. A candidate carrying
// registry attributes beats a bare path; ties fall back to the
// definition's probe order, then the attribute values, then the path.
func orderCandidates(def browsers.Definition, cands []core.Candidate) {
	rank := make(map[core.ProbeKind]int, len(def.Probes))
	for i, p := range def.Probes {
		if _, ok := rank[p.Kind]; !ok {
			rank[p.Kind] = i
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if (len(a.Extra) > 0) != (len(b.Extra) > 0) {
			return len(a.Extra) > 0
		}
		if ra, rb := rank[a.Origin], rank[b.Origin]; ra != rb {
			return ra < rb
		}
		if a.Extra["channel"] != b.Extra["channel"] {
			return a.Extra["channel"] < b.Extra["channel"]
		}
		return a.RawPath < b.RawPath
	})
}

// resolvePreHook runs the definition's pre-hook, following shim
// replacements up to maxShimDepth levels before giving up.
func (d *Detector) resolvePreHook(ctx context.Context, def browsers.Definition, path string) (string, bool) {
	deps := d.deps()
	for depth := 0; depth < maxShimDepth; depth++ {
		resolved, verdict := def.Pre(ctx, deps, path)
		switch verdict {
		case browsers.HookKeep:
			return resolved, true
		case browsers.HookDrop:
			return "", false
		case browsers.HookRetry:
			path = resolved
		}
	}
	return "", false
}
