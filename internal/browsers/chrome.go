package browsers

import (
	"context"
	"strings"

	"github.com/quantmind-br/browserscout/internal/core"
	"github.com/quantmind-br/browserscout/internal/helpers"
)

const updateClientsKey = `Google\Update\Clients`

// DefaultChromeChannels maps the Google Update client GUIDs the Chrome
// installers register to their release channels. Overridable through
// configuration.
var DefaultChromeChannels = map[string]string{
	"{8A69D345-D564-463C-AFF1-A69D9E530F96}": "stable",
	"{8237E44A-0054-442C-B6B6-EA0509993955}": "beta",
	"{401C381F-E0DE-4B85-8BD8-3F3F14FBDA57}": "dev",
	"{4EA16AC7-FD5A-47C3-875B-DBF4A2008C20}": "canary",
}

// Channel-specific HTML ProgIDs registered by the Chrome installers
var chromeProgIDs = map[string]string{
	"ChromeHTML":  "stable",
	"ChromeBHTML": "beta",
	"ChromeSSHTM": "canary",
}

// chromeUpdateClientsProbe enumerates the Google Update Clients subtree.
// Every client subkey is one installed Google product keyed by GUID;
// each lookup runs as its own spawned sub-probe since the fan-out size
// is only known after enumeration.
func chromeUpdateClientsProbe(ctx context.Context, pc ProbeContext) {
	refs, err := pc.Registry.EnumSubkeys(ctx, updateClientsKey)
	if err != nil {
		pc.Log.Debug().Err(err).Str("key", updateClientsKey).Msg("update clients enumeration failed")
		return
	}

	for _, ref := range refs {
		ref := ref
		pc.Spawn(func(ctx context.Context) {
			launch, err := pc.Registry.ValueAt(ctx, ref.Location, ref.Path, "LastInstallerSuccessLaunchCmdLine")
			if err != nil {
				return
			}
			path := helpers.ExtractExecutable(launch)
			if path == "" {
				return
			}

			guid := strings.ToUpper(helpers.BaseName(ref.Path))
			channel, known := pc.ChromeChannels[guid]
			if !known {
				// The Clients subtree registers every Google product;
				// an unmapped GUID must advertise itself as Chrome.
				name, err := pc.Registry.ValueAt(ctx, ref.Location, ref.Path, "name")
				if err != nil || !strings.Contains(strings.ToLower(name), "chrome") {
					return
				}
			}

			extra := map[string]string{
				"guid":    guid,
				"bitness": ref.View.Bitness(),
			}
			if known {
				extra["channel"] = channel
			}
			if uninstall, err := pc.Registry.ValueAt(ctx, ref.Location, ref.Path, "UninstallString"); err == nil {
				extra["uninstall"] = uninstall
			}

			pc.Report(path, extra)
		})
	}
}

// chromeProgIDProbe checks the HTML handler registrations each Chrome
// channel installs under Software\Classes.
func chromeProgIDProbe(ctx context.Context, pc ProbeContext) {
	for progID, channel := range chromeProgIDs {
		progID, channel := progID, channel
		pc.Spawn(func(ctx context.Context) {
			results, err := pc.Registry.QueryValue(ctx, `Classes\`+progID+`\shell\open\command`, "")
			if err != nil {
				return
			}
			for _, res := range results {
				path := helpers.ExtractExecutable(res.Data)
				if path == "" {
					continue
				}
				pc.Report(path, map[string]string{
					"channel": channel,
					"bitness": res.View.Bitness(),
				})
			}
		})
	}
}

// chromePostHook derives the release channel for records whose probes
// did not source one. The GUID mapping is configuration data; the
// install-path fallback covers the canary side-by-side layout.
func chromePostHook(channels map[string]string) PostHook {
	return func(info core.ExecutableInfo) core.ExecutableInfo {
		if info.Channel != "" {
			return info
		}
		if info.GUID != "" {
			if ch, ok := channels[strings.ToUpper(info.GUID)]; ok {
				info.Channel = core.Channel(ch)
				return info
			}
		}
		if strings.Contains(strings.ToLower(info.Path), `chrome sxs`) {
			info.Channel = core.ChannelCanary
			return info
		}
		info.Channel = core.ChannelStable
		return info
	}
}
