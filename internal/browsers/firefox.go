package browsers

import (
	"regexp"
	"strings"

	"github.com/quantmind-br/browserscout/internal/core"
)

// Pre-release suffix of a Mozilla version string: 78.0a1, 91.2b3,
// 102.0rc1, 115.3.1esr
var firefoxVersionRe = regexp.MustCompile(`^\d+(?:\.\d+)+(a\d*|b\d*|rc\d*|esr)?$`)

// firefoxChannelFromVersion classifies a Firefox version string into its
// release track.
func firefoxChannelFromVersion(version string) core.Channel {
	m := firefoxVersionRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(version)))
	if m == nil {
		return core.ChannelRelease
	}
	switch {
	case m[1] == "":
		return core.ChannelRelease
	case m[1] == "esr":
		return core.ChannelESR
	case strings.HasPrefix(m[1], "rc"):
		return core.ChannelRC
	case strings.HasPrefix(m[1], "a"):
		return core.ChannelAurora
	default:
		return core.ChannelBeta
	}
}

// firefoxPostHook assigns the channel. Product branding wins over the
// version string: Developer Edition and Nightly report plain version
// numbers.
func firefoxPostHook(info core.ExecutableInfo) core.ExecutableInfo {
	name := info.Metadata["ProductName"]
	switch {
	case strings.Contains(name, "Developer Edition"):
		info.Channel = core.ChannelDeveloper
	case strings.Contains(name, "Nightly"):
		info.Channel = core.ChannelNightly
	default:
		info.Channel = firefoxChannelFromVersion(info.Version)
	}
	return info
}
