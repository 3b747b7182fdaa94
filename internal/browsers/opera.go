package browsers

import (
	"strings"

	"github.com/quantmind-br/browserscout/internal/core"
)

// operaPostHook reads the variant out of the product name: the second
// token of "Opera beta Internet Browser" names the channel, absent for
// the stable build.
func operaPostHook(info core.ExecutableInfo) core.ExecutableInfo {
	name := info.Metadata["ProductName"]
	if name == "" {
		name = info.Metadata["FileDescription"]
	}

	fields := strings.Fields(name)
	if len(fields) >= 2 {
		switch strings.ToLower(fields[1]) {
		case "beta":
			info.Channel = core.ChannelBeta
			return info
		case "developer":
			info.Channel = core.ChannelDeveloper
			return info
		}
	}
	info.Channel = core.ChannelStable
	return info
}
