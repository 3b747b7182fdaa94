package core

import "time"

// ProbeKind identifies the discovery heuristic that produced a candidate
type ProbeKind string

const (
	ProbeEnv             ProbeKind = "env"
	ProbeDir             ProbeKind = "dir"
	ProbeRegistry        ProbeKind = "registry"
	ProbeVersionRegistry ProbeKind = "version-registry"
	ProbeStartMenu       ProbeKind = "start-menu"
	ProbeInPath          ProbeKind = "in-path"
	ProbeCustom          ProbeKind = "custom"
)

// Channel is a browser release track
type Channel string

const (
	ChannelStable    Channel = "stable"
	ChannelBeta      Channel = "beta"
	ChannelDev       Channel = "dev"
	ChannelDeveloper Channel = "developer"
	ChannelCanary    Channel = "canary"
	ChannelNightly   Channel = "nightly"
	ChannelAurora    Channel = "aurora"
	ChannelRC        Channel = "rc"
	ChannelESR       Channel = "esr"
	ChannelRelease   Channel = "release"
)

// ExeExt is the Windows executable extension; candidates without it are
// never promoted to a result.
const ExeExt = ".exe"

// Candidate is an unverified path reported by a probe. It lives only for
// the duration of one detection run.
type Candidate struct {
	Browser string
	RawPath string
	Origin  ProbeKind

	// Extra carries fields some custom probes source alongside the path
	// (chrome: guid, channel, bitness, uninstall). Post-hooks read it.
	Extra map[string]string
}

// ExecutableInfo is one detected browser executable. Immutable once
// assembled; owned by the returned result slice.
type ExecutableInfo struct {
	Name         string            `json:"name"`
	Path         string            `json:"path"`
	Version      string            `json:"version"`
	Architecture uint16            `json:"architecture"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Channel      Channel           `json:"channel,omitempty"`
	Bitness      string            `json:"bitness,omitempty"`
	GUID         string            `json:"guid,omitempty"`
	Uninstall    string            `json:"uninstall,omitempty"`
}

// ScanRecord is one persisted detection run in the history database
type ScanRecord struct {
	ScanID    string           `json:"scan_id"`
	ScanDate  time.Time        `json:"scan_date"`
	Requested []string         `json:"requested,omitempty"`
	Results   []ExecutableInfo `json:"results"`
}

// Exit codes
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitInvalidArgs = 2
	ExitDatabase    = 5
	ExitInterrupted = 130
)
