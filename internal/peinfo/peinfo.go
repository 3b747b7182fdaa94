package peinfo

import (
	"context"
	"errors"
)

// Machine architecture codes from the PE file header
const (
	MachineI386  uint16 = 0x014c
	MachineAMD64 uint16 = 0x8664
	MachineARM64 uint16 = 0xaa64
)

// Info is the metadata extracted from one executable
type Info struct {
	// FileVersion and ProductVersion come from the StringFileInfo
	// table when present; FixedVersion is always derived from
	// VS_FIXEDFILEINFO. String versions can carry pre-release suffixes
	// ("78.0a1") that the fixed struct cannot represent.
	FileVersion    string
	ProductVersion string
	FixedVersion   string

	// Architecture is the raw machine code from the PE header
	Architecture uint16

	// Strings holds the full StringFileInfo table
	Strings map[string]string
}

// Version returns the best available version string
func (i *Info) Version() string {
	if i.FileVersion != "" {
		return i.FileVersion
	}
	if i.ProductVersion != "" {
		return i.ProductVersion
	}
	return i.FixedVersion
}

// ProductName returns the ProductName string, or ""
func (i *Info) ProductName() string {
	return i.Strings["ProductName"]
}

// FileDescription returns the FileDescription string, or ""
func (i *Info) FileDescription() string {
	return i.Strings["FileDescription"]
}

// ErrNoVersionInfo reports an executable without a version resource
var ErrNoVersionInfo = errors.New("peinfo: no version resource")

// Reader extracts metadata from an executable on disk
type Reader interface {
	Read(ctx context.Context, path string) (*Info, error)
}

// ArchName returns a human-readable name for a machine code
func ArchName(machine uint16) string {
	switch machine {
	case MachineI386:
		return "x86"
	case MachineAMD64:
		return "amd64"
	case MachineARM64:
		return "arm64"
	default:
		return "unknown"
	}
}
