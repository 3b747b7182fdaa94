package winreg

import (
	"context"
	"errors"
)

// Hive is a registry root
type Hive uint8

const (
	HiveLocalMachine Hive = iota
	HiveCurrentUser
)

// View selects the 64-bit or 32-bit (WoW64) registry view
type View uint8

const (
	View64 View = iota
	View32
)

// Location is one hive/view combination
type Location struct {
	Hive Hive
	View View
}

// Result is a value read from one location
type Result struct {
	Location
	Key  string
	Name string
	Data string
}

// KeyRef points at a key in one concrete location
type KeyRef struct {
	Location
	Path string
}

var (
	// ErrNotExist reports that a key or value is absent everywhere
	ErrNotExist = errors.New("winreg: key or value does not exist")

	// ErrUnsupported reports that no registry is available on this platform
	ErrUnsupported = errors.New("winreg: registry not available on this platform")
)

// Reader provides read-only access to the registry. Key paths are given
// relative to Software\ and are queried across local-machine and
// current-user hives in both 64-bit and 32-bit views; callers receive
// every location that holds the key.
type Reader interface {
	// QueryValue reads the named string value under every applicable
	// location. Name "" reads the key's default value.
	QueryValue(ctx context.Context, key, name string) ([]Result, error)

	// EnumSubkeys lists the direct subkeys of key under every location
	EnumSubkeys(ctx context.Context, key string) ([]KeyRef, error)

	// ValueAt reads one value at an exact location
	ValueAt(ctx context.Context, loc Location, key, name string) (string, error)
}

// Locations returns every hive/view combination in query order
func Locations() []Location {
	return []Location{
		{HiveLocalMachine, View64},
		{HiveLocalMachine, View32},
		{HiveCurrentUser, View64},
		{HiveCurrentUser, View32},
	}
}

// String returns the conventional hive abbreviation
func (h Hive) String() string {
	if h == HiveCurrentUser {
		return "HKCU"
	}
	return "HKLM"
}

// Bitness returns "64" or "32" for the view
func (v View) Bitness() string {
	if v == View32 {
		return "32"
	}
	return "64"
}
