package peinfo

import (
	"context"
	"strings"
	"sync"
)

// Fake is an in-memory Reader for tests. Paths are matched
// case-insensitively, like NTFS.
type Fake struct {
	mu    sync.RWMutex
	infos map[string]*Info
	calls map[string]int
}

// NewFake creates an empty fake metadata reader
func NewFake() *Fake {
	return &Fake{
		infos: make(map[string]*Info),
		calls: make(map[string]int),
	}
}

// Set registers metadata for a path
func (f *Fake) Set(path string, info *Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info.Strings == nil {
		info.Strings = make(map[string]string)
	}
	f.infos[strings.ToLower(path)] = info
}

// SetVersion registers minimal metadata with just a version string
func (f *Fake) SetVersion(path, version string) {
	f.Set(path, &Info{
		FileVersion:  version,
		Architecture: MachineAMD64,
	})
}

// Read returns the registered metadata or ErrNoVersionInfo
func (f *Fake) Read(ctx context.Context, path string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls[strings.ToLower(path)]++
	info, ok := f.infos[strings.ToLower(path)]
	f.mu.Unlock()
	if !ok {
		return nil, ErrNoVersionInfo
	}
	return info, nil
}

// Calls reports how many times a path was read
func (f *Fake) Calls(path string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[strings.ToLower(path)]
}
