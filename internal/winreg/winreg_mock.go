package winreg

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Fake is an in-memory Reader for tests. Keys and value names are
// matched case-insensitively, like the real registry.
type Fake struct {
	mu   sync.RWMutex
	data map[Location]map[string]map[string]string // key path -> name -> data
	keys map[Location]map[string]string            // lowered key path -> original
}

// NewFake creates an empty in-memory registry
func NewFake() *Fake {
	return &Fake{
		data: make(map[Location]map[string]map[string]string),
		keys: make(map[Location]map[string]string),
	}
}

// Set stores a value, creating the key and its ancestors
func (f *Fake) Set(loc Location, key, name, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data[loc] == nil {
		f.data[loc] = make(map[string]map[string]string)
		f.keys[loc] = make(map[string]string)
	}

	lowered := strings.ToLower(key)
	if f.data[loc][lowered] == nil {
		f.data[loc][lowered] = make(map[string]string)
	}
	f.data[loc][lowered][strings.ToLower(name)] = data

	// Register the key and every ancestor so subtree enumeration works
	parts := strings.Split(key, `\`)
	for i := 1; i <= len(parts); i++ {
		p := strings.Join(parts[:i], `\`)
		f.keys[loc][strings.ToLower(p)] = p
	}
}

// SetAll stores the same value under every hive/view
func (f *Fake) SetAll(key, name, data string) {
	for _, loc := range Locations() {
		f.Set(loc, key, name, data)
	}
}

// QueryValue reads the named value under every hive/view
func (f *Fake) QueryValue(ctx context.Context, key, name string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var results []Result
	for _, loc := range Locations() {
		values, ok := f.data[loc][strings.ToLower(key)]
		if !ok {
			continue
		}
		data, ok := values[strings.ToLower(name)]
		if !ok {
			continue
		}
		results = append(results, Result{Location: loc, Key: key, Name: name, Data: data})
	}
	if len(results) == 0 {
		return nil, ErrNotExist
	}
	return results, nil
}

// EnumSubkeys lists the direct subkeys of key under every hive/view
func (f *Fake) EnumSubkeys(ctx context.Context, key string) ([]KeyRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	prefix := strings.ToLower(key) + `\`
	var refs []KeyRef
	for _, loc := range Locations() {
		var names []string
		for lowered, original := range f.keys[loc] {
			if !strings.HasPrefix(lowered, prefix) {
				continue
			}
			rest := original[len(prefix):]
			if strings.Contains(rest, `\`) {
				continue // not a direct child
			}
			names = append(names, original)
		}
		sort.Strings(names)
		for _, n := range names {
			refs = append(refs, KeyRef{Location: loc, Path: n})
		}
	}
	if len(refs) == 0 {
		return nil, ErrNotExist
	}
	return refs, nil
}

// ValueAt reads one value at an exact location
func (f *Fake) ValueAt(ctx context.Context, loc Location, key, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	values, ok := f.data[loc][strings.ToLower(key)]
	if !ok {
		return "", ErrNotExist
	}
	data, ok := values[strings.ToLower(name)]
	if !ok {
		return "", ErrNotExist
	}
	return data, nil
}
