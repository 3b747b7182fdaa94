//go:build windows

package winreg

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// OSReader reads the live Windows registry via golang.org/x/sys
type OSReader struct{}

// NewOSReader creates the default registry reader
func NewOSReader() *OSReader {
	return &OSReader{}
}

func (l Location) root() registry.Key {
	if l.Hive == HiveCurrentUser {
		return registry.CURRENT_USER
	}
	return registry.LOCAL_MACHINE
}

func (l Location) access(base uint32) uint32 {
	if l.View == View32 {
		return base | registry.WOW64_32KEY
	}
	return base | registry.WOW64_64KEY
}

// QueryValue reads the named string value under every hive/view
func (r *OSReader) QueryValue(ctx context.Context, key, name string) ([]Result, error) {
	var results []Result
	for _, loc := range Locations() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		data, err := r.ValueAt(ctx, loc, key, name)
		if err != nil {
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
func (r *OSReader) EnumSubkeys(ctx context.Context, key string) ([]KeyRef, error) {
	var refs []KeyRef
	for _, loc := range Locations() {
		if err := ctx.Err(); err != nil {
			return refs, err
		}
		k, err := registry.OpenKey(loc.root(), `Software\`+key, loc.access(registry.ENUMERATE_SUB_KEYS))
		if err != nil {
			continue
		}
		names, err := k.ReadSubKeyNames(-1)
		k.Close()
		if err != nil {
			continue
		}
		for _, n := range names {
			refs = append(refs, KeyRef{Location: loc, Path: key + `\` + n})
		}
	}
	if len(refs) == 0 {
		return nil, ErrNotExist
	}
	return refs, nil
}

// ValueAt reads one value at an exact location
func (r *OSReader) ValueAt(ctx context.Context, loc Location, key, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k, err := registry.OpenKey(loc.root(), `Software\`+key, loc.access(registry.QUERY_VALUE))
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("open key %s\\Software\\%s: %w", loc.Hive, key, err)
	}
	defer k.Close()

	data, valtype, err := k.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("read value %q: %w", name, err)
	}
	if valtype == registry.EXPAND_SZ {
		if expanded, err := registry.ExpandString(data); err == nil {
			data = expanded
		}
	}
	return data, nil
}
