package peinfo

import (
	"context"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/spf13/afero"
)

const rtVersion = 16 // RT_VERSION resource type

// PEReader reads metadata straight from the PE image: machine code from
// the file header and versions from the RT_VERSION resource.
type PEReader struct {
	fs afero.Fs
}

// NewPEReader creates a PE metadata reader over the given filesystem
func NewPEReader(fs afero.Fs) *PEReader {
	return &PEReader{fs: fs}
}

// Read extracts metadata from the executable at path
func (r *PEReader) Read(ctx context.Context, path string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := pe.NewFile(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer img.Close()

	info := &Info{
		Architecture: img.FileHeader.Machine,
		Strings:      make(map[string]string),
	}

	raw, err := versionResource(img)
	if err != nil {
		return nil, err
	}
	if err := parseVersionBlock(raw, info); err != nil {
		return nil, err
	}

	return info, nil
}

// versionResource locates the first RT_VERSION entry in the .rsrc
// section and returns its raw bytes.
func versionResource(img *pe.File) ([]byte, error) {
	sect := img.Section(".rsrc")
	if sect == nil {
		return nil, ErrNoVersionInfo
	}
	data, err := sect.Data()
	if err != nil {
		return nil, fmt.Errorf("read .rsrc: %w", err)
	}

	// Walk type -> name -> language directory levels
	off, ok := findDirEntry(data, 0, rtVersion)
	if !ok {
		return nil, ErrNoVersionInfo
	}
	off, ok = firstDirEntry(data, off)
	if !ok {
		return nil, ErrNoVersionInfo
	}
	off, ok = firstDirEntry(data, off)
	if !ok {
		return nil, ErrNoVersionInfo
	}

	// off now points at an IMAGE_RESOURCE_DATA_ENTRY
	if int(off)+16 > len(data) {
		return nil, ErrNoVersionInfo
	}
	rva := binary.LittleEndian.Uint32(data[off:])
	size := binary.LittleEndian.Uint32(data[off+4:])
	start := int64(rva) - int64(sect.VirtualAddress)
	if start < 0 || start+int64(size) > int64(len(data)) {
		return nil, ErrNoVersionInfo
	}
	return data[start : start+int64(size)], nil
}

// findDirEntry scans a resource directory for an ID entry and returns
// the offset it points at, masking the subdirectory bit.
func findDirEntry(data []byte, dirOff uint32, id uint32) (uint32, bool) {
	if int(dirOff)+16 > len(data) {
		return 0, false
	}
	named := binary.LittleEndian.Uint16(data[dirOff+12:])
	byID := binary.LittleEndian.Uint16(data[dirOff+14:])
	entries := dirOff + 16

	for i := uint32(0); i < uint32(named)+uint32(byID); i++ {
		entryOff := entries + i*8
		if int(entryOff)+8 > len(data) {
			return 0, false
		}
		name := binary.LittleEndian.Uint32(data[entryOff:])
		target := binary.LittleEndian.Uint32(data[entryOff+4:])
		if name == id {
			return target &^ 0x80000000, true
		}
	}
	return 0, false
}

// firstDirEntry returns the target of the first entry of a directory
func firstDirEntry(data []byte, dirOff uint32) (uint32, bool) {
	if int(dirOff)+16 > len(data) {
		return 0, false
	}
	named := binary.LittleEndian.Uint16(data[dirOff+12:])
	byID := binary.LittleEndian.Uint16(data[dirOff+14:])
	if named == 0 && byID == 0 {
		return 0, false
	}
	entryOff := dirOff + 16
	if int(entryOff)+8 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[entryOff+4:]) &^ 0x80000000, true
}

// block is one node of the VS_VERSIONINFO tree
type block struct {
	key      string
	value    []byte
	children []block
}

// parseVersionBlock decodes a VS_VERSIONINFO resource into info
func parseVersionBlock(raw []byte, info *Info) error {
	root, err := parseBlock(raw)
	if err != nil {
		return err
	}
	if root.key != "VS_VERSION_INFO" {
		return ErrNoVersionInfo
	}

	if len(root.value) >= 52 && binary.LittleEndian.Uint32(root.value) == 0xfeef04bd {
		ms := binary.LittleEndian.Uint32(root.value[8:])
		ls := binary.LittleEndian.Uint32(root.value[12:])
		info.FixedVersion = fmt.Sprintf("%d.%d.%d.%d", ms>>16, ms&0xffff, ls>>16, ls&0xffff)
	}

	for _, child := range root.children {
		if child.key != "StringFileInfo" {
			continue
		}
		for _, table := range child.children {
			for _, entry := range table.children {
				info.Strings[entry.key] = decodeUTF16(entry.value)
			}
		}
	}

	info.FileVersion = info.Strings["FileVersion"]
	info.ProductVersion = info.Strings["ProductVersion"]
	return nil
}

// parseBlock decodes one length-prefixed version block and its children
func parseBlock(data []byte) (block, error) {
	var b block
	if len(data) < 6 {
		return b, ErrNoVersionInfo
	}
	length := int(binary.LittleEndian.Uint16(data))
	valueLen := int(binary.LittleEndian.Uint16(data[2:]))
	isText := binary.LittleEndian.Uint16(data[4:]) == 1
	if length > len(data) || length < 6 {
		return b, ErrNoVersionInfo
	}

	// Key: null-terminated UTF-16 starting at offset 6
	off := 6
	for off+1 < length {
		if data[off] == 0 && data[off+1] == 0 {
			break
		}
		off += 2
	}
	b.key = decodeUTF16(data[6:off])
	off += 2
	off = align4(off)

	// Value: text lengths are in 16-bit words, binary lengths in bytes
	valueBytes := valueLen
	if isText {
		valueBytes = valueLen * 2
	}
	if off+valueBytes > length {
		return b, ErrNoVersionInfo
	}
	b.value = data[off : off+valueBytes]
	off = align4(off + valueBytes)

	for off < length {
		child, err := parseBlock(data[off:length])
		if err != nil {
			break
		}
		b.children = append(b.children, child)
		childLen := int(binary.LittleEndian.Uint16(data[off:]))
		if childLen == 0 {
			break
		}
		off = align4(off + childLen)
	}
	return b, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// decodeUTF16 converts little-endian UTF-16 bytes, dropping a trailing NUL
func decodeUTF16(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, binary.LittleEndian.Uint16(b[i:]))
	}
	for len(u) > 0 && u[len(u)-1] == 0 {
		u = u[:len(u)-1]
	}
	return string(utf16.Decode(u))
}
