package catplist

import (
	"errors"
	"fmt"
	"os"
)

var ErrNotRegularFile = errors.New("not a regular file")
var ErrNotPlist = errors.New("not a binary plist")

// File is a decoded property list. It keeps the parsed primitive tree next to its
// normalized form, so both can be rendered.
type File struct {
	// Path is the file the plist was read from, empty for in-memory data.
	Path string

	Raw   Primitive
	Value Value
}

// Open reads and decodes the plist file at path using the default Decoder.
func Open(path string) (*File, error) {
	return dec.Open(path)
}

// Load decodes an in-memory binary plist using the default Decoder.
func Load(data []byte) (*File, error) {
	return dec.Load(data)
}

// Open reads and decodes the plist file at path. A path that does not name a regular
// file fails with ErrNotRegularFile, a file the parser rejects with a *ParseError.
func (d *Decoder) Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w: %w", path, ErrNotRegularFile, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("open %q: %w", path, ErrNotRegularFile)
	}

	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	defer fp.Close()

	raw, err := ParseReader(fp)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	return &File{Path: path, Raw: raw, Value: d.DecodePlist(raw)}, nil
}

// Load decodes an in-memory plist. Data must start with the binary plist header,
// otherwise Load fails with ErrNotPlist.
func (d *Decoder) Load(data []byte) (*File, error) {
	if !hasHeader(data, headerPlist) {
		return nil, ErrNotPlist
	}

	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return &File{Raw: raw, Value: d.DecodePlist(raw)}, nil
}
