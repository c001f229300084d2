package catplist

import (
	"bytes"
	"howett.net/plist"
	"io"
)

// ParseError reports a property list that the parser rejected.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid plist: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses a property list in any format supported by howett.net/plist (binary,
// XML, OpenStep) into a primitive tree. Failures are reported as *ParseError.
func Parse(data []byte) (Primitive, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader is like Parse but reads from r.
func ParseReader(r io.ReadSeeker) (Primitive, error) {
	var raw any
	if err := plist.NewDecoder(r).Decode(&raw); err != nil {
		return Primitive{}, &ParseError{Err: err}
	}

	p, err := FromPlist(raw)
	if err != nil {
		return Primitive{}, &ParseError{Err: err}
	}

	return p, nil
}
