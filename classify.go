package catplist

import (
	"bytes"
	"fmt"
	"github.com/ulikunitz/xz"
	"io"
)

var (
	headerPlist = []byte("bplist00")

	// seen in front of embedded plists in some iOS photo metadata files
	headerMalformedPlist = []byte("\x0a\xd3\x04bplist00")

	headerXZ = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// BlobKind is the classification of an opaque byte string.
type BlobKind uint8

const (
	BlobOpaque BlobKind = iota
	BlobPlist
	BlobMalformedPlist
	BlobXZ
	BlobUUIDArray
)

func hasHeader(data, header []byte) bool {
	return len(data) > len(header) && bytes.HasPrefix(data, header)
}

// ClassifyBlob inspects the header of data. Header matches take precedence over the
// uuid array hint.
func ClassifyBlob(data []byte, uuidHint bool) BlobKind {
	switch {
	case hasHeader(data, headerPlist):
		return BlobPlist
	case hasHeader(data, headerMalformedPlist):
		return BlobMalformedPlist
	case hasHeader(data, headerXZ):
		return BlobXZ
	case uuidHint:
		return BlobUUIDArray
	default:
		return BlobOpaque
	}
}

// unwrapBlob decodes a byte string according to its classification. Nested plists are
// unwrapped with the object table currently in scope.
func (u *unwrapper) unwrapBlob(data []byte, uuidHint bool) (Value, error) {
	switch ClassifyBlob(data, uuidHint) {
	case BlobPlist:
		return u.unwrapNestedPlist(data)

	case BlobMalformedPlist:
		return u.unwrapNestedPlist(data[len(headerMalformedPlist)-len(headerPlist):])

	case BlobXZ:
		leave, err := u.enter()
		if err != nil {
			return Value{}, err
		}

		defer leave()

		decompressed, err := decompressXZ(data)
		if err != nil {
			return Value{}, err
		}

		return u.unwrapBlob(decompressed, uuidHint)

	case BlobUUIDArray:
		return uuidArray(data)

	default:
		return Bytes(data), nil
	}
}

func (u *unwrapper) unwrapNestedPlist(data []byte) (Value, error) {
	nested, err := Parse(data)
	if err != nil {
		return Value{}, fmt.Errorf("nested plist: %w", err)
	}

	return u.unwrap(nested), nil
}

func decompressXZ(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xz payload: %w", err)
	}

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress xz payload: %w", err)
	}

	return decompressed, nil
}
