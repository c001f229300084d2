package catplist

import (
	"fmt"
	"github.com/google/uuid"
	"regexp"
)

// uuidPattern matches the canonical text form of a version 4 UUID.
var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// PromoteText returns a UUID value if text is a version 4 UUID in canonical form, and
// a text value otherwise.
func PromoteText(text string) Value {
	if !uuidPattern.MatchString(text) {
		return Text(text)
	}

	id, err := uuid.Parse(text)
	if err != nil {
		return Text(text)
	}

	return UUID(id)
}

// uuidArray splits data into 16 byte chunks and decodes each one as a binary UUID.
func uuidArray(data []byte) (Value, error) {
	if len(data)%16 != 0 {
		return Value{}, fmt.Errorf("uuid array of %d bytes is not a multiple of 16", len(data))
	}

	ids := make([]Value, 0, len(data)/16)
	for offset := 0; offset < len(data); offset += 16 {
		id, err := uuid.FromBytes(data[offset : offset+16])
		if err != nil {
			return Value{}, fmt.Errorf("uuid at offset %d: %w", offset, err)
		}

		ids = append(ids, UUID(id))
	}

	return Sequence(ids...), nil
}
