package catplist

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// MarshalJSON encodes the value as JSON. Mappings keep their key order, bytes are
// base64 encoded, UUIDs and date-times are strings. Non finite floats and decode
// errors, which have no JSON form, are encoded as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil

	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}

		return json.Marshal(v.f)

	case KindUUID:
		return json.Marshal(v.id.String())

	case KindDateTime:
		return json.Marshal(v.t.Format(time.RFC3339Nano))

	case KindDecodeError:
		return json.Marshal(errorPrefix + v.s)

	case KindSequence:
		return json.Marshal(v.seq)

	case KindMapping:
		return v.m.MarshalJSON()

	default:
		return json.Marshal(v.Interface())
	}
}

func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for idx, key := range m.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		encodedValue, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
