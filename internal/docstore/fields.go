package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Validate rejects nil values anywhere in the document.
func (f Fields) Validate() error {
	return checkNil("", map[string]any(f))
}

func checkNil(prefix string, m map[string]any) error {
	for k, v := range m {
		if err := checkNilValue(prefix+k, v); err != nil {
			return err
		}
	}
	return nil
}

func checkNilValue(name string, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("%w: %s", ErrNilField, name)
	case map[string]any:
		return checkNil(name+".", val)
	case Fields:
		return checkNil(name+".", val)
	case []any:
		for i, e := range val {
			if err := checkNilValue(fmt.Sprintf("%s[%d]", name, i), e); err != nil {
				return err
			}
		}
	}
	return nil
}

// Normalize returns a deep copy holding only JSON value types. Numbers are
// kept as json.Number so integer amounts never lose precision.
func Normalize(f Fields) (Fields, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return DecodeFields(raw)
}

// DecodeFields parses a JSON object into Fields.
func DecodeFields(raw []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Fields
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	if out == nil {
		out = Fields{}
	}
	return out, nil
}

// Encode converts a JSON-tagged struct into Fields.
func Encode(v any) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return DecodeFields(raw)
}

// Decode fills a JSON-tagged struct from Fields.
func (f Fields) Decode(v any) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}

func sameValue(a, b any) bool {
	na, errA := normalizeValue(a)
	nb, errB := normalizeValue(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func normalizeValue(v any) (any, error) {
	f, err := Normalize(Fields{"v": v})
	if err != nil {
		return nil, err
	}
	return f["v"], nil
}

// MarshalFields encodes fields as a JSON object.
func MarshalFields(f Fields) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return raw, nil
}
