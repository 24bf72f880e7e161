package vo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// MarshalJSON writes the value in its natural JSON shape, object keys
// in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		buf := bytes.NewBufferString("[")
		for i, item := range v.a {
			if i > 0 {
				buf.WriteString(",")
			}
			itemBytes, errItem := item.MarshalJSON()
			if errItem != nil {
				return nil, errItem
			}
			buf.Write(itemBytes)
		}
		buf.WriteString("]")
		return buf.Bytes(), nil
	case KindObject:
		buf := bytes.NewBufferString("{")
		for i, key := range v.o.keys {
			if i > 0 {
				buf.WriteString(",")
			}
			keyBytes, errKey := json.Marshal(key)
			if errKey != nil {
				return nil, errKey
			}
			buf.Write(keyBytes)
			buf.WriteString(":")
			valueBytes, errValue := v.o.values[key].MarshalJSON()
			if errValue != nil {
				return nil, errValue
			}
			buf.Write(valueBytes)
		}
		buf.WriteString("}")
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("can not marshal value of kind %d", v.kind)
}

// UnmarshalJSON reads any JSON document back into a Value, preserving
// object key order. Integral numbers become Int, everything else Float.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, errDecode := decodeValue(dec)
	if errDecode != nil {
		return errDecode
	}
	*v = value
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, errTok := dec.Token()
	if errTok != nil {
		return Null(), errTok
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, errKey := dec.Token()
				if errKey != nil {
					return Null(), errKey
				}
				key, okKey := keyTok.(string)
				if !okKey {
					return Null(), errors.New("object key is not a string")
				}
				child, errChild := decodeValue(dec)
				if errChild != nil {
					return Null(), errChild
				}
				obj.Set(key, child)
			}
			// closing brace
			if _, errClose := dec.Token(); errClose != nil {
				return Null(), errClose
			}
			return FromObject(obj), nil
		case '[':
			items := []Value{}
			for dec.More() {
				item, errItem := decodeValue(dec)
				if errItem != nil {
					return Null(), errItem
				}
				items = append(items, item)
			}
			if _, errClose := dec.Token(); errClose != nil {
				return Null(), errClose
			}
			return Array(items), nil
		}
		return Null(), fmt.Errorf("unexpected delimiter %v", t)
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, errInt := strconv.ParseInt(t.String(), 10, 64); errInt == nil {
			return Int(i), nil
		}
		f, errFloat := t.Float64()
		if errFloat != nil {
			return Null(), errFloat
		}
		return Float(f), nil
	case nil:
		return Null(), nil
	}
	return Null(), fmt.Errorf("unexpected token %v", tok)
}
