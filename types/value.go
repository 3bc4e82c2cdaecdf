// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// ValueKind discriminates the Value variants.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindBytes
)

// Value is the common sum type every script engine's native values convert
// to and from on the way in or out of the kernel. JSON is the canonical
// interchange: Value marshals to and from JSON so it can cross the
// protocol wire or a storage backend without a script-engine-specific
// codec anywhere in the kernel.
type Value struct {
	kind   ValueKind
	b      bool
	n      float64
	s      string
	arr    []Value
	obj    map[string]Value
	bytes  []byte
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64. Script engines with integer types narrow on read.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps an ordered sequence of values.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Object wraps a string-keyed map of values.
func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// Bytes wraps a raw byte slice, used for artifact payloads and anything
// that must not round-trip through a string encoding.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// AsBool returns the boolean payload; ok is false if v is not a KindBool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload; ok is false if v is not a KindNumber.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload; ok is false if v is not a KindString.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns the array payload; ok is false if v is not a KindArray.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the object payload; ok is false if v is not a KindObject.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// AsBytes returns the byte payload; ok is false if v is not a KindBytes.
func (v Value) AsBytes() ([]byte, bool) { return v.bytes, v.kind == KindBytes }

// MarshalJSON renders the Value as plain JSON; KindBytes is a
// base64-encoded JSON string, the way encoding/json renders a []byte, so
// it decodes back as KindString.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return sonic.ConfigFastest.Marshal(v.b)
	case KindNumber:
		return sonic.ConfigFastest.Marshal(v.n)
	case KindString:
		return sonic.ConfigFastest.Marshal(v.s)
	case KindArray:
		return sonic.ConfigFastest.Marshal(v.arr)
	case KindObject:
		return sonic.ConfigFastest.Marshal(v.obj)
	case KindBytes:
		return sonic.ConfigFastest.Marshal(v.bytes)
	default:
		return nil, fmt.Errorf("types: unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON reconstructs a Value from JSON, preserving the
// array-vs-object ambiguity the way the script bridge does: a JSON object
// whose keys are exactly the integer prefix "1".."len" is still decoded as
// KindObject, since JSON never encodes KindBytes/KindArray/KindObject
// ambiguously at this layer — that disambiguation only matters when a
// script engine's own table type is being converted, which is
// scripthost's concern, not this type's.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := sonic.ConfigFastest.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case string:
		return String(x)
	case []any:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = fromAny(e)
		}
		return Array(vs...)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[k] = fromAny(e)
		}
		return Object(m)
	default:
		return Null()
	}
}

// IsArrayShaped reports whether an object's keys are exactly the integer
// prefix "1".."len", the convention scripthost uses to tell a
// script-engine's dict-like table apart from its array-like table when
// only a generic map survives the conversion.
func IsArrayShaped(m map[string]Value) bool {
	for i := 1; i <= len(m); i++ {
		if _, ok := m[fmt.Sprintf("%d", i)]; !ok {
			return false
		}
	}
	return len(m) > 0
}
