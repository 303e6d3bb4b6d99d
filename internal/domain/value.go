package domain

import (
	"encoding/json"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON value. Only the field matching Kind is meaningful.
// The zero Value is null.
type Value struct {
	kind   Kind
	flag   bool
	number json.Number
	text   string
	items  []Value
	object *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Number returns a numeric value holding the literal n.
func Number(n json.Number) Value { return Value{kind: KindNumber, number: n} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// List returns a list value.
func List(items ...Value) Value { return Value{kind: KindList, items: items} }

// Map returns a mapping value. A nil object is treated as empty.
func Map(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindMap, object: o}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsNumber returns the numeric literal and whether v is a Number.
func (v Value) AsNumber() (json.Number, bool) { return v.number, v.kind == KindNumber }

// AsText returns the string and whether v is Text.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsList returns the elements and whether v is a List.
func (v Value) AsList() ([]Value, bool) { return v.items, v.kind == KindList }

// AsMap returns the object and whether v is a Map.
func (v Value) AsMap() (*Object, bool) { return v.object, v.kind == KindMap }

// String returns the plain text form used in output cells. Scalars render
// as their JSON literal except Text, which renders unquoted. Lists and maps
// render their elements separated by commas.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.flag {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.number.String()
	case KindText:
		return v.text
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		keys := v.object.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			val, _ := v.object.Get(k)
			parts[i] = k + ":" + val.String()
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return ""
	}
}

// Object is a mapping that remembers the order keys were first set in.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Set stores val under key. A repeated key keeps its first position.
func (o *Object) Set(key string, val Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = val
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in first-seen order. The slice must not be modified.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}
