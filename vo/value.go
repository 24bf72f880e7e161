package vo

// Kind of a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is the generic result of an extraction. It is a tagged union of
// null, bool, int, float, string, array and object.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	a    []Value
	o    *Object
}

// Object is a string to Value mapping that keeps its insertion order.
type Object struct {
	keys   []string
	values map[string]Value
}

func NewObject() *Object {
	return &Object{
		values: map[string]Value{},
	}
}

func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (v Value, ok bool) {
	v, ok = o.values[key]
	return
}

func (o *Object) Keys() []string {
	return o.keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

func Array(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, a: items}
}

func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, o: o}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool and friends are strict: a variant mismatch yields ok == false,
// there is no implicit conversion between variants.
func (v Value) AsBool() (b bool, ok bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsInt() (i int64, ok bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsFloat() (f float64, ok bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) AsString() (s string, ok bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsArray() (items []Value, ok bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.a, true
}

func (v Value) AsObject() (o *Object, ok bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.o, true
}

// AsStrings returns the value as a string slice, if it is an array and
// every element is a string.
func (v Value) AsStrings() (items []string, ok bool) {
	if v.kind != KindArray {
		return nil, false
	}
	items = make([]string, len(v.a))
	for i, item := range v.a {
		s, okItem := item.AsString()
		if !okItem {
			return nil, false
		}
		items[i] = s
	}
	return items, true
}

// IsEmpty reports whether the inner representation is empty - null, an
// empty string, array or object, or a numeric zero.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindArray:
		return len(v.a) == 0
	case KindObject:
		return v.o == nil || v.o.Len() == 0
	case KindInt:
		return v.i == 0
	case KindFloat:
		return v.f == 0
	default:
		return false
	}
}
