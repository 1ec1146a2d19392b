package value

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/cnf/structhash"
)

// Built-in types. They are fixed at process start.
var (
	VoidType      *Type
	BoolType      *Type
	IntType       *Type
	FloatType     *Type
	StringType    *Type
	ListType      *Type
	DictType      *Type
	CallableType  *Type
	ExceptionType *Type
)

func init() {
	initBuiltinTypes()
	initSingletons()
}

// BuiltinTypes returns the built-in types, in order of their kinds.
func BuiltinTypes() []*Type {
	return []*Type{VoidType, BoolType, IntType, FloatType, StringType, ListType, DictType,
		CallableType, ExceptionType}
}

func initBuiltinTypes() {
	VoidType = NewType("void", VoidKind)
	VoidType.Behavior = Behavior{
		String: func(*Value) (string, error) { return "void", nil },
		Equals: func(a, b *Value) bool { return true },
		Hash:   func(*Value) (uint64, error) { return 0, nil },
	}
	BoolType = NewType("bool", BoolKind)
	BoolType.Behavior = Behavior{
		String: func(v *Value) (string, error) { return strconv.FormatBool(v.AsBool()), nil },
		Equals: func(a, b *Value) bool { return a.AsBool() == b.AsBool() },
		Hash: func(v *Value) (uint64, error) {
			if v.AsBool() {
				return 1, nil
			}
			return 0, nil
		},
	}
	IntType = NewType("int", IntKind)
	IntType.Behavior = Behavior{
		String:  func(v *Value) (string, error) { return strconv.FormatInt(v.AsInt(), 10), nil },
		Equals:  func(a, b *Value) bool { return a.AsInt() == b.AsInt() },
		Hash:    func(v *Value) (uint64, error) { return uint64(v.AsInt()), nil },
		Compare: func(a, b *Value) (int, error) { return cmpInt(a.AsInt(), b.AsInt()), nil },
	}
	FloatType = NewType("float", FloatKind)
	FloatType.Behavior = Behavior{
		String:  func(v *Value) (string, error) { return FormatFloat(v.AsFloat()), nil },
		Equals:  func(a, b *Value) bool { return a.AsFloat() == b.AsFloat() },
		Hash:    func(v *Value) (uint64, error) { return math.Float64bits(v.AsFloat()), nil },
		Compare: func(a, b *Value) (int, error) { return cmpFloat(a.AsFloat(), b.AsFloat()), nil },
	}
	StringType = NewType("str", StringKind)
	StringType.Behavior = Behavior{
		String: func(v *Value) (string, error) { return v.AsString(), nil },
		Equals: func(a, b *Value) bool { return a.AsString() == b.AsString() },
		Hash: func(v *Value) (uint64, error) {
			return contentHash("str", []string{v.AsString()}), nil
		},
		Compare: func(a, b *Value) (int, error) { return strings.Compare(a.AsString(), b.AsString()), nil },
		GetElem: stringElement,
	}
	ListType = NewType("list", ListKind)
	ListType.Behavior = Behavior{
		Destruct: func(v *Value) {
			for _, e := range v.AsList().Elems {
				e.DropRef()
			}
		},
		Copy: func(v *Value) (*Value, error) {
			return NewList(v.AsList().Elems...), nil
		},
		String:  stringifyList,
		Equals:  equalLists,
		Hash:    hashList,
		GetElem: listElement,
		SetElem: setListElement,
	}
	DictType = NewType("dict", DictKind)
	DictType.Behavior = Behavior{
		Destruct: func(v *Value) {
			v.AsDict().Each(func(_ string, e *Value) { e.DropRef() })
		},
		Copy: func(v *Value) (*Value, error) {
			c := NewDict()
			v.AsDict().Each(func(k string, e *Value) { c.AsDict().Put(k, e) })
			return c, nil
		},
		String:  stringifyDict,
		Equals:  equalDicts,
		Hash:    hashDict,
		GetElem: dictElement,
		SetElem: setDictElement,
	}
	CallableType = NewType("function", CallableKind)
	CallableType.Behavior = Behavior{
		String: func(v *Value) (string, error) {
			return "<function " + v.AsCallable().Name() + ">", nil
		},
		Call: func(v *Value, inv Invocation) (*Value, error) {
			return v.AsCallable().Call(inv)
		},
	}
	ExceptionType = NewType("exception", ExceptionKind)
	ExceptionType.Behavior = Behavior{
		String: func(v *Value) (string, error) { return v.AsException().Message, nil },
	}
	initBuiltinMembers()
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// FormatFloat formats a float the way scripts see it.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { // NaN, Inf
		s += ".0"
	}
	return s
}

// --- Hashing ---------------------------------------------------------------

// hashShape is the structure fed to structhash for content hashes.
type hashShape struct {
	Kind  string
	Items []string
}

func contentHash(kind string, items []string) uint64 {
	sum := structhash.Md5(hashShape{Kind: kind, Items: items}, 1)
	return binary.BigEndian.Uint64(sum[:8])
}

func hashList(v *Value) (uint64, error) {
	elems := v.AsList().Elems
	items := make([]string, len(elems))
	for i, e := range elems {
		h, err := Hash(e)
		if err != nil {
			return 0, err
		}
		items[i] = strconv.FormatUint(h, 16)
	}
	return contentHash("list", items), nil
}

func hashDict(v *Value) (uint64, error) {
	d := v.AsDict()
	items := make([]string, 0, d.Len())
	var err error
	d.Each(func(k string, e *Value) {
		if err != nil {
			return
		}
		var h uint64
		h, err = Hash(e)
		items = append(items, k+"="+strconv.FormatUint(h, 16))
	})
	if err != nil {
		return 0, err
	}
	return contentHash("dict", items), nil
}

// --- Stringification and equality of containers ----------------------------

// Repr stringifies a value as an element of a container: strings are quoted.
func Repr(v *Value) (string, error) {
	if v.Is(StringKind) {
		return strconv.Quote(v.AsString()), nil
	}
	return ToString(v)
}

func stringifyList(v *Value) (string, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range v.AsList().Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := Repr(e)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	b.WriteByte(']')
	return b.String(), nil
}

func stringifyDict(v *Value) (string, error) {
	var b strings.Builder
	var err error
	b.WriteByte('{')
	i := 0
	v.AsDict().Each(func(k string, e *Value) {
		if err != nil {
			return
		}
		if i > 0 {
			b.WriteString(", ")
		}
		i++
		var s string
		s, err = Repr(e)
		b.WriteString(strconv.Quote(k))
		b.WriteString(": ")
		b.WriteString(s)
	})
	b.WriteByte('}')
	return b.String(), err
}

func equalLists(a, b *Value) bool {
	la, lb := a.AsList().Elems, b.AsList().Elems
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if !Equals(la[i], lb[i]) {
			return false
		}
	}
	return true
}

func equalDicts(a, b *Value) bool {
	da, db := a.AsDict(), b.AsDict()
	if da.Len() != db.Len() {
		return false
	}
	eq := true
	da.Each(func(k string, e *Value) {
		if !eq {
			return
		}
		other, found := db.Get(k)
		eq = found && Equals(e, other)
	})
	return eq
}

// --- Element access --------------------------------------------------------

func checkIndex(container string, index *Value, length int) (int, error) {
	if !index.Is(IntKind) {
		return 0, Throwf(unknownOrigin, TypeMismatch, "%s index must be int, got %s",
			container, index.typ.Name)
	}
	i := index.AsInt()
	if i < 0 || i >= int64(length) {
		return 0, Throwf(unknownOrigin, IndexOutOfRange, "%s index %d out of range [0..%d)",
			container, i, length)
	}
	return int(i), nil
}

func stringElement(v, index *Value) (*Value, error) {
	runes := []rune(v.AsString())
	i, err := checkIndex("string", index, len(runes))
	if err != nil {
		return nil, err
	}
	return String(string(runes[i])), nil
}

func listElement(v, index *Value) (*Value, error) {
	l := v.AsList()
	i, err := checkIndex("list", index, l.Len())
	if err != nil {
		return nil, err
	}
	return l.Elems[i], nil
}

func setListElement(v, index, elem *Value) error {
	l := v.AsList()
	i, err := checkIndex("list", index, l.Len())
	if err != nil {
		return err
	}
	l.Set(i, elem)
	return nil
}

func dictKey(index *Value) (string, error) {
	if !index.Is(StringKind) {
		return "", Throwf(unknownOrigin, TypeMismatch, "dict key must be str, got %s", index.typ.Name)
	}
	return index.AsString(), nil
}

func dictElement(v, index *Value) (*Value, error) {
	k, err := dictKey(index)
	if err != nil {
		return nil, err
	}
	e, found := v.AsDict().Get(k)
	if !found {
		return nil, Throwf(unknownOrigin, KeyNotFound, "key %q not found in dict", k)
	}
	return e, nil
}

func setDictElement(v, index, elem *Value) error {
	k, err := dictKey(index)
	if err != nil {
		return err
	}
	v.AsDict().Put(k, elem)
	return nil
}
