package value

import (
	"strings"

	"github.com/emirpasic/gods/utils"
)

// Attributes and methods of built-in types.

func readOnly(name string, get func(*Value) (*Value, error)) *Attribute {
	return &Attribute{Name: name, Get: get, ReadOnly: true}
}

func method(t *Type, name string, minArgs int, fn NativeFunc) {
	t.AddMethod(name, NewNative(t.Name+"."+name, minArgs, fn), Public)
}

func initBuiltinMembers() {
	initStringMembers()
	initListMembers()
	initDictMembers()
	initExceptionMembers()
}

func argOfKind(inv Invocation, i int, k Kind, fname string) (*Value, error) {
	a := inv.Arg(i)
	if !a.Is(k) {
		return nil, Throwf(inv.Origin, TypeMismatch, "%s: argument %d must be %s, got %s",
			fname, i+1, k, a.typ.Name)
	}
	return a, nil
}

// --- Strings ---------------------------------------------------------------

func initStringMembers() {
	t := StringType
	t.AddAttribute(readOnly("length", func(v *Value) (*Value, error) {
		return Int(int64(len([]rune(v.AsString())))), nil
	}))
	method(t, "upper", 0, func(inv Invocation) (*Value, error) {
		return String(strings.ToUpper(inv.This.AsString())), nil
	})
	method(t, "lower", 0, func(inv Invocation) (*Value, error) {
		return String(strings.ToLower(inv.This.AsString())), nil
	})
	method(t, "trim", 0, func(inv Invocation) (*Value, error) {
		return String(strings.TrimSpace(inv.This.AsString())), nil
	})
	method(t, "split", 1, func(inv Invocation) (*Value, error) {
		sep, err := argOfKind(inv, 0, StringKind, "split")
		if err != nil {
			return nil, err
		}
		parts := strings.Split(inv.This.AsString(), sep.AsString())
		l := NewList()
		for _, p := range parts {
			l.AsList().Append(String(p))
		}
		return l, nil
	})
	method(t, "find", 1, func(inv Invocation) (*Value, error) {
		sub, err := argOfKind(inv, 0, StringKind, "find")
		if err != nil {
			return nil, err
		}
		return Int(int64(RuneIndex(inv.This.AsString(), sub.AsString()))), nil
	})
	method(t, "substr", 1, func(inv Invocation) (*Value, error) {
		return Substring(inv.This, inv.Args, inv)
	})
}

// RuneIndex returns the index of the first occurence of sub in s, counted in runes,
// or -1 if s does not contain sub.
func RuneIndex(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return len([]rune(s[:i]))
}

// Substring implements substr(start[, length]) on string s, counting in runes.
// Ranges are clipped to the string.
func Substring(s *Value, args []*Value, inv Invocation) (*Value, error) {
	runes := []rune(s.AsString())
	if len(args) < 1 || !args[0].Is(IntKind) {
		return nil, Throwf(inv.Origin, TypeMismatch, "substr: start index must be int")
	}
	start := clip(args[0].AsInt(), len(runes))
	end := len(runes)
	if len(args) > 1 {
		if !args[1].Is(IntKind) {
			return nil, Throwf(inv.Origin, TypeMismatch, "substr: length must be int")
		}
		if args[1].AsInt() < 0 {
			return nil, Throwf(inv.Origin, InvalidArgument, "substr: negative length %d", args[1].AsInt())
		}
		if n := args[1].AsInt(); n < int64(len(runes)-start) {
			end = start + int(n)
		}
	}
	return String(string(runes[start:end])), nil
}

func clip(i int64, length int) int {
	if i < 0 {
		return 0
	}
	if i > int64(length) {
		return length
	}
	return int(i)
}

// --- Lists -----------------------------------------------------------------

func initListMembers() {
	t := ListType
	t.AddAttribute(readOnly("length", func(v *Value) (*Value, error) {
		return Int(int64(v.AsList().Len())), nil
	}))
	method(t, "push", 1, func(inv Invocation) (*Value, error) {
		l := inv.This.AsList()
		for _, a := range inv.Args {
			l.Append(a)
		}
		return inv.This, nil
	})
	method(t, "pop", 0, func(inv Invocation) (*Value, error) {
		l := inv.This.AsList()
		if l.Len() == 0 {
			return nil, Throwf(inv.Origin, IndexOutOfRange, "pop from empty list")
		}
		last := l.Elems[l.Len()-1]
		l.Elems = l.Elems[:l.Len()-1]
		return last, nil // reference moves to caller
	})
	method(t, "insert", 2, func(inv Invocation) (*Value, error) {
		l := inv.This.AsList()
		pos, err := argOfKind(inv, 0, IntKind, "insert")
		if err != nil {
			return nil, err
		}
		i := pos.AsInt()
		if i < 0 || i > int64(l.Len()) {
			return nil, Throwf(inv.Origin, IndexOutOfRange, "insert position %d out of range [0..%d]", i, l.Len())
		}
		l.Elems = append(l.Elems, nil)
		copy(l.Elems[i+1:], l.Elems[i:])
		l.Elems[i] = inv.Args[1].AddRef()
		return inv.This, nil
	})
	method(t, "remove", 1, func(inv Invocation) (*Value, error) {
		l := inv.This.AsList()
		i, err := checkIndex("list", inv.Args[0], l.Len())
		if err != nil {
			return nil, err
		}
		removed := l.Elems[i]
		l.Elems = append(l.Elems[:i], l.Elems[i+1:]...)
		return removed, nil
	})
	method(t, "index", 1, func(inv Invocation) (*Value, error) {
		for i, e := range inv.This.AsList().Elems {
			if Equals(e, inv.Args[0]) {
				return Int(int64(i)), nil
			}
		}
		return Int(-1), nil
	})
	method(t, "contains", 1, func(inv Invocation) (*Value, error) {
		for _, e := range inv.This.AsList().Elems {
			if Equals(e, inv.Args[0]) {
				return True, nil
			}
		}
		return False, nil
	})
	method(t, "join", 0, func(inv Invocation) (*Value, error) {
		sep := ""
		if len(inv.Args) > 0 {
			s, err := argOfKind(inv, 0, StringKind, "join")
			if err != nil {
				return nil, err
			}
			sep = s.AsString()
		}
		parts := make([]string, 0, inv.This.AsList().Len())
		for _, e := range inv.This.AsList().Elems {
			s, err := ToString(e)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		return String(strings.Join(parts, sep)), nil
	})
	method(t, "sort", 0, func(inv Invocation) (*Value, error) {
		return inv.This, SortList(inv.This.AsList())
	})
}

// SortList sorts the elements of a list in place, using the compare behavior of
// the elements' types. All elements have to be mutually comparable.
func SortList(l *List) error {
	items := make([]interface{}, l.Len())
	for i, e := range l.Elems {
		items[i] = e
	}
	var cmpErr error
	utils.Sort(items, func(a, b interface{}) int {
		if cmpErr != nil {
			return 0
		}
		c, err := Compare(a.(*Value), b.(*Value))
		if err != nil {
			cmpErr = err
		}
		return c
	})
	if cmpErr != nil {
		return cmpErr
	}
	for i, x := range items {
		l.Elems[i] = x.(*Value)
	}
	return nil
}

// --- Dicts -----------------------------------------------------------------

func initDictMembers() {
	t := DictType
	t.AddAttribute(readOnly("length", func(v *Value) (*Value, error) {
		return Int(int64(v.AsDict().Len())), nil
	}))
	method(t, "keys", 0, func(inv Invocation) (*Value, error) {
		l := NewList()
		for _, k := range inv.This.AsDict().Keys() {
			l.AsList().Append(String(k))
		}
		return l, nil
	})
	method(t, "values", 0, func(inv Invocation) (*Value, error) {
		l := NewList()
		inv.This.AsDict().Each(func(_ string, e *Value) {
			l.AsList().Append(e)
		})
		return l, nil
	})
	method(t, "has", 1, func(inv Invocation) (*Value, error) {
		k, err := argOfKind(inv, 0, StringKind, "has")
		if err != nil {
			return nil, err
		}
		_, found := inv.This.AsDict().Get(k.AsString())
		return Bool(found), nil
	})
	method(t, "remove", 1, func(inv Invocation) (*Value, error) {
		k, err := argOfKind(inv, 0, StringKind, "remove")
		if err != nil {
			return nil, err
		}
		return Bool(inv.This.AsDict().Remove(k.AsString())), nil
	})
}

// --- Exceptions ------------------------------------------------------------

func initExceptionMembers() {
	t := ExceptionType
	t.AddAttribute(readOnly("message", func(v *Value) (*Value, error) {
		return String(v.AsException().Message), nil
	}))
	t.AddAttribute(readOnly("kind", func(v *Value) (*Value, error) {
		return String(string(v.AsException().Category)), nil
	}))
	t.AddAttribute(readOnly("origin", func(v *Value) (*Value, error) {
		org := v.AsException().Origin
		if !org.IsKnown() {
			return Void, nil
		}
		return String(org.String()), nil
	}))
	t.AddAttribute(readOnly("inner", func(v *Value) (*Value, error) {
		inner := v.AsException().Inner
		if inner == nil {
			return Void, nil
		}
		return NewException(inner), nil
	}))
}
