package value

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kind categorizes the payload of a value.
type Kind uint8

// Kinds of values. InstanceKind is the kind of all instances of script-level classes.
const (
	VoidKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	ListKind
	DictKind
	CallableKind
	ExceptionKind
	InstanceKind
)

var kindNames = [...]string{"void", "bool", "int", "float", "str", "list", "dict",
	"callable", "exception", "instance"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("<kind %d>", k)
}

// Value is a runtime value. Clients hold values by pointer; a nil *Value is never
// a valid script value (use Void instead).
type Value struct {
	typ      *Type
	refs     int32
	immortal bool
	data     interface{} // payload, shape determined by typ.Kind
}

// Payload types for containers and class instances.

// List is the payload of list values.
type List struct {
	Elems []*Value
}

// Dict is the payload of dict values. Keys are kept in insertion order.
type Dict struct {
	m *linkedhashmap.Map
}

// Instance is the payload of class instances: one slot per attribute, in the order
// of the type's layout.
type Instance struct {
	Fields []*Value
}

// --- Singletons ------------------------------------------------------------

// Immortal singletons. They ignore reference counting.
var (
	Void  *Value
	True  *Value
	False *Value
	Zero  *Value
	One   *Value
)

func initSingletons() {
	Void = &Value{typ: VoidType, immortal: true}
	True = &Value{typ: BoolType, immortal: true, data: true}
	False = &Value{typ: BoolType, immortal: true, data: false}
	Zero = &Value{typ: IntType, immortal: true, data: int64(0)}
	One = &Value{typ: IntType, immortal: true, data: int64(1)}
}

// --- Constructors for built-in kinds ---------------------------------------

func fresh(t *Type, data interface{}) *Value {
	return &Value{typ: t, refs: 1, data: data}
}

// Bool returns the singleton for b.
func Bool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// Int creates an integer value. 0 and 1 are returned as singletons.
func Int(n int64) *Value {
	switch n {
	case 0:
		return Zero
	case 1:
		return One
	}
	return fresh(IntType, n)
}

// Float creates a float value.
func Float(f float64) *Value {
	return fresh(FloatType, f)
}

// String creates a string value.
func String(s string) *Value {
	return fresh(StringType, s)
}

// NewList creates a list value, taking a reference to each element.
func NewList(elems ...*Value) *Value {
	l := &List{Elems: make([]*Value, 0, len(elems))}
	for _, e := range elems {
		l.Elems = append(l.Elems, e.AddRef())
	}
	return fresh(ListType, l)
}

// NewDict creates an empty dict value.
func NewDict() *Value {
	return fresh(DictType, &Dict{m: linkedhashmap.New()})
}

// NewCallable wraps a callable into a value.
func NewCallable(c Callable) *Value {
	return fresh(CallableType, c)
}

// NewException wraps an exception into a value.
func NewException(e *Exception) *Value {
	return fresh(ExceptionType, e)
}

// --- Accessors -------------------------------------------------------------

// Type returns the type descriptor of a value.
func (v *Value) Type() *Type {
	return v.typ
}

// Kind returns the kind of a value's payload.
func (v *Value) Kind() Kind {
	return v.typ.Kind
}

// Is is a predicate: is v of kind k?
func (v *Value) Is(k Kind) bool {
	return v != nil && v.typ.Kind == k
}

// IsVoid is a predicate: is v the void value?
func (v *Value) IsVoid() bool {
	return v == nil || v.typ.Kind == VoidKind
}

// AsBool returns the payload of a bool value. Panics for other kinds.
func (v *Value) AsBool() bool {
	return v.data.(bool)
}

// AsInt returns the payload of an int value. Panics for other kinds.
func (v *Value) AsInt() int64 {
	return v.data.(int64)
}

// AsFloat returns the payload of a float value. Panics for other kinds.
func (v *Value) AsFloat() float64 {
	return v.data.(float64)
}

// AsString returns the payload of a string value. Panics for other kinds.
func (v *Value) AsString() string {
	return v.data.(string)
}

// AsList returns the payload of a list value. Panics for other kinds.
func (v *Value) AsList() *List {
	return v.data.(*List)
}

// AsDict returns the payload of a dict value. Panics for other kinds.
func (v *Value) AsDict() *Dict {
	return v.data.(*Dict)
}

// AsCallable returns the payload of a callable value. Panics for other kinds.
func (v *Value) AsCallable() Callable {
	return v.data.(Callable)
}

// AsException returns the payload of an exception value. Panics for other kinds.
func (v *Value) AsException() *Exception {
	return v.data.(*Exception)
}

// AsInstance returns the payload of a class instance. Panics for other kinds.
func (v *Value) AsInstance() *Instance {
	return v.data.(*Instance)
}

// Data returns the raw payload of a value.
func (v *Value) Data() interface{} {
	return v.data
}

// String is a debug Stringer. Use ToString for script-level stringification.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	s, err := ToString(v)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.typ.Name, err)
	}
	return s
}

// --- Reference counting ----------------------------------------------------

// AddRef acquires a reference to v. Returns v (for chaining).
func (v *Value) AddRef() *Value {
	if v == nil || v.immortal {
		return v
	}
	v.refs++
	return v
}

// DropRef releases a reference to v. When the last reference is released, the
// destructor of v's type runs. Dropping an immortal value has no effect.
func (v *Value) DropRef() {
	if v == nil || v.immortal {
		return
	}
	if v.refs <= 0 {
		tracer().Errorf("reference count underflow for value of type %s", v.typ.Name)
		return
	}
	v.refs--
	if v.refs == 0 {
		tracer().Debugf("destructing value of type %s", v.typ.Name)
		if destruct := v.typ.Behavior.Destruct; destruct != nil {
			destruct(v)
		}
	}
}

// RefCount returns the current reference count of v. Immortal values report 0.
func (v *Value) RefCount() int32 {
	if v == nil || v.immortal {
		return 0
	}
	return v.refs
}

// IsImmortal is a predicate: is v one of the immortal singletons?
func (v *Value) IsImmortal() bool {
	return v != nil && v.immortal
}

// --- List payload ----------------------------------------------------------

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.Elems)
}

// Append appends an element, taking a reference.
func (l *List) Append(v *Value) {
	l.Elems = append(l.Elems, v.AddRef())
}

// Set replaces the element at position i, which must be valid.
func (l *List) Set(i int, v *Value) {
	old := l.Elems[i]
	l.Elems[i] = v.AddRef()
	old.DropRef()
}

// --- Dict payload ----------------------------------------------------------

// Len returns the number of entries.
func (d *Dict) Len() int {
	return d.m.Size()
}

// Get looks up a key.
func (d *Dict) Get(key string) (*Value, bool) {
	v, found := d.m.Get(key)
	if !found {
		return nil, false
	}
	return v.(*Value), true
}

// Put inserts or replaces an entry, taking a reference to v. Replacing an
// entry keeps its position in insertion order.
func (d *Dict) Put(key string, v *Value) {
	old, found := d.Get(key)
	d.m.Put(key, v.AddRef())
	if found {
		old.DropRef()
	}
}

// Remove deletes an entry. Returns false if key was not present.
func (d *Dict) Remove(key string) bool {
	old, found := d.Get(key)
	if !found {
		return false
	}
	d.m.Remove(key)
	old.DropRef()
	return true
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	keys := make([]string, 0, d.m.Size())
	for _, k := range d.m.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

// Each iterates over the entries in insertion order.
func (d *Dict) Each(f func(key string, v *Value)) {
	it := d.m.Iterator()
	for it.Next() {
		f(it.Key().(string), it.Value().(*Value))
	}
}
