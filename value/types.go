package value

import (
	"fmt"

	"github.com/npillmayer/scriptum"
)

// Visibility restricts access to attributes and methods.
type Visibility uint8

// Public members are accessible everywhere; SameClass members only from within
// methods owned by the declaring class or a class derived from it.
const (
	Public Visibility = iota
	SameClass
)

func (vis Visibility) String() string {
	if vis == SameClass {
		return "private"
	}
	return "public"
}

// maxTypeDepth bounds walks along parent chains.
const maxTypeDepth = 64

// Type is a type descriptor: shared per-type metadata and behavior dispatch table.
type Type struct {
	Name     string
	Kind     Kind
	Parent   *Type // single inheritance, may be nil
	Attrs    []*Attribute
	Methods  []*Method
	Behavior Behavior
	Decl     interface{} // declaration a class was synthesized from, nil for built-in types
	size     int         // number of field slots of instances, including inherited ones
}

// Attribute describes a named attribute of a type. Attributes of class instances
// live in a field slot (Offset); attributes of built-in types are computed by an
// accessor (Get).
type Attribute struct {
	Name       string
	Offset     int
	Get        func(*Value) (*Value, error)
	Visibility Visibility
	ReadOnly   bool
	Owner      *Type
}

// Method describes a named method of a type. The handler is called with
// Invocation.This set to the receiver.
type Method struct {
	Name       string
	Fn         Callable
	Visibility Visibility
	Owner      *Type
}

// Behavior is the dispatch table of a type. Nil slots fall back to default
// (identity-based) behavior, or to an error where no sensible default exists.
type Behavior struct {
	Init     func(v *Value, inv Invocation) error
	Destruct func(v *Value)
	Copy     func(v *Value) (*Value, error)
	String   func(v *Value) (string, error)
	Hash     func(v *Value) (uint64, error)
	Compare  func(a, b *Value) (int, error)
	Equals   func(a, b *Value) bool
	Call     func(v *Value, inv Invocation) (*Value, error)
	GetElem  func(v, index *Value) (*Value, error)
	SetElem  func(v, index, elem *Value) error
}

// NewType creates a type descriptor for a kind of payload.
func NewType(name string, kind Kind) *Type {
	return &Type{Name: name, Kind: kind}
}

func (t *Type) String() string {
	return fmt.Sprintf("<type %s>", t.Name)
}

// Size returns the number of field slots of instances of t.
func (t *Type) Size() int {
	return t.size
}

// AddAttribute appends an attribute to the attribute table of t.
// Returns the attribute (for further configuration).
func (t *Type) AddAttribute(attr *Attribute) *Attribute {
	attr.Owner = t
	t.Attrs = append(t.Attrs, attr)
	return attr
}

// AddField appends an attribute backed by a new field slot.
func (t *Type) AddField(name string, vis Visibility) *Attribute {
	attr := t.AddAttribute(&Attribute{Name: name, Offset: t.size, Visibility: vis})
	t.size++
	return attr
}

// AddMethod appends a method to the method table of t.
func (t *Type) AddMethod(name string, fn Callable, vis Visibility) *Method {
	m := &Method{Name: name, Fn: fn, Visibility: vis, Owner: t}
	t.Methods = append(t.Methods, m)
	return m
}

// FindAttribute searches the attribute tables of t and its ancestors.
func (t *Type) FindAttribute(name string) *Attribute {
	for depth, tt := 0, t; tt != nil && depth < maxTypeDepth; depth, tt = depth+1, tt.Parent {
		for _, a := range tt.Attrs {
			if a.Name == name {
				return a
			}
		}
	}
	return nil
}

// FindMethod searches the method tables of t and its ancestors.
func (t *Type) FindMethod(name string) *Method {
	for depth, tt := 0, t; tt != nil && depth < maxTypeDepth; depth, tt = depth+1, tt.Parent {
		for _, m := range tt.Methods {
			if m.Name == name {
				return m
			}
		}
	}
	return nil
}

// SameType is a predicate: do a and b denote the same type?
//
// Types are compared by identity of their descriptors. Two types synthesized
// separately are distinct, even if they have the same name and layout.
func SameType(a, b *Type) bool {
	return a == b
}

// IsSubtypeOf is a predicate: is t equal to or derived from other?
// The walk along the parent chain is bounded in depth to resist cycles.
func (t *Type) IsSubtypeOf(other *Type) bool {
	for depth, tt := 0, t; tt != nil && depth < maxTypeDepth; depth, tt = depth+1, tt.Parent {
		if SameType(tt, other) {
			return true
		}
	}
	return false
}

// IsInstanceOf is a predicate: is v an instance of t or of a type derived from t?
func IsInstanceOf(v *Value, t *Type) bool {
	if v == nil || t == nil {
		return false
	}
	return v.typ.IsSubtypeOf(t)
}

// --- Classes ---------------------------------------------------------------

// Well-known method names of classes.
const (
	ConstructMethod = "construct"
	DestructMethod  = "destruct"
	ToStringMethod  = "toString"
)

// NewClass synthesizes a type for a script-level class declaration. Attributes and
// methods are added by the caller. The layout of instances extends the layout of
// the parent class.
//
// The default initializer calls method 'construct' if the class (or an ancestor)
// defines one. The default destructor calls method 'destruct', if defined, and
// releases all field values.
func NewClass(name string, parent *Type) *Type {
	t := NewType(name, InstanceKind)
	if parent != nil {
		t.Parent = parent
		t.size = parent.size
	}
	t.Behavior = Behavior{
		Init:     InitInstance,
		Destruct: destructInstance,
		Copy:     copyInstance,
		String:   stringifyInstance,
	}
	return t
}

// InitInstance is the default initializer for class instances: it calls the
// 'construct' method, if there is one. Without a constructor, arguments are an
// error.
func InitInstance(v *Value, inv Invocation) error {
	if m := v.typ.FindMethod(ConstructMethod); m != nil {
		inv.This = v
		_, err := m.Fn.Call(inv)
		return err
	}
	if len(inv.Args) > 0 {
		return Throwf(inv.Origin, ArityMismatch,
			"class '%s' has no constructor, but %d arguments were given", v.typ.Name, len(inv.Args))
	}
	return nil
}

func destructInstance(v *Value) {
	if m := v.typ.FindMethod(DestructMethod); m != nil {
		if _, err := m.Fn.Call(Invocation{This: v}); err != nil {
			tracer().Errorf("destructor of class %s failed: %v", v.typ.Name, err)
		}
	}
	for _, f := range v.AsInstance().Fields {
		f.DropRef()
	}
}

func copyInstance(v *Value) (*Value, error) {
	inst := v.AsInstance()
	c := &Instance{Fields: make([]*Value, len(inst.Fields))}
	for i, f := range inst.Fields {
		c.Fields[i] = f.AddRef()
	}
	return fresh(v.typ, c), nil
}

func stringifyInstance(v *Value) (string, error) {
	if m := v.typ.FindMethod(ToStringMethod); m != nil {
		r, err := m.Fn.Call(Invocation{This: v})
		if err != nil {
			return "", err
		}
		return ToString(r)
	}
	return fmt.Sprintf("<%s instance>", v.typ.Name), nil
}

// Create allocates a new value of type t, with reference count 1, and runs the
// type's initializer with the given arguments.
func Create(t *Type, inv Invocation) (*Value, error) {
	var v *Value
	switch t.Kind {
	case VoidKind:
		return Void, nil
	case BoolKind:
		v = &Value{typ: t, refs: 1, data: false}
	case IntKind:
		v = &Value{typ: t, refs: 1, data: int64(0)}
	case FloatKind:
		v = &Value{typ: t, refs: 1, data: float64(0)}
	case StringKind:
		v = &Value{typ: t, refs: 1, data: ""}
	case ListKind:
		v = &Value{typ: t, refs: 1, data: &List{}}
	case DictKind:
		v = NewDict()
		v.typ = t
	case InstanceKind:
		inst := &Instance{Fields: make([]*Value, t.size)}
		for i := range inst.Fields {
			inst.Fields[i] = Void
		}
		v = &Value{typ: t, refs: 1, data: inst}
	default:
		return nil, fmt.Errorf("type %s cannot be instantiated", t.Name)
	}
	if t.Behavior.Init != nil {
		if err := t.Behavior.Init(v, inv); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// --- Constructors as callables ---------------------------------------------

// Constructor is a callable which creates instances of a type.
type Constructor struct {
	T *Type
}

var _ Callable = Constructor{}

// Name is part of interface Callable.
func (c Constructor) Name() string {
	return c.T.Name
}

// Call is part of interface Callable.
func (c Constructor) Call(inv Invocation) (*Value, error) {
	return Create(c.T, inv)
}

// ConstructorOf returns a callable value creating instances of t.
func ConstructorOf(t *Type) *Value {
	return NewCallable(Constructor{T: t})
}

// TypeOf returns the type a constructor value creates, or nil if v is not
// a constructor.
func TypeOf(v *Value) *Type {
	if !v.Is(CallableKind) {
		return nil
	}
	if c, ok := v.AsCallable().(Constructor); ok {
		return c.T
	}
	return nil
}

// unknownOrigin is used by operations that have no source location at hand.
var unknownOrigin = scriptum.Origin{}
