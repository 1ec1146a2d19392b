package value

import (
	"fmt"
	"reflect"

	"github.com/npillmayer/scriptum"
)

// This file contains the operations which dispatch through the behavior table
// and the member tables of a value's type.

// ToString stringifies a value.
func ToString(v *Value) (string, error) {
	if f := v.typ.Behavior.String; f != nil {
		return f(v)
	}
	return fmt.Sprintf("<%s@%p>", v.typ.Name, v), nil
}

// Equals compares two values for equality. Values of different types are never
// equal. Without an equality behavior, values are compared by identity.
func Equals(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || !SameType(a.typ, b.typ) {
		return false
	}
	if f := a.typ.Behavior.Equals; f != nil {
		return f(a, b)
	}
	return false
}

// Hash computes a hash value. Without a hash behavior, the identity of the value
// is hashed.
func Hash(v *Value) (uint64, error) {
	if f := v.typ.Behavior.Hash; f != nil {
		return f(v)
	}
	return uint64(reflect.ValueOf(v).Pointer()), nil
}

// Compare orders two values: it returns a negative number if a < b, 0 if they
// are equal and a positive number if a > b. Values without an ordering, or
// values of different types, are not comparable.
func Compare(a, b *Value) (int, error) {
	if !SameType(a.typ, b.typ) {
		return 0, Throwf(unknownOrigin, TypeMismatch, "cannot compare values of type %s and %s",
			a.typ.Name, b.typ.Name)
	}
	if f := a.typ.Behavior.Compare; f != nil {
		return f(a, b)
	}
	return 0, Throwf(unknownOrigin, TypeMismatch, "values of type %s are not ordered", a.typ.Name)
}

// Clone copies a value. Without a copy behavior, the value itself is returned,
// with an additional reference.
func Clone(v *Value) (*Value, error) {
	if f := v.typ.Behavior.Copy; f != nil {
		return f(v)
	}
	return v.AddRef(), nil
}

// Call calls a value. Values of types without a call behavior are not callable.
func Call(v *Value, inv Invocation) (*Value, error) {
	if f := v.typ.Behavior.Call; f != nil {
		return f(v, inv)
	}
	return nil, Throwf(inv.Origin, NotCallable, "value of type %s is not callable", v.typ.Name)
}

// GetElement reads an element of a container.
func GetElement(v, index *Value) (*Value, error) {
	if f := v.typ.Behavior.GetElem; f != nil {
		return f(v, index)
	}
	return nil, Throwf(unknownOrigin, TypeMismatch, "value of type %s does not support subscripts",
		v.typ.Name)
}

// SetElement replaces an element of a container.
func SetElement(v, index, elem *Value) error {
	if f := v.typ.Behavior.SetElem; f != nil {
		return f(v, index, elem)
	}
	return Throwf(unknownOrigin, TypeMismatch, "value of type %s does not support element assignment",
		v.typ.Name)
}

// --- Attributes ------------------------------------------------------------

func accessible(vis, granted Visibility) bool {
	return vis == Public || granted == SameClass
}

// HasAttr is a predicate: does v have an attribute name, accessible with
// visibility vis?
func HasAttr(v *Value, name string, vis Visibility) bool {
	a := v.typ.FindAttribute(name)
	return a != nil && accessible(a.Visibility, vis)
}

// GetAttr reads an attribute.
func GetAttr(v *Value, name string, vis Visibility) (*Value, error) {
	a, err := lookupAttr(v, name, vis)
	if err != nil {
		return nil, err
	}
	if a.Get != nil {
		return a.Get(v)
	}
	return v.AsInstance().Fields[a.Offset], nil
}

// SetAttr writes an attribute. Attributes cannot be created by assignment, and
// read-only attributes reject writes.
func SetAttr(v *Value, name string, vis Visibility, x *Value) error {
	a, err := lookupAttr(v, name, vis)
	if err != nil {
		return err
	}
	if a.ReadOnly || a.Get != nil {
		return Throwf(unknownOrigin, AccessViolation, "attribute '%s' of %s is read-only", name, v.typ.Name)
	}
	fields := v.AsInstance().Fields
	old := fields[a.Offset]
	fields[a.Offset] = x.AddRef()
	old.DropRef()
	return nil
}

func lookupAttr(v *Value, name string, vis Visibility) (*Attribute, error) {
	a := v.typ.FindAttribute(name)
	if a == nil {
		return nil, Throwf(unknownOrigin, NoSuchMember, "%s has no attribute '%s'", v.typ.Name, name)
	}
	if !accessible(a.Visibility, vis) {
		return nil, Throwf(unknownOrigin, AccessViolation, "attribute '%s' of %s is private", name, v.typ.Name)
	}
	return a, nil
}

// --- Methods ---------------------------------------------------------------

// HasMethod is a predicate: does v have a method name, accessible with
// visibility vis?
func HasMethod(v *Value, name string, vis Visibility) bool {
	m := v.typ.FindMethod(name)
	return m != nil && accessible(m.Visibility, vis)
}

func lookupMethod(v *Value, name string, vis Visibility) (*Method, error) {
	m := v.typ.FindMethod(name)
	if m == nil {
		return nil, Throwf(unknownOrigin, NoSuchMember, "%s has no method '%s'", v.typ.Name, name)
	}
	if !accessible(m.Visibility, vis) {
		return nil, Throwf(unknownOrigin, AccessViolation, "method '%s' of %s is private", name, v.typ.Name)
	}
	return m, nil
}

// CallMethod calls method name with receiver v.
func CallMethod(v *Value, name string, vis Visibility, inv Invocation) (*Value, error) {
	m, err := lookupMethod(v, name, vis)
	if err != nil {
		return nil, Locate(err, inv.Origin)
	}
	inv.This = v
	return m.Fn.Call(inv)
}

// GetBoundMethod returns method name of v as a callable value capturing v.
func GetBoundMethod(v *Value, name string, vis Visibility) (*Value, error) {
	m, err := lookupMethod(v, name, vis)
	if err != nil {
		return nil, err
	}
	return NewCallable(&BoundMethod{This: v.AddRef(), Method: m}), nil
}

// GetMember reads a member, searching attributes first, then methods.
// Methods are returned as bound methods.
func GetMember(v *Value, name string, vis Visibility, org scriptum.Origin) (*Value, error) {
	if a := v.typ.FindAttribute(name); a != nil {
		x, err := GetAttr(v, name, vis)
		return x, Locate(err, org)
	}
	if v.typ.FindMethod(name) != nil {
		x, err := GetBoundMethod(v, name, vis)
		return x, Locate(err, org)
	}
	return nil, Throwf(org, NoSuchMember, "%s has no member '%s'", v.typ.Name, name)
}
