package runtime

import (
	"fmt"
	"sort"

	"github.com/npillmayer/scriptum/value"
)

// Symbol tables hold global bindings, built-ins, constructable types and the
// local bindings of call frames.

// --- Tags -------------------------------------------------------

// Tag is a named binding within a symbol table. Grammar symbols live in the
// parser, tags live at run time of a script.
//
// A tag owns a reference to its value.
type Tag struct {
	name  string
	value *value.Value
}

// NewTag creates a tag bound to void.
func NewTag(name string) *Tag {
	return &Tag{name: name, value: value.Void}
}

func (tag *Tag) String() string {
	return fmt.Sprintf("<tag %s=%v>", tag.name, tag.value)
}

// Name is the name the tag is registered under.
func (tag *Tag) Name() string {
	return tag.name
}

// Value gets the value bound to the tag.
func (tag *Tag) Value() *value.Value {
	return tag.value
}

// Set binds a new value, releasing the previous one.
func (tag *Tag) Set(v *value.Value) {
	if v == nil {
		v = value.Void
	}
	old := tag.value
	tag.value = v.AddRef()
	old.DropRef()
}

func (tag *Tag) release() {
	tag.value.DropRef()
	tag.value = value.Void
}

// === Symbol Tables =========================================================

// SymbolTable maps names to tags.
type SymbolTable struct {
	tags map[string]*Tag
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{tags: make(map[string]*Tag)}
}

// ResolveTag returns the tag for name, or nil.
func (t *SymbolTable) ResolveTag(name string) *Tag {
	return t.tags[name]
}

// ResolveOrDefineTag returns the tag for name, creating it if necessary.
// The flag tells if the tag has been present before.
func (t *SymbolTable) ResolveOrDefineTag(name string) (*Tag, bool) {
	if tag, ok := t.tags[name]; ok {
		return tag, true
	}
	tag, _ := t.DefineTag(name)
	return tag, false
}

// DefineTag creates a fresh tag for name and returns it together with the tag
// it replaced (or nil). The replaced tag keeps its value; callers decide
// whether to release it. Empty names are rejected with (nil, nil).
func (t *SymbolTable) DefineTag(name string) (*Tag, *Tag) {
	if name == "" {
		return nil, nil
	}
	old := t.tags[name]
	tag := NewTag(name)
	t.tags[name] = tag
	return tag, old
}

// RemoveTag removes a tag and releases its value. Returns false if there was no
// tag with that name.
func (t *SymbolTable) RemoveTag(name string) bool {
	tag, ok := t.tags[name]
	if !ok {
		return false
	}
	delete(t.tags, name)
	tag.release()
	return true
}

// Size is the number of tags in the table.
func (t *SymbolTable) Size() int {
	return len(t.tags)
}

// Names returns the names of all tags, sorted.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.tags))
	for name := range t.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all tags, releasing their values.
func (t *SymbolTable) Clear() {
	for _, tag := range t.tags {
		tag.release()
	}
	t.tags = make(map[string]*Tag)
}
