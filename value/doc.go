/*
Package value implements the runtime value model of scriptum.

Every runtime value carries a type descriptor, fixed at creation, and a payload
whose shape is determined by that type. The closed set of built-in kinds (void,
bool, int, float, string, list, dict, callable, exception) is complemented by a
single open kind for instances of classes declared by scripts. Classes are
synthesized at run time from class declarations; see NewClass.

Behavior of values (stringification, equality, hashing, ordering, copying, calling
and element access) is dispatched through the behavior table of a value's type.
Absent slots fall back to identity-based behavior.

Reference Counting

Values are reference counted. Bindings and containers own references; creating a
value hands out the first reference. A small set of singletons (true, false, void, 0
and 1) are immortal and ignore counting. When the count of a value drops to zero,
its type's destructor releases the values it owns. Memory itself is managed by the
Go runtime: counting tracks ownership, it does not free storage.

Errors

Operations of this package report failures of scripts as *Exception, which
implements the error interface and is the only kind of error a script may catch.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package value

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scriptum.value'.
func tracer() tracing.Trace {
	return tracing.Select("scriptum.value")
}
