/*
Package exec implements the tree-walking executors of scriptum.

The statement executor walks statement lists and propagates the control signals
break, continue and return outward; the expression executor evaluates and assigns
expressions. Both are mutually recursive: calling a user-defined function executes
its body with the statement executor.

Every executor operation has one of three outcomes: a value, a script exception
(an error of type *value.Exception, catchable by try/catch) or an engine failure
(any other error, aborting the run). Call frames are popped on every exit path.

Scoping

There is no block scope and there are no closures capturing a lexical
environment. Function literals resolve free variables against the execution
context active at call time: locals of the innermost call frame, then globals.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package exec

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scriptum.exec'.
func tracer() tracing.Trace {
	return tracing.Select("scriptum.exec")
}
