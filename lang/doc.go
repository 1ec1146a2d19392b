/*
Package lang implements the lexer and the parser for scriptum.

The lexer is built with lexmachine. The parser is a hand-written recursive descent
parser, using precedence climbing for binary operators. It produces the
statement list of package ast, which is handed to the executors of package exec.

Syntax

Scripts are sequences of statements, optionally separated by semicolons. Bodies of
if, while and for are either a single statement or a brace-enclosed statement list.
Braces in expression position denote dict literals.

	x = 5; x += 3
	for (i = 0; i < 3; i++) { if (i == 1) continue; log(i); }
	function f(a, b) { return a + b; }
	class Point extends Shape { x = 0; private y; function construct(x) { this.x = x; } }
	try { throw 'boom'; } catch (e) { log(e); } finally { log('done'); }
	ok = cond ? ['yes', 'no']

Comments are C-like, both line comments and block comments.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lang

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scriptum.lang'.
func tracer() tracing.Trace {
	return tracing.Select("scriptum.lang")
}
