/*
Package ast defines the abstract syntax tree for scripts.

The tree is produced by package lang and consumed by the executors in package exec.
Executors never modify a tree; a tree may be executed any number of times, and
executions may share a tree.

Statements and expressions are distinct interfaces. Function declarations are both:
a named declaration at statement level registers a function, an anonymous one in
expression position yields a function value.

Operators with two operands are represented by BinaryOp nodes, including
assignment, member access, subscripts, calls and the short-if form

    cond ? [a, b]

For a call, R holds a *ListData with the argument expressions; for member access,
R holds an *Ident naming the member.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ast
