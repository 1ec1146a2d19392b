/*
Package scriptum is an embeddable interpreter for a small, dynamically typed,
C-like scripting language.

Scriptum is meant to be linked into a host program which wants to evaluate
user-authored expressions and scripts (business rules, filters, small
calculations) without spawning a separate process. Package structure is
as follows:

■ value: Package value implements the runtime value model: tagged values, type
descriptors with behavior tables, reference counting and classes synthesized from
script-level class declarations.

■ runtime: Package runtime implements the execution context, i.e. global bindings,
the built-in registry, constructable types and the stack of call frames.

■ exec: Package exec implements the tree-walking statement and expression executors.

■ ast: Package ast defines the syntax tree the executors walk.

■ builtin: Package builtin implements the native built-in functions.

■ lang: Package lang implements the lexer and parser for scripts.

■ engine: Package engine is the entry point for hosts: run source text against a set
of external bindings and receive a value, a script exception or an engine failure.

■ cmd/scriptum: A command line tool to run scripts, with an interactive mode.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scriptum
