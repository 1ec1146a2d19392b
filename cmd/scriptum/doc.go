/*
Command scriptum runs scripts and provides an interactive command line
tool for experiments with scriptum.

Usage:

	scriptum [flags] [script]

With a script argument, the script is run and its result printed. Without one,
scriptum starts a read-eval-print loop. Bindings of a session persist between
input lines.

Flags:

	-trace level     trace level [Debug|Info|Error]
	-init file       script to run before entering interactive mode
	-bindings file   YAML file with external bindings
	-ast             display the syntax tree of every input
	-seed n          seed for random numbers

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scriptum.cli'
func tracer() tracing.Trace {
	return tracing.Select("scriptum.cli")
}
