/*
Package engine is the host interface of scriptum.

A host hands a script and a set of external bindings to Run and receives a
Result, which holds exactly one of a value, an uncaught script exception or an
engine failure.

	bindings := engine.Bindings{"price": value.Int(100)}
	r := engine.Run(context.Background(), "price = price * 2", bindings)
	if r.OK() {
		fmt.Println(bindings["price"]) // 200
	}

Each run gets a fresh execution context, which is torn down when the run
completes. Assignments to externally supplied names are written back to the
bindings map. Syntax errors are reported as script exceptions of category
SyntaxError.

Configuration

Options may be given explicitly or read from the global schuko configuration
(see OptionsFromConfig). Recognized keys are

	scriptum.log-file        append log lines of runs to this file
	scriptum.echo-log        echo log lines to stdout
	scriptum.max-call-depth  limit for nested calls
	scriptum.seed            seed for random numbers

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package engine

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scriptum.engine'.
func tracer() tracing.Trace {
	return tracing.Select("scriptum.engine")
}
