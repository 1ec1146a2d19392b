/*
Package builtin implements the native built-in functions of scriptum.

The table of built-ins is fixed at process start. Install binds the table to an
execution context, where built-ins form the lowest-priority scope consulted
during name resolution. Built-ins which need services of the context (the logger,
a random number generator, standard streams) capture them at installation time.

Built-ins are:

	len(x)                length of a string (in runes), list or dict
	substr(s, start[, n]) substring of s, counted in runes and clipped to s
	find(s, sub)          rune index of sub in s, or -1
	getenv(name)          value of an environment variable, or void
	log(x, …)             append a line to the run's log
	print(x, …)           print a line to the output stream
	readline([prompt])    read a line from the input stream, void at end of input
	random()              pseudo-random float in [0,1)
	randomInt(n)          pseudo-random int in [0,n)
	str(x)                stringification of x
	int(x)                conversion to int
	float(x)              conversion to float
	typeof(x)             name of the type of x
	hash(x)               hash value of x
	clone(x)              shallow copy of x

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package builtin

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scriptum.builtin'.
func tracer() tracing.Trace {
	return tracing.Select("scriptum.builtin")
}
