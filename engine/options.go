package engine

import (
	"io"
	"os"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/scriptum/runtime"
)

// Configuration keys.
const (
	KeyLogFile      = "scriptum.log-file"
	KeyEchoLog      = "scriptum.echo-log"
	KeyMaxCallDepth = "scriptum.max-call-depth"
	KeySeed         = "scriptum.seed"
)

type options struct {
	source   string
	echo     io.Writer
	logFile  string
	maxDepth int
	seed     uint64
	debugger runtime.Debugger
	in       io.Reader
	out      io.Writer
}

func defaultOptions() *options {
	return &options{
		source:   "script",
		maxDepth: runtime.DefaultMaxCallDepth,
	}
}

// Option configures a run.
type Option func(*options)

// WithSource names the script in origins of exceptions, e.g. with a filename.
func WithSource(name string) Option {
	return func(o *options) {
		if name != "" {
			o.source = name
		}
	}
}

// WithEcho echoes log lines to w.
func WithEcho(w io.Writer) Option {
	return func(o *options) {
		o.echo = w
	}
}

// WithLogFile appends log lines to a file.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// WithMaxCallDepth limits the nesting of calls. A limit of 0 or less disables
// the check.
func WithMaxCallDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithSeed seeds random numbers, making runs reproducible. A seed of 0 selects a
// seed derived from the current time.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithDebugger installs a debugger hook.
func WithDebugger(d runtime.Debugger) Option {
	return func(o *options) {
		o.debugger = d
	}
}

// WithInput sets the stream built-in readline reads from. Default is stdin.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.in = r
	}
}

// WithOutput sets the stream built-in print writes to. Default is stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// --- Configuration ---------------------------------------------------------

// configSource is the part of a configuration options are read from.
type configSource interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
}

// globalConfig reads from the global schuko configuration.
type globalConfig struct{}

func (globalConfig) GetString(key string) string { return gconf.GetString(key) }
func (globalConfig) GetInt(key string) int       { return gconf.GetInt(key) }
func (globalConfig) GetBool(key string) bool     { return gconf.GetBool(key) }

// OptionsFromConfig returns the options set in the global configuration.
// Keys which are not set do not produce an option.
func OptionsFromConfig() []Option {
	return optionsFrom(globalConfig{})
}

func optionsFrom(conf configSource) []Option {
	var opts []Option
	if f := conf.GetString(KeyLogFile); f != "" {
		opts = append(opts, WithLogFile(f))
	}
	if conf.GetBool(KeyEchoLog) {
		opts = append(opts, WithEcho(os.Stdout))
	}
	if n := conf.GetInt(KeyMaxCallDepth); n != 0 {
		opts = append(opts, WithMaxCallDepth(n))
	}
	if s := conf.GetInt(KeySeed); s != 0 {
		opts = append(opts, WithSeed(uint64(s)))
	}
	tracer().Debugf("%d options from configuration", len(opts))
	return opts
}
