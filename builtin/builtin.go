package builtin

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/scriptum/runtime"
	"github.com/npillmayer/scriptum/value"
	"golang.org/x/exp/rand"
)

// Config holds the services built-ins use. Zero values select defaults: standard
// output and input, and a seed derived from the current time.
type Config struct {
	Out  io.Writer
	In   io.Reader
	Seed uint64
}

// env is what a built-in sees of the world it is installed into.
type env struct {
	ctx *runtime.Context
	out io.Writer
	in  *bufio.Reader
	rng *rand.Rand
}

type nativeFunc func(e *env, inv value.Invocation) (*value.Value, error)

type entry struct {
	name    string
	minArgs int
	fn      nativeFunc
}

// table is the fixed table of built-ins.
var table = []entry{
	{"len", 1, length},
	{"substr", 2, substr},
	{"find", 2, find},
	{"getenv", 1, getenv},
	{"log", 0, logLine},
	{"print", 0, printLine},
	{"readline", 0, readLine},
	{"random", 0, random},
	{"randomInt", 1, randomInt},
	{"str", 1, str},
	{"int", 1, toInt},
	{"float", 1, toFloat},
	{"typeof", 1, typeOf},
	{"hash", 1, hash},
	{"clone", 1, clone},
}

// Names returns the names of all built-ins, in order of the built-in table.
func Names() []string {
	names := make([]string, len(table))
	for i, b := range table {
		names[i] = b.name
	}
	return names
}

// Install registers all built-ins with an execution context.
func Install(ctx *runtime.Context, conf Config) {
	e := &env{ctx: ctx, out: conf.Out}
	if e.out == nil {
		e.out = os.Stdout
	}
	in := conf.In
	if in == nil {
		in = os.Stdin
	}
	e.in = bufio.NewReader(in)
	seed := conf.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e.rng = rand.New(rand.NewSource(seed))
	for _, b := range table {
		fn := b.fn
		ctx.RegisterBuiltin(value.NewNative(b.name, b.minArgs, func(inv value.Invocation) (*value.Value, error) {
			return fn(e, inv)
		}))
	}
	tracer().Debugf("installed %d built-ins", len(table))
}

// --- Strings and containers ------------------------------------------------

func length(_ *env, inv value.Invocation) (*value.Value, error) {
	x := inv.Args[0]
	switch x.Kind() {
	case value.StringKind:
		return value.Int(int64(len([]rune(x.AsString())))), nil
	case value.ListKind:
		return value.Int(int64(x.AsList().Len())), nil
	case value.DictKind:
		return value.Int(int64(x.AsDict().Len())), nil
	}
	return nil, value.Throwf(inv.Origin, value.TypeMismatch,
		"len expects str, list or dict, got %s", x.Type().Name)
}

func stringArg(inv value.Invocation, i int, fname string) (string, error) {
	a := inv.Arg(i)
	if !a.Is(value.StringKind) {
		return "", value.Throwf(inv.Origin, value.TypeMismatch,
			"%s: argument %d must be str, got %s", fname, i+1, a.Type().Name)
	}
	return a.AsString(), nil
}

func substr(_ *env, inv value.Invocation) (*value.Value, error) {
	if _, err := stringArg(inv, 0, "substr"); err != nil {
		return nil, err
	}
	return value.Substring(inv.Args[0], inv.Args[1:], inv)
}

func find(_ *env, inv value.Invocation) (*value.Value, error) {
	s, err := stringArg(inv, 0, "find")
	if err != nil {
		return nil, err
	}
	sub, err := stringArg(inv, 1, "find")
	if err != nil {
		return nil, err
	}
	return value.Int(int64(value.RuneIndex(s, sub))), nil
}

func getenv(_ *env, inv value.Invocation) (*value.Value, error) {
	name, err := stringArg(inv, 0, "getenv")
	if err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(name); ok {
		return value.String(v), nil
	}
	return value.Void, nil
}

// --- I/O -------------------------------------------------------------------

// join stringifies all arguments and joins them with blanks.
func join(inv value.Invocation) (string, error) {
	parts := make([]string, len(inv.Args))
	for i, a := range inv.Args {
		s, err := value.ToString(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, " "), nil
}

func logLine(e *env, inv value.Invocation) (*value.Value, error) {
	line, err := join(inv)
	if err != nil {
		return nil, err
	}
	e.ctx.Log.Log(line)
	return value.Void, nil
}

func printLine(e *env, inv value.Invocation) (*value.Value, error) {
	line, err := join(inv)
	if err != nil {
		return nil, err
	}
	if _, err = fmt.Fprintln(e.out, line); err != nil {
		tracer().Errorf("print: %v", err)
		return nil, value.Throwf(inv.Origin, value.InvalidArgument, "print failed: %v", err)
	}
	return value.Void, nil
}

func readLine(e *env, inv value.Invocation) (*value.Value, error) {
	if len(inv.Args) > 0 {
		prompt, err := value.ToString(inv.Args[0])
		if err != nil {
			return nil, err
		}
		fmt.Fprint(e.out, prompt)
	}
	line, err := e.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err != io.EOF {
			tracer().Errorf("readline: %v", err)
		}
		return value.Void, nil
	}
	return value.String(strings.TrimRight(line, "\r\n")), nil
}

// --- Random numbers --------------------------------------------------------

func random(e *env, _ value.Invocation) (*value.Value, error) {
	return value.Float(e.rng.Float64()), nil
}

func randomInt(e *env, inv value.Invocation) (*value.Value, error) {
	n := inv.Args[0]
	if !n.Is(value.IntKind) {
		return nil, value.Throwf(inv.Origin, value.TypeMismatch, "randomInt expects int, got %s",
			n.Type().Name)
	}
	if n.AsInt() <= 0 {
		return nil, value.Throwf(inv.Origin, value.InvalidArgument, "randomInt expects n > 0, got %d",
			n.AsInt())
	}
	return value.Int(e.rng.Int63n(n.AsInt())), nil
}

// --- Conversions -----------------------------------------------------------

func str(_ *env, inv value.Invocation) (*value.Value, error) {
	s, err := value.ToString(inv.Args[0])
	if err != nil {
		return nil, err
	}
	return value.String(s), nil
}

func toInt(_ *env, inv value.Invocation) (*value.Value, error) {
	x := inv.Args[0]
	switch x.Kind() {
	case value.IntKind:
		return x, nil
	case value.FloatKind:
		f := x.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return nil, value.Throwf(inv.Origin, value.InvalidArgument, "cannot convert %v to int", f)
		}
		return value.Int(int64(f)), nil
	case value.BoolKind:
		if x.AsBool() {
			return value.One, nil
		}
		return value.Zero, nil
	case value.StringKind:
		i, err := strconv.ParseInt(strings.TrimSpace(x.AsString()), 10, 64)
		if err != nil {
			return nil, value.Throwf(inv.Origin, value.InvalidArgument, "cannot convert %q to int",
				x.AsString())
		}
		return value.Int(i), nil
	}
	return nil, value.Throwf(inv.Origin, value.TypeMismatch, "cannot convert %s to int", x.Type().Name)
}

func toFloat(_ *env, inv value.Invocation) (*value.Value, error) {
	x := inv.Args[0]
	switch x.Kind() {
	case value.FloatKind:
		return x, nil
	case value.IntKind:
		return value.Float(float64(x.AsInt())), nil
	case value.StringKind:
		f, err := strconv.ParseFloat(strings.TrimSpace(x.AsString()), 64)
		if err != nil {
			return nil, value.Throwf(inv.Origin, value.InvalidArgument, "cannot convert %q to float",
				x.AsString())
		}
		return value.Float(f), nil
	}
	return nil, value.Throwf(inv.Origin, value.TypeMismatch, "cannot convert %s to float", x.Type().Name)
}

func typeOf(_ *env, inv value.Invocation) (*value.Value, error) {
	return value.String(inv.Args[0].Type().Name), nil
}

func hash(_ *env, inv value.Invocation) (*value.Value, error) {
	h, err := value.Hash(inv.Args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(int64(h)), nil
}

func clone(_ *env, inv value.Invocation) (*value.Value, error) {
	return value.Clone(inv.Args[0])
}
