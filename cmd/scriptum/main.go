package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/builtin"
	"github.com/npillmayer/scriptum/engine"
	"github.com/npillmayer/scriptum/exec"
	"github.com/npillmayer/scriptum/lang"
	"github.com/npillmayer/scriptum/runtime"
	"github.com/npillmayer/scriptum/value"
)

// traceKeys are the trace keys of all packages of this module.
var traceKeys = []string{
	"scriptum.cli", "scriptum.engine", "scriptum.exec", "scriptum.lang",
	"scriptum.runtime", "scriptum.value", "scriptum.builtin",
}

// main() either runs a script file or starts an interactive CLI, where users may
// enter statements. Statements are executed in a session which keeps its
// bindings until the CLI is quit.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Script to run before the first prompt")
	bindf := flag.String("bindings", "", "YAML file with external bindings")
	showAST := flag.Bool("ast", false, "Display syntax trees")
	seed := flag.Uint64("seed", 0, "Seed for random numbers")
	flag.Parse()
	setTraceLevel(tracing.TraceLevelFromString(*tlevel))
	tracer().Infof("Trace level is %s", *tlevel)
	bindings, err := loadBindings(*bindf)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	if flag.NArg() > 0 {
		os.Exit(runFile(flag.Arg(0), bindings, *seed, *showAST))
	}
	//
	pterm.Info.Println("Welcome to scriptum") // colored welcome message
	repl, err := readline.New("scriptum> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := newIntp(repl, bindings, *seed)
	intp.showAST = *showAST
	tracer().Infof("Quit with <ctrl>D")
	intp.loadInitFile(*initf)
	intp.REPL()
}

// initDisplay sets up pterm prefixes for results and exceptions.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// failure prints engine failures, which have to be told apart from exceptions.
var failure = pterm.PrefixPrinter{
	Prefix: pterm.Prefix{
		Text:  "  Failure",
		Style: pterm.NewStyle(pterm.BgMagenta, pterm.FgWhite),
	},
	MessageStyle: pterm.NewStyle(pterm.FgLightMagenta),
}

func setTraceLevel(level tracing.TraceLevel) {
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}

// runFile runs a script file and returns an exit code.
func runFile(filename string, bindings engine.Bindings, seed uint64, showAST bool) int {
	code, err := os.ReadFile(filename)
	if err != nil {
		pterm.Error.Println(err.Error())
		return 3
	}
	if showAST {
		if stmts, err := lang.Parse(filename, string(code)); err == nil {
			showTree(filename, stmts)
		}
	}
	r := engine.Run(context.Background(), string(code), bindings,
		engine.WithSource(filename), engine.WithSeed(seed), engine.WithEcho(os.Stdout))
	switch {
	case r.Failure != nil:
		failure.Println(r.Failure.Error())
		return 2
	case r.Exception != nil:
		pterm.Error.Println(r.Exception.Error())
		return 1
	}
	pterm.Info.Println(r.Value.String())
	return 0
}

// Intp is an interactive session. Bindings survive between inputs.
type Intp struct {
	ctx     *runtime.Context
	x       *exec.Executor
	repl    *readline.Instance
	showAST bool
}

func newIntp(repl *readline.Instance, bindings engine.Bindings, seed uint64) *Intp {
	ctx := runtime.NewContext()
	var out io.Writer = os.Stdout
	if repl != nil {
		out = repl.Stdout()
	}
	ctx.Log.SetEcho(out)
	builtin.Install(ctx, builtin.Config{Out: out, Seed: seed})
	for name, v := range bindings {
		ctx.DefineGlobal(name, v)
	}
	return &Intp{ctx: ctx, x: exec.New(ctx), repl: repl}
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	code, err := os.ReadFile(filename)
	if err != nil {
		tracer().Errorf("cannot read init file %s: %v", filename, err)
		return
	}
	if err := intp.Eval(filename, string(code)); err != nil {
		tracer().Errorf("Error in init file: %v", err)
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		_ = intp.Eval("input", line) // errors have been displayed
	}
	intp.ctx.Teardown()
	println("Good bye!")
}

// Eval parses and executes code within the session.
func (intp *Intp) Eval(source, code string) error {
	stmts, err := lang.Parse(source, code)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	if intp.showAST {
		showTree(source, stmts)
	}
	v, err := intp.x.Execute(stmts)
	return intp.printResult(v, err)
}

func (intp *Intp) printResult(v *value.Value, err error) error {
	if exc, isExc := value.AsException(err); isExc {
		pterm.Error.Println(exc.Error())
		return err
	} else if err != nil {
		failure.Println(err.Error())
		return err
	}
	s, err := value.ToString(v)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	pterm.Info.Println(s)
	return nil
}

// showTree is a helper to display an AST (abstract syntax tree) as a tree
// on a terminal.
func showTree(label string, stmts []ast.Stmt) {
	ll := pterm.LeveledList{pterm.LeveledListItem{Level: 0, Text: label}}
	ast.InspectAll(stmts, func(n ast.Node, level int) bool {
		ll = append(ll, pterm.LeveledListItem{Level: level + 1, Text: ast.Label(n)})
		return true
	})
	tracer().Debugf("|ll| = %d", len(ll))
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
	fmt.Println()
}
