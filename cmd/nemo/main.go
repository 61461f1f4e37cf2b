// Command nemo runs nemo source files and provides an interactive
// REPL, in the same "no-args starts the REPL, first arg is a file or
// subcommand" style as the teacher's smog CLI, rewired for nemo's
// tree-walking runtime (no compile/disassemble subcommands, since
// there is no separate bytecode artifact to produce).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/kristofer/nemo/pkg/object"
	"github.com/kristofer/nemo/pkg/parser"
	"github.com/kristofer/nemo/pkg/scheduler"
	"github.com/kristofer/nemo/pkg/vm"
)

const version = "0.1.0"

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)

	log = logrus.New()
)

func main() {
	evalSrc := flag.String("e", "", "evaluate a source string and exit")
	showAST := flag.Bool("ast", false, "print the parsed AST instead of evaluating")
	logLevel := flag.String("loglevel", "warn", "log level: debug, info, warn, error")
	home := flag.String("home", "", "directory containing the bootstrap lib/ (defaults to ./lib)")
	bootstrap := flag.Bool("bootstrap", true, "load the bootstrap .nemo library files before running")
	stackDepth := flag.Int("stack-depth", 10000, "maximum activation depth before StackOverflow")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)

	reg := vm.NewRuntime()
	sched := scheduler.New(reg)

	if *bootstrap {
		if err := loadBootstrap(reg, *home); err != nil {
			log.WithError(err).Warn("bootstrap library failed to load")
		}
	}

	args := flag.Args()

	switch {
	case *evalSrc != "":
		runSource(reg, sched, *evalSrc, *showAST, *stackDepth)
	case len(args) == 0:
		runREPL(reg, sched, *stackDepth)
	case args[0] == "version" || args[0] == "-v" || args[0] == "--version":
		fmt.Printf("nemo version %s\n", version)
	case args[0] == "help" || args[0] == "-h" || args[0] == "--help":
		printUsage()
	case args[0] == "repl":
		runREPL(reg, sched, *stackDepth)
	default:
		runFile(reg, sched, args[0], *showAST, *stackDepth)
	}
}

func printUsage() {
	fmt.Println("nemo - a Smalltalk-family execution core")
	fmt.Println("\nUsage:")
	fmt.Println("  nemo                   Start the interactive REPL")
	fmt.Println("  nemo [file]            Run a .nemo source file")
	fmt.Println("  nemo -e '<source>'     Evaluate a source string and exit")
	fmt.Println("  nemo --ast [file]      Print the parsed AST instead of running it")
	fmt.Println("  nemo repl              Start the interactive REPL")
	fmt.Println("  nemo version           Show version")
	fmt.Println("  nemo help              Show this help")
}

func runFile(reg *object.Registry, sched *scheduler.Scheduler, filename string, showAST bool, maxDepth int) {
	data, err := os.ReadFile(filename)
	if err != nil {
		redColor.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(2)
	}
	runSource(reg, sched, string(data), showAST, maxDepth)
}

func runSource(reg *object.Registry, sched *scheduler.Scheduler, src string, showAST bool, maxDepth int) {
	p := parser.New(src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			redColor.Fprintf(os.Stderr, "%s\n", e.Error())
		}
		os.Exit(2)
	}
	if showAST {
		fmt.Println(program.String())
		return
	}

	vp := vm.NewProcess(reg)
	vp.Sched = sched
	vp.MaxDepth = maxDepth
	_, err := vp.EvalTopLevel(program)
	if err != nil {
		redColor.Fprintf(os.Stderr, "runtime error: %v\n", err)
		os.Exit(1)
	}
	if sched != nil {
		if err := sched.Run(); err != nil {
			redColor.Fprintf(os.Stderr, "runtime error: %v\n", err)
			os.Exit(1)
		}
	}
}

const banner = `
  _ __   ___ _ __ ___   ___
 | '_ \ / _ \ '_ \` + "`" + `_ \ / _ \
 | | | |  __/ | | | | | (_) |
 |_| |_|\___|_| |_| |_|\___/
`

func runREPL(reg *object.Registry, sched *scheduler.Scheduler, maxDepth int) {
	blueColor.Println(strings.Repeat("-", 48))
	greenColor.Println(banner)
	blueColor.Println(strings.Repeat("-", 48))
	yellowColor.Printf("nemo v%s\n", version)
	cyanColor.Println("Type expressions and press enter. Ctrl-D to exit.")
	blueColor.Println(strings.Repeat("-", 48))

	rl, err := readline.New("nemo> ")
	if err != nil {
		log.WithError(err).Fatal("failed to start readline")
	}
	defer rl.Close()

	vp := vm.NewProcess(reg)
	vp.Sched = sched
	vp.MaxDepth = maxDepth

	var buf strings.Builder
	for {
		prompt := "nemo> "
		if buf.Len() > 0 {
			prompt = "....> "
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if err != nil {
			break
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(line) {
			case ":quit", ":exit":
				return
			case "":
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteString("\n")

		if !parser.IsComplete(buf.String()) {
			continue
		}

		evalREPLInput(vp, sched, buf.String())
		buf.Reset()
	}
}

func evalREPLInput(vp *vm.Process, sched *scheduler.Scheduler, input string) {
	p := parser.New(input)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			redColor.Printf("%s\n", e.Error())
		}
		return
	}

	result, err := vp.EvalTopLevel(program)
	if err != nil {
		redColor.Printf("runtime error: %v\n", err)
		return
	}
	if sched != nil {
		if err := sched.Run(); err != nil {
			redColor.Printf("runtime error: %v\n", err)
			return
		}
	}
	yellowColor.Printf("=> %v\n", result)
}

// loadBootstrap reads every lib/*.nemo file (spec §6's bootstrap-load-
// by-name contract) from dir (or "./lib" if dir is empty) and
// evaluates each in turn against reg's globals before user code runs.
func loadBootstrap(reg *object.Registry, dir string) error {
	if dir == "" {
		dir = "lib"
	}
	files := []string{"object.nemo", "boolean.nemo", "collections.nemo", "exception.nemo"}
	vp := vm.NewProcess(reg)
	for _, f := range files {
		path := dir + "/" + f
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.WithField("file", path).Debug("bootstrap file not found, skipping")
				continue
			}
			return err
		}
		p := parser.New(string(data))
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			return fmt.Errorf("%s: %s", path, errs[0].Error())
		}
		if _, err := vp.EvalTopLevel(program); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
