// Command kaosdraw validates, inspects, evaluates, renders and serves KAOS
// goal models stored as structural XML.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/scrypster/kaosdraw/internal/config"
	"github.com/scrypster/kaosdraw/internal/logging"
)

var (
	// errUsage reports bad arguments; the usage text has been printed.
	errUsage = errors.New("usage")

	// errFailed reports a negative outcome that has already been printed,
	// e.g. a model with violations.
	errFailed = errors.New("failed")
)

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    *output
	errOut *output
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"validate": {"validate <model.xml>", runValidate},
	"logic":    {"logic [-xml] <model.xml>", runLogic},
	"evaluate": {"evaluate -state <state.yaml> [-state ...] [-threshold t] [-shortcircuit] <model.xml|logic.xml>", runEvaluate},
	"format":   {"format [-w] <model.xml>", runFormat},
	"roots":    {"roots <model.xml>", runRoots},
	"render":   {"render [-o diagram.png] <model.xml>", runRender},
	"serve":    {"serve [-addr host:port] <model.xml>", runServe},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code:
// 0 on success, 1 on failure and 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	errOut := newOutput(stderr)

	global := flag.NewFlagSet("kaosdraw", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to a YAML config file (env vars override it)")
	global.Usage = func() { printUsage(errOut) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		printUsage(errOut)
		return 2
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		errOut.failure("unknown command %q", name)
		printUsage(errOut)
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		errOut.failure("load config: %v", err)
		return 1
	}

	a := &app{
		cfg:    cfg,
		logger: logging.NewWithWriter(cfg.Log, stderr),
		out:    newOutput(stdout),
		errOut: errOut,
	}

	err = cmd.run(ctx, a, global.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		errOut.println("usage: kaosdraw " + cmd.usage)
		return 2
	case errors.Is(err, errFailed):
		return 1
	default:
		errOut.failure("%s: %v", name, err)
		return 1
	}
}

func printUsage(o *output) {
	o.println(o.heading.Render("usage: kaosdraw [-config file] <command> [flags] <model.xml>"))
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o.println(fmt.Sprintf("  %s", commands[name].usage))
	}
}
