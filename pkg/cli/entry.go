package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/asc/internal/backend"
	"github.com/funvibe/asc/internal/cache"
	"github.com/funvibe/asc/internal/config"
	"github.com/funvibe/asc/internal/diagnostics"
	"github.com/funvibe/asc/internal/prettyprinter"
	"github.com/funvibe/asc/internal/server"
	"github.com/funvibe/asc/internal/watch"
)

// maxParallel bounds concurrent compilations in batch mode.
const maxParallel = 8

// app holds the process environment so the command can run in tests.
type app struct {
	args   []string // without the program name
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	opts     options
	cfg      *config.Config
	backend  backend.Backend
	cache    *cache.Cache
	exitCode int

	mu sync.Mutex // serialises writes to stdout/stderr
}

type options struct {
	format     string
	configPath string
	cachePath  string
	listen     string
	explicit   bool
	files      []string
}

// valueFlags take the next argument as their value.
var valueFlags = map[string]bool{"format": true, "config": true, "cache": true, "listen": true}

// boolFlags take no value.
var boolFlags = map[string]bool{"explicit": true}

func parseOptions(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.files = append(opts.files, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		value := ""
		hasValue := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		if boolFlags[name] && !hasValue {
			opts.explicit = true
			continue
		}
		if !valueFlags[name] {
			return opts, fmt.Errorf("unknown flag %s", arg)
		}
		if !hasValue {
			if i+1 >= len(args) {
				return opts, fmt.Errorf("flag %s needs a value", arg)
			}
			i++
			value = args[i]
		}
		switch name {
		case "format":
			opts.format = value
		case "config":
			opts.configPath = value
		case "cache":
			opts.cachePath = value
		case "listen":
			opts.listen = value
		}
	}
	return opts, nil
}

func (a *app) fail(format string, args ...interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.stderr, format+"\n", args...)
	a.exitCode = 1
}

func (a *app) printErrors(errs []error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	diagnostics.NewPrinter(a.stderr).Print(errs)
	a.exitCode = 1
}

// setup loads the configuration and applies the command-line overrides.
func (a *app) setup(ctx context.Context) bool {
	opts, err := parseOptions(a.args)
	if err != nil {
		a.fail("Error: %s", err)
		return false
	}
	a.opts = opts

	cfg, err := a.loadConfig()
	if err != nil {
		a.fail("Error: %s", err)
		return false
	}
	if err := cfg.CheckRequires(config.Version); err != nil {
		a.fail("Error: %s", err)
		return false
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}
	if opts.cachePath != "" {
		cfg.Cache = opts.cachePath
	}
	if opts.listen != "" {
		cfg.Listen = opts.listen
	}
	a.cfg = cfg

	b, err := backend.ByName(cfg.Format)
	if err != nil {
		a.fail("Error: %s", err)
		return false
	}
	a.backend = b

	if cfg.Cache != "" {
		c, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			a.fail("Error: %s", err)
			return false
		}
		a.cache = c
	}
	return true
}

func (a *app) teardown() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// loadConfig reads -config, or the nearest asc.yaml above the first input
// file (or the working directory), or falls back to the defaults.
func (a *app) loadConfig() (*config.Config, error) {
	if a.opts.configPath != "" {
		return config.LoadConfig(a.opts.configPath)
	}
	dir := "."
	if len(a.opts.files) > 0 && a.opts.files[0] != "-" {
		dir = filepath.Dir(a.opts.files[0])
	}
	path, err := config.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

// compileUnit compiles one source text to output bytes, going through the
// cache when one is configured. Diagnostics are returned, not printed.
func (a *app) compileUnit(ctx context.Context, path, source string) ([]byte, []error) {
	if a.cache != nil {
		entry, hit, err := a.cache.Get(ctx, source, a.cfg.Builtins)
		if err != nil {
			return nil, []error{err}
		}
		if hit {
			out, err := a.backend.Emit(entry.IR)
			if err != nil {
				return nil, []error{err}
			}
			return out, nil
		}
	}

	result := backend.Run(a.backend, path, source, a.cfg.Builtins)
	if result.Failed() {
		return nil, result.ErrorList()
	}
	if a.cache != nil {
		if _, err := a.cache.Put(ctx, source, a.cfg.Builtins, result.IR); err != nil {
			return nil, []error{err}
		}
	}
	return result.Output, nil
}

// outputExt maps a format to the extension used for batch output files.
var outputExt = map[string]string{"json": ".json", "yaml": ".yaml", "proto": ".pb", "text": ".txt"}

// OutputPath is where batch mode writes the result for a source file.
func OutputPath(source, format string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + outputExt[format]
}

// handleVersion prints the version for -v / -version.
func (a *app) handleVersion() bool {
	if len(a.args) != 1 {
		return false
	}
	switch a.args[0] {
	case "-v", "-version", "--version":
		fmt.Fprintln(a.stdout, "asc "+config.Version)
		return true
	}
	return false
}

func (a *app) handleHelp() bool {
	if len(a.args) == 0 {
		return false
	}
	switch a.args[0] {
	case "-h", "-help", "--help", "help":
	default:
		return false
	}
	fmt.Fprintf(a.stdout, `asc %s: compiles programs to a flat definition table

Usage:
  asc [flags] < main.asc         compile stdin, write the result to stdout
  asc [flags] main.asc           compile a file, write the result to stdout
  asc [flags] a.asc b.asc ...    compile files concurrently, writing a.json, b.json, ...
  asc fmt [-explicit] main.asc   print the program with operator grouping resolved
  asc watch [flags] main.asc     recompile whenever the file changes
  asc serve [flags]              run the %s gRPC service

Flags:
  -format json|yaml|proto|text   output format (default json)
  -config path                   asc.yaml to use (default: nearest one)
  -cache path                    sqlite cache of compiled units
  -listen addr                   serve address (default %s)
  -explicit                      fmt: parenthesise every operator application
  -v, -version                   print the version
`, config.Version, server.ServiceName, config.DefaultListen)
	return true
}

// handleFmt prints the parsed program back as source. Precedence is already
// resolved, so -explicit shows exactly how operators were grouped.
func (a *app) handleFmt() bool {
	if len(a.args) == 0 || a.args[0] != "fmt" {
		return false
	}
	opts, err := parseOptions(a.args[1:])
	if err != nil {
		a.fail("Error: %s", err)
		return true
	}
	if len(opts.files) > 1 {
		a.fail("Usage: asc fmt [-explicit] [file]")
		return true
	}

	var source []byte
	path := ""
	if len(opts.files) == 0 || opts.files[0] == "-" {
		source, err = io.ReadAll(a.stdin)
	} else {
		path = opts.files[0]
		source, err = os.ReadFile(path)
	}
	if err != nil {
		a.fail("Error reading input: %s", err)
		return true
	}

	result := backend.Parse(path, string(source))
	if result.Failed() {
		a.printErrors(result.ErrorList())
		return true
	}
	out := prettyprinter.PrintProgram(result.AstRoot)
	if opts.explicit {
		out = prettyprinter.ParenthesizeProgram(result.AstRoot)
	}
	if out != "" {
		fmt.Fprintln(a.stdout, out)
	}
	return true
}

func (a *app) handleWatch(ctx context.Context) bool {
	if len(a.args) == 0 || a.args[0] != "watch" {
		return false
	}
	a.args = a.args[1:]
	if !a.setup(ctx) {
		return true
	}
	defer a.teardown()
	if len(a.opts.files) != 1 || a.opts.files[0] == "-" {
		a.fail("Usage: asc watch [flags] <file>")
		return true
	}

	logger := log.New(a.stderr, "", 0)
	err := watch.Run(ctx, a.opts.files[0], func(path string) {
		source, err := os.ReadFile(path)
		if err != nil {
			logger.Printf("reading %s: %v", path, err)
			return
		}
		out, errs := a.compileUnit(ctx, path, string(source))
		if len(errs) > 0 {
			a.printErrors(errs)
			return
		}
		a.mu.Lock()
		a.stdout.Write(out)
		a.mu.Unlock()
		logger.Printf("compiled %s", path)
	})
	if err != nil {
		a.fail("Error: %s", err)
		return true
	}
	// A failed build while watching is not a failure of watch itself
	a.exitCode = 0
	return true
}

func (a *app) handleServe(ctx context.Context) bool {
	if len(a.args) == 0 || a.args[0] != "serve" {
		return false
	}
	a.args = a.args[1:]
	if !a.setup(ctx) {
		return true
	}
	defer a.teardown()
	if len(a.opts.files) > 0 {
		a.fail("Usage: asc serve [-listen addr] [-cache path]")
		return true
	}

	svc := &server.Service{
		Builtins: a.cfg.Builtins,
		Cache:    a.cache,
		Logger:   log.New(a.stderr, "", 0),
	}
	if err := server.Serve(ctx, a.cfg.Listen, svc); err != nil {
		a.fail("Error: %s", err)
	}
	return true
}

// handleCompile is the default mode.
func (a *app) handleCompile(ctx context.Context) {
	if !a.setup(ctx) {
		return
	}
	defer a.teardown()

	files := a.opts.files
	if len(files) <= 1 {
		a.compileToStdout(ctx, files)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, file := range files {
		file := file // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			source, err := os.ReadFile(file)
			if err != nil {
				a.fail("Error reading input: %s", err)
				return nil
			}
			out, errs := a.compileUnit(gctx, file, string(source))
			if len(errs) > 0 {
				a.printErrors(errs)
				return nil
			}
			dest := OutputPath(file, a.backend.Name())
			if err := os.WriteFile(dest, out, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", dest, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.fail("Error: %s", err)
	}
}

func (a *app) compileToStdout(ctx context.Context, files []string) {
	var source []byte
	var err error
	path := ""
	if len(files) == 0 || files[0] == "-" {
		source, err = io.ReadAll(a.stdin)
	} else {
		path = files[0]
		source, err = os.ReadFile(path)
	}
	if err != nil {
		a.fail("Error reading input: %s", err)
		return
	}

	out, errs := a.compileUnit(ctx, path, string(source))
	if len(errs) > 0 {
		a.printErrors(errs)
		return
	}
	a.stdout.Write(out)
}

// Main runs the command with explicit streams and returns the exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{args: args, stdin: stdin, stdout: stdout, stderr: stderr}

	if a.handleVersion() || a.handleHelp() {
		return 0
	}
	if a.handleFmt() {
		return a.exitCode
	}
	if a.handleWatch(ctx) {
		return a.exitCode
	}
	if a.handleServe(ctx) {
		return a.exitCode
	}
	a.handleCompile(ctx)
	return a.exitCode
}

// Run is the process entry point.
func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Main(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}
