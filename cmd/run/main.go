package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/intparse"
	"github.com/wippyai/wasm-libc/libc"
	"github.com/wippyai/wasm-libc/runtime"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to core wasm module")
		funcName    = flag.String("func", "", "Function to call (optional)")
		args        = flag.String("args", "", "Integer arguments (comma-separated, C syntax: 42,-1,0x10)")
		localeName  = flag.String("locale", "", "Initial locale (default C.UTF-8)")
		memLimit    = flag.Uint("mem-limit", 0, "Memory limit in 64 KiB pages (0 = 4 GiB)")
		moduleName  = flag.String("module", libc.DefaultModuleName, "Import module name of the libc functions")
		list        = flag.Bool("list", false, "List the libc ABI (and the module's exports with -wasm) and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive conversion inspector")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*localeName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *wasmFile == "" && !*list {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-func name] [-args 1,2] [-locale name] [-mem-limit pages] [-v]")
		fmt.Fprintln(os.Stderr, "       run [-wasm <file.wasm>] -list")
		fmt.Fprintln(os.Stderr, "       run -i [-locale name]  (interactive inspector)")
		os.Exit(1)
	}

	cfg := &runtime.Config{
		ModuleName:       *moduleName,
		Locale:           *localeName,
		MemoryLimitPages: uint32(*memLimit),
	}
	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()
		cfg.Logger = log
	}

	if err := run(cfg, *wasmFile, *funcName, *args, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *runtime.Config, wasmFile, funcName, argStr string, listOnly bool) error {
	ctx := context.Background()

	if listOnly {
		fmt.Printf("libc ABI (import module %q):\n", cfg.ModuleName)
		for _, f := range libc.Functions() {
			fmt.Printf("  %-60s %s\n", f.Signature(), f.Doc)
		}
		if wasmFile == "" {
			return nil
		}
	}

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	args, err := parseArgs(argStr)
	if err != nil {
		return err
	}

	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	module, err := rt.Load(ctx, data)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	exports := module.Exports()
	fmt.Printf("Module: %s (%s)\n", wasmFile, module.Name())
	fmt.Printf("Locale: %s\n", rt.Locale())
	fmt.Printf("\nExported functions:\n")
	for _, e := range exports {
		fmt.Printf("  %s\n", e)
	}

	if listOnly {
		return nil
	}

	if funcName == "" {
		for _, name := range []string{"_start", "run", "main"} {
			for _, e := range exports {
				if e.Name == name {
					funcName = name
					break
				}
			}
			if funcName != "" {
				break
			}
		}
		if funcName == "" && len(exports) == 1 {
			funcName = exports[0].Name
		}
		if funcName == "" {
			fmt.Printf("\nNo function specified and no common entry point found.\n")
			fmt.Printf("Use -func to specify a function to call.\n")
			return nil
		}
	}

	fmt.Printf("\nInstantiating module...\n")
	instance, err := module.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer instance.Close(ctx)

	fmt.Printf("\nCalling %s(%s)...\n", funcName, argStr)
	results, err := instance.Call(ctx, funcName, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	fmt.Printf("Result: %v\n", results)
	if code := instance.Thread().Errno(); code != 0 {
		fmt.Printf("errno: %s (%v)\n", code.Name(), code)
	}
	stats := instance.Heap().Arena().Stats()
	fmt.Printf("Heap: %d live blocks, %d bytes in use, top %#x\n", stats.Live, stats.InUse, stats.Top)
	n := instance.Heap().Counts()
	fmt.Printf("      %d allocs, %d frees, %d failed\n", n.Allocs, n.Frees, n.Failures)
	return nil
}

// parseArgs reads comma-separated integers in C syntax. Negative values
// are passed in two's complement.
func parseArgs(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	var args []uint64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		var (
			v    uint64
			n    int
			code errno.Errno
			typ  = "uint64"
		)
		if strings.HasPrefix(field, "-") {
			o := intparse.ParseInt64([]byte(field), 0)
			v, n, code, typ = uint64(o.Value), o.N, o.Err, "int64"
		} else {
			o := intparse.ParseUint64([]byte(field), 0)
			v, n, code = o.Value, o.N, o.Err
		}
		switch {
		case code == errno.ERANGE:
			return nil, errors.Overflow(errors.PhaseParse, field, typ)
		case n != len(field) || code != 0:
			return nil, errors.InvalidArgument(errors.PhaseParse, "invalid argument", field)
		}
		args = append(args, v)
	}
	return args, nil
}
