// Package wasmlibc hosts the runtime core of a C library for WebAssembly
// guests: dynamic memory, locale-aware multibyte conversion and integer
// parsing, served to wasm32 modules as flat C-shaped host imports.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	wasmlibc/           Root package with the Memory and Allocator interfaces
//	├── runtime/        High-level API for loading and running guest modules
//	├── libc/           wazero host module exposing the C ABI
//	├── heap/           Arena allocator over linear memory and the malloc family
//	├── locale/         Locale descriptors, ASCII and UTF-8 codecs, mbstate_t
//	├── mbconv/         <uchar.h> conversions (mbrtoc16, c16rtomb, ...)
//	├── intparse/       Saturating integer parser behind strtol and friends
//	├── thread/         Per-thread locale, errno, strtok cursor, guest cells and fallback state
//	├── ctype/          ASCII character classification
//	├── errno/          POSIX error numbers
//	└── errors/         Structured error types for debugging
//
// # Quick Start
//
// Load and run a guest that imports libc functions from "env":
//
//	rt, err := runtime.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	results, err := inst.Call(ctx, "run")
//
// Every component is also usable directly from Go:
//
//	var st locale.State
//	var u uint16
//	n, err := mbconv.BytesToC16(locale.CUTF8, &u, []byte("€"), &st)
//
//	out := intparse.ParseInt64([]byte(" -0x1G"), 0) // {Value: -1, N: 5}
//
// # Error Handling
//
// Go APIs return *errors.Error values carrying a phase, a kind and the errno
// a C caller would observe. The libc host module reports the same errno
// through the guest's errno cell (see __errno_location) and returns the C
// sentinel values.
package wasmlibc
