// Package libc exposes the runtime core to wasm32 guests as a wazero host
// module.
//
// A guest built against a C library that leaves the allocator, the
// locale-aware character conversions, the integer parsers and the
// stateful string.h helpers undefined imports them from this module:
//
//	(import "env" "malloc"   (func (param i32) (result i32)))
//	(import "env" "mbrtoc16" (func (param i32 i32 i32 i32) (result i32)))
//	(import "env" "strtol"   (func (param i32 i32 i32) (result i32)))
//
// Each calling module is a process with its own heap over its linear
// memory and its own thread table. Calls run on the thread carried by the
// context (see thread.WithThread) or on the process's main thread.
//
// The string.h helpers that keep state (strtok, strerror, strsignal) keep
// it per thread; their buffers live in the guest heap and are freed when
// the thread exits.
//
// Functions that report failure through errno update the calling
// thread's errno, and the guest's errno cell once __errno_location has
// been called. Out of bounds pointers trap. Deallocating with an
// impossible layout aborts the guest with exit code 134.
//
// Functions lists the ABI with WIT-typed signatures.
package libc
