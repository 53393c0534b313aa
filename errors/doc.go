// Package errors provides structured error types for the wasm-libc library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Kinds that C callers observe carry an errno code, so a Go
// caller and the C side channel see the same failure:
//
//	err := errors.New(errors.PhaseAlloc, errors.KindOutOfMemory).
//		Detail("calloc(%d, %d) overflows", n, size).
//		Code(errno.ENOMEM).
//		Build()
//
//	errors.Is(err, errno.ENOMEM) // true
//
// Fatal errors (KindFatal) mark violated invariants that cannot be reported
// through errno; the libc host aborts the calling guest when it sees one.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
