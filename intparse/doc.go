// Package intparse implements the integer parser behind strtol, strtoul,
// strtoll, strtoull, strtoimax, strtoumax and the ato* functions.
//
// A single generic Parse serves every result width. The caller supplies
// the bounds; results that do not fit saturate and report errno.ERANGE
// while the parser keeps consuming digits, so Outcome.N always points past
// the whole numeral.
package intparse
