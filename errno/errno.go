// Package errno defines the POSIX error codes reported through the errno
// side channel of the libc entry points.
//
// Values follow the Linux numbering that glibc and musl use (EINVAL 22,
// ERANGE 34, EILSEQ 84), not the WASI numbering of wasi-libc. An Errno is
// also a Go error, so host code can return one directly and test for it
// with errors.Is.
package errno

import (
	"errors"
	"strconv"
)

// Errno is a POSIX error number. Zero means "no error".
type Errno int32

const (
	EPERM   Errno = 1
	ENOENT  Errno = 2
	EINTR   Errno = 4
	EIO     Errno = 5
	EBADF   Errno = 9
	EAGAIN  Errno = 11
	ENOMEM  Errno = 12
	EACCES  Errno = 13
	EFAULT  Errno = 14
	EBUSY   Errno = 16
	EEXIST  Errno = 17
	EINVAL  Errno = 22
	ENOSPC  Errno = 28
	EDOM    Errno = 33
	ERANGE  Errno = 34
	ENOSYS  Errno = 38
	EILSEQ  Errno = 84
	ENOTSUP Errno = 95
)

var messages = map[Errno]string{
	EPERM:   "Operation not permitted",
	ENOENT:  "No such file or directory",
	EINTR:   "Interrupted system call",
	EIO:     "Input/output error",
	EBADF:   "Bad file descriptor",
	EAGAIN:  "Resource temporarily unavailable",
	ENOMEM:  "Cannot allocate memory",
	EACCES:  "Permission denied",
	EFAULT:  "Bad address",
	EBUSY:   "Device or resource busy",
	EEXIST:  "File exists",
	EINVAL:  "Invalid argument",
	ENOSPC:  "No space left on device",
	EDOM:    "Numerical argument out of domain",
	ERANGE:  "Numerical result out of range",
	ENOSYS:  "Function not implemented",
	EILSEQ:  "Invalid or incomplete multibyte or wide character",
	ENOTSUP: "Operation not supported",
}

var names = map[Errno]string{
	EPERM:   "EPERM",
	ENOENT:  "ENOENT",
	EINTR:   "EINTR",
	EIO:     "EIO",
	EBADF:   "EBADF",
	EAGAIN:  "EAGAIN",
	ENOMEM:  "ENOMEM",
	EACCES:  "EACCES",
	EFAULT:  "EFAULT",
	EBUSY:   "EBUSY",
	EEXIST:  "EEXIST",
	EINVAL:  "EINVAL",
	ENOSPC:  "ENOSPC",
	EDOM:    "EDOM",
	ERANGE:  "ERANGE",
	ENOSYS:  "ENOSYS",
	EILSEQ:  "EILSEQ",
	ENOTSUP: "ENOTSUP",
}

// Error returns the strerror text for e.
func (e Errno) Error() string {
	return Message(e)
}

// Name returns the symbolic constant name, or "E<n>" for unknown codes.
func (e Errno) Name() string {
	if n, ok := names[e]; ok {
		return n
	}
	return "E" + strconv.Itoa(int(e))
}

// Known reports whether e has a table entry.
func (e Errno) Known() bool {
	_, ok := messages[e]
	return ok
}

// Message renders the strerror text for code. Codes without a table entry
// render as "Unknown error N"; zero renders as "Success".
func Message(code Errno) string {
	if code == 0 {
		return "Success"
	}
	if m, ok := messages[code]; ok {
		return m
	}
	return "Unknown error " + strconv.Itoa(int(code))
}

type coder interface {
	Errno() Errno
}

// Of extracts the errno carried by err. It returns 0 for nil and EINVAL for
// errors that carry no code.
func Of(err error) Errno {
	if err == nil {
		return 0
	}
	var e Errno
	if errors.As(err, &e) {
		return e
	}
	var c coder
	if errors.As(err, &c) {
		return c.Errno()
	}
	return EINVAL
}
