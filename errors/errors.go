package errors

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-libc/errno"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAlloc   Phase = "alloc"   // heap operations
	PhaseDecode  Phase = "decode"  // bytes to code units
	PhaseEncode  Phase = "encode"  // code units to bytes
	PhaseParse   Phase = "parse"   // numeric text parsing
	PhaseLocale  Phase = "locale"  // locale lookup and selection
	PhaseMemory  Phase = "memory"  // guest memory access
	PhaseHost    Phase = "host"    // host module construction
	PhaseLoad    Phase = "load"    // guest module loading
	PhaseRuntime Phase = "runtime" // guest execution
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindOutOfMemory     Kind = "out_of_memory"
	KindIllegalSequence Kind = "illegal_sequence"
	KindIncomplete      Kind = "incomplete"
	KindOverflow        Kind = "overflow"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindFatal           Kind = "fatal"
	KindNotFound        Kind = "not_found"
	KindNotInitialized  Kind = "not_initialized"
	KindRegistration    Kind = "registration"
	KindInstantiation   Kind = "instantiation"
	KindInvalidData     Kind = "invalid_data"
)

// kindCodes maps kinds to the errno reported through the C side channel.
var kindCodes = map[Kind]errno.Errno{
	KindInvalidArgument: errno.EINVAL,
	KindOutOfMemory:     errno.ENOMEM,
	KindIllegalSequence: errno.EILSEQ,
	KindOverflow:        errno.ERANGE,
	KindOutOfBounds:     errno.EFAULT,
	KindNotFound:        errno.ENOENT,
}

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Code   errno.Errno
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Code != 0 {
		b.WriteString(" (")
		b.WriteString(e.Code.Name())
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Errno returns the code reported to C callers. An explicit Code wins over
// the kind's default mapping.
func (e *Error) Errno() errno.Errno {
	if e.Code != 0 {
		return e.Code
	}
	return kindCodes[e.Kind]
}

// Is reports whether target matches this error. Targets may be another
// *Error (compared by phase and kind) or an errno.Errno.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e.Phase == t.Phase && e.Kind == t.Kind
	case errno.Errno:
		return t != 0 && e.Errno() == t
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Code sets the errno reported for this error
func (b *Builder) Code(code errno.Errno) *Builder {
	b.err.Code = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidArgument creates an EINVAL error
func InvalidArgument(phase Phase, detail string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
		Value:  value,
		Code:   errno.EINVAL,
	}
}

// OutOfMemory creates an allocation failure error
func OutOfMemory(size, align uint64) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindOutOfMemory,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Code:   errno.ENOMEM,
	}
}

// IllegalSequence creates an EILSEQ error for the given bytes or code point
func IllegalSequence(phase Phase, codeset string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIllegalSequence,
		Detail: fmt.Sprintf("illegal %s sequence %#x", codeset, value),
		Value:  value,
		Code:   errno.EILSEQ,
	}
}

// Overflow creates an ERANGE error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
		Code:   errno.ERANGE,
	}
}

// OutOfBounds creates a guest memory access error
func OutOfBounds(phase Phase, offset, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("access at %#x length %d out of bounds", offset, length),
		Value:  offset,
	}
}

// Fatal creates an unrecoverable error. Callers serving a guest abort it.
func Fatal(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFatal,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// IsFatal reports whether err carries KindFatal anywhere in its chain.
func IsFatal(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindFatal {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates a host function registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", namespace, name),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingImport represents a single unresolved guest import
type MissingImport struct {
	Module   string // e.g., "env"
	Function string // e.g., "wcstombs"
}

// MissingImportsError is returned when a guest imports libc symbols the
// host module does not provide
type MissingImportsError struct {
	Imports []MissingImport
}

// NewMissingImportsError creates an error from a list of "module#function" strings
func NewMissingImportsError(imports []string) *MissingImportsError {
	result := &MissingImportsError{
		Imports: make([]MissingImport, 0, len(imports)),
	}
	for _, imp := range imports {
		mod, fn, found := strings.Cut(imp, "#")
		if !found {
			mod, fn = imp, ""
		}
		result.Imports = append(result.Imports, MissingImport{
			Module:   mod,
			Function: fn,
		})
	}
	return result
}

func (e *MissingImportsError) Error() string {
	if len(e.Imports) == 0 {
		return "[load] missing_import: no imports specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing %d host function(s):\n", len(e.Imports))

	byModule := make(map[string][]string)
	var order []string
	for _, imp := range e.Imports {
		if _, exists := byModule[imp.Module]; !exists {
			order = append(order, imp.Module)
		}
		byModule[imp.Module] = append(byModule[imp.Module], imp.Function)
	}

	for _, mod := range order {
		b.WriteString("\n  ")
		b.WriteString(mod)
		b.WriteString(":\n")
		for _, fn := range byModule[mod] {
			b.WriteString("    - ")
			b.WriteString(fn)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}
