package libc

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// Param is a named parameter of an ABI function.
type Param struct {
	Name string
	Type wit.Type
}

// Func describes one function of the libc ABI. Types are WIT types; the
// wasm32 signature is their flattening (pointers and size_t are u32).
type Func struct {
	Name    string
	Params  []Param
	Results []wit.Type
	Doc     string
	fn      handler
}

// handler runs one call with the guest's operand stack.
type handler func(c *call, stack []uint64)

// ParamTypes returns the flattened wasm parameter types.
func (f Func) ParamTypes() []api.ValueType {
	vts := make([]api.ValueType, len(f.Params))
	for i, p := range f.Params {
		vts[i] = flatten(p.Type)
	}
	return vts
}

// ResultTypes returns the flattened wasm result types.
func (f Func) ResultTypes() []api.ValueType {
	vts := make([]api.ValueType, len(f.Results))
	for i, t := range f.Results {
		vts[i] = flatten(t)
	}
	return vts
}

// Signature renders the function as a WIT declaration.
func (f Func) Signature() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + TypeName(p.Type)
	}
	sig := fmt.Sprintf("%s: func(%s)", f.Name, strings.Join(params, ", "))
	if len(f.Results) == 1 {
		sig += " -> " + TypeName(f.Results[0])
	}
	return sig
}

func flatten(t wit.Type) api.ValueType {
	switch t.(type) {
	case wit.U64, wit.S64:
		return api.ValueTypeI64
	case wit.F32:
		return api.ValueTypeF32
	case wit.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

// TypeName returns the WIT spelling of a primitive type.
func TypeName(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	default:
		return fmt.Sprintf("%T", t)
	}
}

var (
	u16 = wit.U16{}
	u32 = wit.U32{}
	s32 = wit.S32{}
	u64 = wit.U64{}
	s64 = wit.S64{}
)

func p(name string, t wit.Type) Param { return Param{Name: name, Type: t} }

func results(ts ...wit.Type) []wit.Type { return ts }

// functions is the ABI table. Order is the order of -list output.
var functions = []Func{
	// stdlib.h: memory
	{Name: "malloc", Params: []Param{p("size", u32)}, Results: results(u32), fn: malloc,
		Doc: "allocate size bytes aligned to max_align_t"},
	{Name: "calloc", Params: []Param{p("nmemb", u32), p("size", u32)}, Results: results(u32), fn: calloc,
		Doc: "allocate a zeroed array"},
	{Name: "realloc", Params: []Param{p("ptr", u32), p("size", u32)}, Results: results(u32), fn: realloc,
		Doc: "resize an allocation"},
	{Name: "aligned_alloc", Params: []Param{p("alignment", u32), p("size", u32)}, Results: results(u32), fn: alignedAlloc,
		Doc: "allocate with explicit alignment"},
	{Name: "posix_memalign", Params: []Param{p("memptr", u32), p("alignment", u32), p("size", u32)}, Results: results(s32), fn: posixMemalign,
		Doc: "allocate with explicit alignment, returning an error code"},
	{Name: "free", Params: []Param{p("ptr", u32)}, fn: free,
		Doc: "release an allocation"},
	{Name: "free_sized", Params: []Param{p("ptr", u32), p("size", u32)}, fn: freeSized,
		Doc: "release an allocation of known size"},
	{Name: "free_aligned_sized", Params: []Param{p("ptr", u32), p("alignment", u32), p("size", u32)}, fn: freeAlignedSized,
		Doc: "release an allocation of known size and alignment"},

	// locale
	{Name: "get_thread_locale", Results: results(u32), fn: getThreadLocale,
		Doc: "handle of the calling thread's locale"},
	{Name: "set_thread_locale", Params: []Param{p("locale", u32)}, Results: results(u32), fn: setThreadLocale,
		Doc: "switch the calling thread's locale, returning the previous handle"},
	{Name: "lookup_locale", Params: []Param{p("name", u32)}, Results: results(u32), fn: lookupLocale,
		Doc: "resolve a locale name such as \"C\" or \"en_US.UTF-8\""},
	{Name: "locale_codeset", Params: []Param{p("locale", u32), p("buf", u32), p("len", u32)}, Results: results(s32), fn: localeCodeset,
		Doc: "copy the codeset name of a locale into buf"},
	{Name: "__ctype_get_mb_cur_max", Results: results(u32), fn: mbCurMax,
		Doc: "MB_CUR_MAX of the calling thread's locale"},

	// uchar.h, wchar.h
	{Name: "mbrtoc16", Params: []Param{p("pc16", u32), p("s", u32), p("n", u32), p("ps", u32)}, Results: results(u32), fn: mbrtoc16,
		Doc: "decode one character to UTF-16"},
	{Name: "c16rtomb", Params: []Param{p("s", u32), p("c16", u16), p("ps", u32)}, Results: results(u32), fn: c16rtomb,
		Doc: "encode one UTF-16 unit"},
	{Name: "mbrtoc32", Params: []Param{p("pc32", u32), p("s", u32), p("n", u32), p("ps", u32)}, Results: results(u32), fn: mbrtoc32,
		Doc: "decode one character to UTF-32"},
	{Name: "c32rtomb", Params: []Param{p("s", u32), p("c32", u32), p("ps", u32)}, Results: results(u32), fn: c32rtomb,
		Doc: "encode one code point"},
	{Name: "mbsinit", Params: []Param{p("ps", u32)}, Results: results(s32), fn: mbsinit,
		Doc: "test for the initial conversion state"},
	{Name: "mbrlen", Params: []Param{p("s", u32), p("n", u32), p("ps", u32)}, Results: results(u32), fn: mbrlen,
		Doc: "length of the next character"},

	// stdlib.h, inttypes.h: numeric conversion
	{Name: "strtol", Params: strtoParams, Results: results(s32), fn: strto(32, true),
		Doc: "parse a long"},
	{Name: "strtoul", Params: strtoParams, Results: results(u32), fn: strto(32, false),
		Doc: "parse an unsigned long"},
	{Name: "strtoll", Params: strtoParams, Results: results(s64), fn: strto(64, true),
		Doc: "parse a long long"},
	{Name: "strtoull", Params: strtoParams, Results: results(u64), fn: strto(64, false),
		Doc: "parse an unsigned long long"},
	{Name: "strtoimax", Params: strtoParams, Results: results(s64), fn: strto(64, true),
		Doc: "parse an intmax_t"},
	{Name: "strtoumax", Params: strtoParams, Results: results(u64), fn: strto(64, false),
		Doc: "parse a uintmax_t"},
	{Name: "atoi", Params: []Param{p("s", u32)}, Results: results(s32), fn: ato(32),
		Doc: "parse an int in base 10"},
	{Name: "atol", Params: []Param{p("s", u32)}, Results: results(s32), fn: ato(32),
		Doc: "parse a long in base 10"},
	{Name: "atoll", Params: []Param{p("s", u32)}, Results: results(s64), fn: ato(64),
		Doc: "parse a long long in base 10"},

	// string.h
	{Name: "strtok", Params: []Param{p("s", u32), p("sep", u32)}, Results: results(u32), fn: strtok,
		Doc: "split a string into tokens, keeping the position per thread"},
	{Name: "strtok_r", Params: []Param{p("s", u32), p("sep", u32), p("lasts", u32)}, Results: results(u32), fn: strtokR,
		Doc: "split a string into tokens, keeping the position in *lasts"},
	{Name: "strdup", Params: []Param{p("s", u32)}, Results: results(u32), fn: strdup,
		Doc: "copy a string into a new allocation"},
	{Name: "strndup", Params: []Param{p("s", u32), p("n", u32)}, Results: results(u32), fn: strndup,
		Doc: "copy at most n bytes of a string into a new allocation"},
	{Name: "strerror", Params: []Param{p("errnum", s32)}, Results: results(u32), fn: strerror,
		Doc: "message for an error number, in a per-thread buffer"},
	{Name: "strerror_r", Params: []Param{p("errnum", s32), p("buf", u32), p("len", u32)}, Results: results(s32), fn: strerrorR,
		Doc: "copy the message for an error number into buf"},
	{Name: "strsignal", Params: []Param{p("sig", s32)}, Results: results(u32), fn: strsignal,
		Doc: "description of a signal, in a per-thread buffer"},

	// errno.h
	{Name: "__errno_location", Results: results(u32), fn: errnoLocation,
		Doc: "address of the calling thread's errno"},
}

var strtoParams = []Param{p("s", u32), p("endptr", u32), p("base", s32)}

// Functions returns the ABI table.
func Functions() []Func {
	out := make([]Func, len(functions))
	copy(out, functions)
	return out
}
