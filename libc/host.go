package libc

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/heap"
	"github.com/wippyai/wasm-libc/internal/memory"
	"github.com/wippyai/wasm-libc/locale"
	"github.com/wippyai/wasm-libc/thread"
)

// DefaultModuleName is the import module clang and wasm-ld use for
// undefined symbols.
const DefaultModuleName = "env"

// Options configures a Host.
type Options struct {
	// ModuleName is the name guests import from. Default "env".
	ModuleName string

	// Registry resolves locale names and handles. Default: a fresh
	// registry holding the built-in locales.
	Registry *locale.Registry

	// Locale is the initial locale of every main thread. Default C.UTF-8.
	Locale *locale.Locale

	// Heap configures the arena of each process. A zero Base uses the
	// guest's __heap_base export, or the memory size when there is none.
	Heap heap.Config
}

// Host serves the libc ABI to guest modules. State is kept per calling
// module ("process"): a heap over its memory and a table of threads.
type Host struct {
	opts      Options
	processes map[string]*Process
	mu        sync.Mutex
}

// New creates a host.
func New(opts Options) *Host {
	if opts.ModuleName == "" {
		opts.ModuleName = DefaultModuleName
	}
	if opts.Registry == nil {
		opts.Registry = locale.NewRegistry()
	}
	if opts.Locale == nil {
		opts.Locale = locale.Default()
	}
	return &Host{
		opts:      opts,
		processes: make(map[string]*Process),
	}
}

// ModuleName returns the import module name.
func (h *Host) ModuleName() string { return h.opts.ModuleName }

// Registry returns the locale registry.
func (h *Host) Registry() *locale.Registry { return h.opts.Registry }

// Instantiate defines the host module in r.
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(h.opts.ModuleName)
	for _, f := range functions {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(h.bind(f), f.ParamTypes(), f.ResultTypes()).
			WithParameterNames(paramNames(f)...).
			Export(f.Name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(h.opts.ModuleName, "libc", err)
	}
	Logger().Debug("libc host module instantiated",
		zap.String("module", h.opts.ModuleName),
		zap.Int("functions", len(functions)))
	return mod, nil
}

func paramNames(f Func) []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

// Handler returns the Go implementation of an ABI function, for calling
// it outside a wazero host module.
func (h *Host) Handler(name string) (api.GoModuleFunc, bool) {
	for _, f := range functions {
		if f.Name == name {
			return h.bind(f), true
		}
	}
	return nil, false
}

// bind resolves the calling process and thread around a handler.
func (h *Host) bind(f Func) api.GoModuleFunc {
	fn := f.fn
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		p := h.Process(mod)
		t, ok := thread.FromContext(ctx)
		if !ok {
			t = p.Main()
		}
		fn(&call{ctx: ctx, mod: mod, host: h, proc: p, thread: t}, stack)
	}
}

// Process returns the state of the calling module, creating it on first
// use.
func (h *Host) Process(mod api.Module) *Process {
	name := mod.Name()

	h.mu.Lock()
	defer h.mu.Unlock()

	if p, ok := h.processes[name]; ok {
		return p
	}
	p := newProcess(name, mod, h.opts)
	h.processes[name] = p
	return p
}

// Lookup returns the state of a process without creating it.
func (h *Host) Lookup(name string) (*Process, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.processes[name]
	return p, ok
}

// Release drops the state of a process. Call it when the guest instance
// is closed.
func (h *Host) Release(name string) {
	h.mu.Lock()
	p, ok := h.processes[name]
	delete(h.processes, name)
	h.mu.Unlock()

	if !ok {
		return
	}
	_ = p.threads.Close()
	fields := []zap.Field{zap.String("process", name)}
	if p.heap != nil {
		n := p.heap.Counts()
		fields = append(fields,
			zap.Uint64("allocs", n.Allocs),
			zap.Uint64("frees", n.Frees),
			zap.Uint64("failures", n.Failures))
	}
	Logger().Debug("process released", fields...)
}

// Process is the libc state of one guest instance.
type Process struct {
	mem     wasmlibc.LinearMemory
	heap    *heap.Facade
	threads *thread.Table
	main    *thread.Thread
	name    string
}

func newProcess(name string, mod api.Module, opts Options) *Process {
	cfg := opts.Heap
	if cfg.Base == 0 {
		if g := mod.ExportedGlobal("__heap_base"); g != nil {
			cfg.Base = uint32(g.Get())
		}
	}

	var (
		mem    wasmlibc.LinearMemory
		facade *heap.Facade
	)
	if m := mod.Memory(); m != nil {
		mem = memory.WrapMemory(m)
		facade = heap.New(mem, cfg)
	}

	log := Logger().With(zap.String("process", name))
	threads := thread.NewTable()
	threads.Subscribe(thread.ObserverFunc(func(e thread.Event) {
		switch e.Type {
		case thread.EventStarted:
			log.Debug("thread started", zap.Uint32("tid", uint32(e.ID)))
		case thread.EventExited:
			if facade != nil {
				releaseCells(facade, e.Thread)
			}
			log.Debug("thread exited", zap.Uint32("tid", uint32(e.ID)))
		}
	}))

	main, _ := threads.Spawn()
	main.SetLocale(opts.Locale)

	log.Debug("process created", zap.Uint32("heap_base", cfg.Base), zap.Bool("memory", facade != nil))
	return &Process{
		mem:     mem,
		heap:    facade,
		threads: threads,
		main:    main,
		name:    name,
	}
}

// Name returns the guest module name.
func (p *Process) Name() string { return p.name }

// Memory returns the guest memory, or nil if the guest has none.
func (p *Process) Memory() wasmlibc.LinearMemory { return p.mem }

// Heap returns the process heap, or nil if the guest has no memory.
func (p *Process) Heap() *heap.Facade { return p.heap }

// Main returns the main thread.
func (p *Process) Main() *thread.Thread { return p.main }

// Threads returns the process's thread table.
func (p *Process) Threads() *thread.Table { return p.threads }

// releaseCells returns the guest blocks an exiting thread owned to the
// heap.
func releaseCells(h *heap.Facade, t *thread.Thread) {
	alloc := h.Allocator()
	t.DropCells(func(c thread.Cell, ptr uint32) {
		size, align := cellLayout(c)
		alloc.Free(ptr, size, align)
	})
}
