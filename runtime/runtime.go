package runtime

import (
	"context"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/heap"
	"github.com/wippyai/wasm-libc/libc"
	"github.com/wippyai/wasm-libc/locale"
)

// Config configures a Runtime. The zero value is usable.
type Config struct {
	// Logger receives runtime, libc and heap logs. Nil keeps the no-op
	// loggers.
	Logger *zap.Logger

	// Registry resolves locale names. Nil creates a fresh registry.
	Registry *locale.Registry

	// ModuleName is the import module guests use for libc. Default "env".
	ModuleName string

	// Locale names the initial locale of every instance, e.g. "C" or
	// "en_US.UTF-8". Empty means C.UTF-8.
	Locale string

	// Heap configures the allocator of every instance.
	Heap heap.Config

	// MemoryLimitPages caps guest memory in 64 KiB pages. 0 means 65536
	// pages (4 GiB).
	MemoryLimitPages uint32
}

// Runtime runs wasm32 guests linked against the libc host module.
type Runtime struct {
	runtime wazero.Runtime
	host    *libc.Host
	log     *zap.Logger
	locale  *locale.Locale
	seq     atomic.Uint64
}

// New creates a runtime and instantiates the libc host module in it.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	log := zap.NewNop()
	if cfg.Logger != nil {
		log = cfg.Logger
		libc.SetLogger(log.Named("libc"))
		heap.SetLogger(log.Named("heap"))
	}

	reg := cfg.Registry
	if reg == nil {
		reg = locale.NewRegistry()
	}
	loc := locale.Default()
	if cfg.Locale != "" {
		l, err := reg.Lookup(cfg.Locale)
		if err != nil {
			return nil, err
		}
		loc = l
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	host := libc.New(libc.Options{
		ModuleName: cfg.ModuleName,
		Registry:   reg,
		Locale:     loc,
		Heap:       cfg.Heap,
	})
	if _, err := host.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	log.Debug("runtime created",
		zap.String("libc_module", host.ModuleName()),
		zap.Stringer("locale", loc),
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages))

	return &Runtime{
		runtime: rt,
		host:    host,
		log:     log,
		locale:  loc,
	}, nil
}

// Close releases all runtime resources, closing any open instances.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Host returns the libc host module.
func (r *Runtime) Host() *libc.Host {
	return r.host
}

// Locale returns the initial locale of new instances.
func (r *Runtime) Locale() *locale.Locale {
	return r.locale
}

// Load compiles a core module. Every function it imports must be provided
// by the libc host module or by a module already instantiated in this
// runtime.
func (r *Runtime) Load(ctx context.Context, wasm []byte) (*Module, error) {
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	if missing := r.missingImports(compiled); len(missing) > 0 {
		_ = compiled.Close(ctx)
		return nil, errors.NewMissingImportsError(missing)
	}

	name := compiled.Name()
	if name == "" {
		name = "guest"
	}
	r.log.Debug("module loaded",
		zap.String("name", name),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return &Module{
		runtime:  r,
		compiled: compiled,
		name:     name,
	}, nil
}

func (r *Runtime) missingImports(compiled wazero.CompiledModule) []string {
	provided := make(map[string]bool)
	for _, f := range libc.Functions() {
		provided[f.Name] = true
	}

	var missing []string
	for _, f := range compiled.ImportedFunctions() {
		module, name, _ := f.Import()
		switch {
		case module == r.host.ModuleName():
			if !provided[name] {
				missing = append(missing, module+"#"+name)
			}
		case r.runtime.Module(module) == nil:
			missing = append(missing, module+"#"+name)
		}
	}
	return missing
}
