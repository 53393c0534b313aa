package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-libc/errors"
)

// Module is a compiled guest, ready to be instantiated any number of
// times.
type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
	name     string
}

// Name returns the module's name from its name section, or "guest".
func (m *Module) Name() string {
	return m.name
}

// Export describes an exported function.
type Export struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// String renders the export as "name(i32,i32) -> i64".
func (e Export) String() string {
	s := e.Name + "("
	for i, t := range e.Params {
		if i > 0 {
			s += ","
		}
		s += api.ValueTypeName(t)
	}
	s += ")"
	for i, t := range e.Results {
		if i == 0 {
			s += " -> "
		} else {
			s += ","
		}
		s += api.ValueTypeName(t)
	}
	return s
}

// Exports lists the exported functions sorted by name.
func (m *Module) Exports() []Export {
	defs := m.compiled.ExportedFunctions()
	exports := make([]Export, 0, len(defs))
	for name, def := range defs {
		exports = append(exports, Export{
			Name:    name,
			Params:  def.ParamTypes(),
			Results: def.ResultTypes(),
		})
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].Name < exports[j].Name })
	return exports
}

// Instantiate creates an instance with its own memory, heap and main
// thread. A reactor's _initialize export runs before it returns; a
// command's _start is left for the caller.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	r := m.runtime
	name := fmt.Sprintf("%s-%d", m.name, r.seq.Add(1))

	cfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions("_initialize")
	mod, err := r.runtime.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	proc := r.host.Process(mod)
	if proc.Heap() == nil {
		_ = mod.Close(ctx)
		r.host.Release(name)
		return nil, errors.Instantiation(errors.NotInitialized(errors.PhaseRuntime, "guest memory"))
	}

	r.log.Debug("instance created", zap.String("name", name))
	return &Instance{
		module: m,
		mod:    mod,
		proc:   proc,
	}, nil
}

// Close releases the compiled code.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
