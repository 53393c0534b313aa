package runtime

import (
	"context"
	stderrors "errors"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	wasmlibc "github.com/wippyai/wasm-libc"
	"github.com/wippyai/wasm-libc/errors"
	"github.com/wippyai/wasm-libc/heap"
	"github.com/wippyai/wasm-libc/libc"
	"github.com/wippyai/wasm-libc/thread"
)

// Instance is a running guest and its libc process state.
type Instance struct {
	module *Module
	mod    api.Module
	proc   *libc.Process
}

// Name returns the unique module name of the instance.
func (i *Instance) Name() string {
	return i.mod.Name()
}

// Call invokes an exported function with raw wasm arguments. Unless ctx
// already carries a thread, the call runs on the main thread.
//
// A guest that exits, including through an abort from libc, returns a
// *sys.ExitError.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}
	if _, ok := thread.FromContext(ctx); !ok {
		ctx = thread.WithThread(ctx, i.proc.Main())
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		var exit *sys.ExitError
		if stderrors.As(err, &exit) {
			i.module.runtime.log.Debug("guest exited",
				zap.String("instance", i.Name()),
				zap.Uint32("code", exit.ExitCode()))
			return nil, err
		}
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindFatal, err, "call "+name)
	}
	return results, nil
}

// Thread returns the main thread.
func (i *Instance) Thread() *thread.Thread {
	return i.proc.Main()
}

// NewThread adds a thread to the instance. Run calls on it with
// thread.WithThread; release it with ExitThread.
func (i *Instance) NewThread() (*thread.Thread, error) {
	t, err := i.proc.Threads().Spawn()
	if err != nil {
		return nil, err
	}
	t.SetLocale(i.module.runtime.locale)
	return t, nil
}

// ExitThread removes a thread created by NewThread and frees the guest
// buffers it owned.
func (i *Instance) ExitThread(t *thread.Thread) bool {
	return i.proc.Threads().Exit(t.ID())
}

// Heap returns the instance's allocator.
func (i *Instance) Heap() *heap.Facade {
	return i.proc.Heap()
}

// Memory returns the instance's linear memory.
func (i *Instance) Memory() wasmlibc.LinearMemory {
	return i.proc.Memory()
}

// Close closes the guest and drops its process state.
func (i *Instance) Close(ctx context.Context) error {
	i.module.runtime.host.Release(i.Name())
	return i.mod.Close(ctx)
}
