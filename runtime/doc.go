// Package runtime provides the high-level API for running wasm32 guests
// against the libc host module.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, &runtime.Config{Locale: "en_US.UTF-8"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	results, err := inst.Call(ctx, "run", 42)
//
// # Imports
//
// Load rejects a module whose imports cannot be satisfied with an
// *errors.MissingImportsError listing every unresolved "module#name".
// Functions imported from the libc module name ("env" unless configured)
// must be part of the ABI listed by libc.Functions; any other module must
// already be instantiated in the runtime.
//
// # Instances
//
// Every instance gets a unique module name, its own heap over its linear
// memory and a main thread using the configured locale. Additional guest
// threads are created with Instance.NewThread and selected per call:
//
//	t, _ := inst.NewThread()
//	inst.Call(thread.WithThread(ctx, t), "worker", arg)
//
// Closing an instance releases its libc state.
package runtime
