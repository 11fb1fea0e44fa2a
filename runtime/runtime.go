package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/concat"
	"github.com/wippyai/concat-runtime/errors"
	"github.com/wippyai/concat-runtime/memory"
	"github.com/wippyai/concat-runtime/value"
)

// Config holds configuration for runtime creation
type Config struct {
	// Logger receives runtime and combinator diagnostics. Nil means no-op.
	Logger *zap.Logger

	// GuestModule is an optional core module exporting "memory" and
	// "cabi_realloc". When set, text buffers are allocated by the guest.
	GuestModule []byte

	// MemoryLimitPages sets the maximum memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32

	// InitialPages is the memory size at start. 0 means 1 page.
	// Ignored when GuestModule is set.
	InitialPages uint32

	// MaxLength caps the length of a concatenation result.
	// 0 means concat.DefaultMaxLength.
	MaxLength uint32
}

// Runtime holds the wazero runtime backing string memory, the value store
// and the combinator catalog.
type Runtime struct {
	runtime wazero.Runtime
	module  api.Module
	mem     *memory.Wazero
	heap    *memory.Heap
	store   *value.Store
	catalog *concat.Catalog
	logger  *zap.Logger
}

// New creates a runtime with default configuration.
func New(ctx context.Context) (*Runtime, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates a runtime with custom configuration.
func NewWithConfig(ctx context.Context, cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	r := &Runtime{runtime: rt, logger: logger}

	var alloc concatrt.Reallocator
	if len(cfg.GuestModule) > 0 {
		guest, err := r.loadGuest(ctx, cfg.GuestModule)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		alloc = guest
	} else {
		pages := cfg.InitialPages
		if pages == 0 {
			pages = 1
		}
		mem, mod, err := memory.InstantiateWazero(ctx, rt, pages)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, errors.Load("instantiate memory", err)
		}
		r.mem, r.module = mem, mod
		r.heap = memory.NewHeap(mem).WithLogger(logger)
		alloc = r.heap
	}

	r.store = value.NewStore(r.mem, alloc)
	r.catalog = concat.DefaultCatalog(concat.NewWithConfig(&concat.Config{
		Logger:    logger,
		MaxLength: cfg.MaxLength,
	}))

	logger.Debug("concat runtime ready",
		zap.Uint32("memory", r.mem.Size()),
		zap.Bool("guest_allocator", r.heap == nil),
		zap.Int("combinators", r.catalog.Len()))
	return r, nil
}

func (r *Runtime) loadGuest(ctx context.Context, bin []byte) (concatrt.Reallocator, error) {
	mod, err := r.runtime.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "memory export", "memory")
	}
	alloc, err := memory.NewGuestAllocator(ctx, mod)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	r.module = mod
	r.mem = memory.WrapMemory(mem)
	return alloc, nil
}

// Close releases the wazero runtime and all memory.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Store returns the value store.
func (r *Runtime) Store() *value.Store {
	return r.store
}

// Catalog returns the combinator catalog.
func (r *Runtime) Catalog() *concat.Catalog {
	return r.catalog
}

// Memory returns the linear memory holding text.
func (r *Runtime) Memory() concatrt.Grower {
	return r.mem
}

// Heap returns the Go heap, or nil when the guest allocator is in use.
func (r *Runtime) Heap() *memory.Heap {
	return r.heap
}

// Concat runs the combinator for pattern ("svs" or "concat_svs").
func (r *Runtime) Concat(pattern string, dst concat.Ref, selfAppend bool, ops ...concat.Operand) error {
	comb, ok := r.catalog.Lookup(pattern)
	if !ok {
		return errors.NotFound(errors.PhaseCatalog, "combinator", pattern)
	}
	return comb.Call(r.store, dst, selfAppend, ops...)
}
