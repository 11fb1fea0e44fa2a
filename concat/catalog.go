package concat

import (
	"sort"
	"strings"
	"sync"

	"github.com/wippyai/concat-runtime/errors"
)

// Combinator is one fixed-shape entry point.
type Combinator struct {
	engine *Engine
	shape  Shape
}

// NewCombinator creates a combinator for shape running on engine.
// A nil engine means the default engine.
func NewCombinator(shape Shape, engine *Engine) *Combinator {
	if engine == nil {
		engine = defaultEngine
	}
	return &Combinator{shape: shape, engine: engine}
}

// Name returns the combinator name, for example "concat_svs".
func (c *Combinator) Name() string {
	return c.shape.Name()
}

// Shape returns the operand-kind pattern.
func (c *Combinator) Shape() Shape {
	return c.shape
}

// Fresh replaces dst with the concatenation of ops.
func (c *Combinator) Fresh(h Host, dst Ref, ops ...Operand) error {
	return c.Call(h, dst, false, ops...)
}

// Append appends the concatenation of ops to dst.
func (c *Combinator) Append(h Host, dst Ref, ops ...Operand) error {
	return c.Call(h, dst, true, ops...)
}

// Call runs the combinator. ops must match the combinator's shape.
func (c *Combinator) Call(h Host, dst Ref, selfAppend bool, ops ...Operand) error {
	if !selfAppend && !c.shape.FreshCapable() {
		return errors.New(errors.PhaseCatalog, errors.KindInvalidInput).
			Detail("%s is append-only", c.Name()).
			Build()
	}
	if !c.shape.Matches(ops) {
		return errors.New(errors.PhaseCatalog, errors.KindInvalidInput).
			Detail("%s called with operands %q", c.Name(), ShapeOf(ops).Pattern()).
			Value(ShapeOf(ops).Pattern()).
			Build()
	}
	return c.engine.Concat(h, dst, selfAppend, ops...)
}

// DefaultShapes are the shapes the compiler emits. "s" and "v" are not
// emitted; they serve compound assignment of a single operand, where the
// destination is the first half of the concatenation.
var DefaultShapes = []string{
	// append-only
	"s", "v",

	"sss",
	"sssssssssssssss",
	"ssssvss",
	"sv",
	"svs",
	"svsv",
	"svsvs",
	"svsvsv",
	"svsvsvs",
	"svv",
	"svvvv",
	"vs",
	"vsv",
	"vsvs",
	"vsvsv",
	"vsvsvs",
	"vsvv",
	"vv",
	"vvs",
	"vvsv",
	"vvsvv",
	"vvv",
	"vvvv",
	"vvvvv",
	"vvvvvvv",
	"vvvvvvvv",
	"vvvvvvvvv",
	"vvvvvvvvvv",
	"vvvvvvvvvvv",
	"vvvvvvvvvvvvvv",
}

// Catalog is a registry of combinators keyed by pattern.
// Safe for concurrent use.
type Catalog struct {
	engine    *Engine
	byPattern map[string]*Combinator
	mu        sync.RWMutex
}

// NewCatalog creates a catalog with the given patterns registered.
func NewCatalog(engine *Engine, patterns ...string) (*Catalog, error) {
	if engine == nil {
		engine = defaultEngine
	}
	c := &Catalog{
		engine:    engine,
		byPattern: make(map[string]*Combinator, len(patterns)),
	}
	for _, p := range patterns {
		if _, err := c.Register(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultCatalog creates a catalog of DefaultShapes.
func DefaultCatalog(engine *Engine) *Catalog {
	c, err := NewCatalog(engine, DefaultShapes...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register adds a combinator for pattern, returning the existing one if
// already registered.
func (c *Catalog) Register(pattern string) (*Combinator, error) {
	shape, err := ParseShape(strings.TrimPrefix(pattern, "concat_"))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byPattern[shape.Pattern()]; ok {
		return existing, nil
	}
	comb := NewCombinator(shape, c.engine)
	c.byPattern[shape.Pattern()] = comb
	return comb, nil
}

// Lookup finds a combinator by pattern ("svs") or name ("concat_svs").
func (c *Catalog) Lookup(pattern string) (*Combinator, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comb, ok := c.byPattern[strings.TrimPrefix(pattern, "concat_")]
	return comb, ok
}

// Select returns the combinator whose shape matches ops.
func (c *Catalog) Select(ops []Operand) (*Combinator, error) {
	pattern := ShapeOf(ops).Pattern()
	comb, ok := c.Lookup(pattern)
	if !ok {
		return nil, errors.NotFound(errors.PhaseCatalog, "combinator", "concat_"+pattern)
	}
	return comb, nil
}

// Combinators returns all combinators ordered by arity, then pattern.
func (c *Catalog) Combinators() []*Combinator {
	c.mu.RLock()
	out := make([]*Combinator, 0, len(c.byPattern))
	for _, comb := range c.byPattern {
		out = append(out, comb)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].shape, out[j].shape
		if a.Arity() != b.Arity() {
			return a.Arity() < b.Arity()
		}
		return a.Pattern() < b.Pattern()
	})
	return out
}

// Len returns the number of registered combinators.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byPattern)
}
