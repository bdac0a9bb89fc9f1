package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/dynresolve/internal/ctxlog"
	"github.com/specialistvlad/dynresolve/internal/dyn"
)

var (
	// ErrCycle is returned when a table contains itself.
	ErrCycle = errors.New("cyclic table")

	// ErrDepthExceeded is returned when tables nest deeper than
	// Config.MaxDepth.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// Resolver resolves values of one runtime. It holds no per-call state and
// is safe for concurrent use.
type Resolver struct {
	rt  dyn.Runtime
	cfg Config
}

// New returns a Resolver for rt. A nil cfg selects the defaults.
func New(rt dyn.Runtime, cfg *Config) *Resolver {
	if cfg == nil {
		cfg, _ = NewConfig(Config{})
	}
	return &Resolver{rt: rt, cfg: *cfg}
}

// Resolve converts v into a T. It returns ok == false with a nil error when
// no interpretation of v fits T.
func Resolve[T any](ctx context.Context, r *Resolver, v dyn.Value) (T, bool, error) {
	var zero T
	out, ok, err := r.ResolveTarget(ctx, v, TargetFor[T]())
	if err != nil || !ok {
		return zero, false, err
	}
	if out == nil {
		return zero, true, nil
	}
	t, ok := out.(T)
	return t, ok, nil
}

// ResolveTarget is the untyped form of Resolve.
func (r *Resolver) ResolveTarget(ctx context.Context, v dyn.Value, target Target) (any, bool, error) {
	s := &session{
		rt:       r.rt,
		cfg:      &r.cfg,
		logger:   ctxlog.FromContext(ctx).With("target", target.String()),
		visiting: make(map[uint64]struct{}),
	}
	out, ok, err := s.resolve(v, target)
	switch {
	case err != nil:
		s.logger.Debug("Resolution failed.", "error", err)
	case !ok:
		s.logger.Debug("No representation matches the target.")
	}
	return out, ok, err
}

// session is the state of one ResolveTarget call.
type session struct {
	rt       dyn.Runtime
	cfg      *Config
	logger   *slog.Logger
	depth    int
	visiting map[uint64]struct{}
}

func (s *session) resolve(v dyn.Value, target Target) (any, bool, error) {
	cat := s.rt.Classify(v)
	if cat == dyn.TableLike {
		switch target.Shape() {
		case ShapeOrdered:
			return s.resolveSequence(v, target, Unpinned)
		case ShapeKeyed:
			return s.resolveMap(v, target)
		}
	}
	return s.resolveSlot(v, cat, target)
}

// resolveSlot returns the first candidate for v that the target accepts.
func (s *session) resolveSlot(v dyn.Value, cat dyn.Category, target Target) (any, bool, error) {
	for _, c := range s.candidates(Unpinned, v, cat, target, target.Hashable()) {
		val, ok, err := c.Value()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if out, ok := target.Accept(val); ok {
			s.logger.Debug("Resolved single value.", "category", cat, "constraint", c.Constraint)
			return out, true, nil
		}
	}
	return nil, false, nil
}

// enter marks v as being resolved. The returned func must be called when
// the table has been left.
func (s *session) enter(v dyn.Value) (func(), error) {
	if s.depth >= s.cfg.MaxDepth {
		return nil, fmt.Errorf("%w (limit %d)", ErrDepthExceeded, s.cfg.MaxDepth)
	}
	id := s.rt.Retain(v).ID()
	if id != 0 {
		if _, seen := s.visiting[id]; seen {
			return nil, fmt.Errorf("%w: table %d is its own descendant", ErrCycle, id)
		}
		s.visiting[id] = struct{}{}
	}
	s.depth++
	return func() {
		s.depth--
		if id != 0 {
			delete(s.visiting, id)
		}
	}, nil
}

var (
	erasedListTarget = TargetFor[[]any]()
	erasedMapTarget  = TargetFor[map[any]any]()
	hashableTarget   = TargetFor[Hashable]()
	frozenListTarget = frozenTarget{}
	frozenMapTarget  = frozenTarget{keyed: true}
)

// nestedTarget picks the container a table is resolved into under c. Typed
// slots are filled directly; erased slots get the natural containers.
func nestedTarget(c Constraint, slot Target) Target {
	shape, hashable := ShapeScalar, false
	if slot != nil {
		shape, hashable = slot.Shape(), slot.Hashable()
	}
	switch c {
	case OrderedAny:
		if shape == ShapeOrdered {
			return slot
		}
		return erasedListTarget
	case OrderedHashable:
		if shape == ShapeOrdered && hashable {
			return slot
		}
		return frozenListTarget
	case KeyedAny:
		switch shape {
		case ShapeKeyed:
			return slot
		case ShapeOrdered:
			return bridgeTarget{seq: slot}
		}
		return erasedMapTarget
	}
	if shape == ShapeKeyed && hashable {
		return slot
	}
	return frozenMapTarget
}

// frozenTarget builds FrozenList or FrozenMap values from hashable elements.
type frozenTarget struct {
	keyed bool
}

func (f frozenTarget) Shape() Shape {
	if f.keyed {
		return ShapeKeyed
	}
	return ShapeOrdered
}

func (f frozenTarget) Hashable() bool { return true }
func (f frozenTarget) Elem() Target   { return hashableTarget }

func (f frozenTarget) Key() Target {
	if f.keyed {
		return hashableTarget
	}
	return nil
}

func (f frozenTarget) String() string {
	if f.keyed {
		return "resolve.FrozenMap"
	}
	return "resolve.FrozenList"
}

func (f frozenTarget) Accept(sample any) (any, bool) {
	switch sample.(type) {
	case FrozenList:
		return sample, !f.keyed
	case FrozenMap:
		return sample, f.keyed
	}
	return nil, false
}

func (f frozenTarget) NewBuilder(sizeHint int) Builder {
	if f.keyed {
		return &frozenBuilder{keyed: true, entries: make([]Entry, 0, sizeHint)}
	}
	return &frozenBuilder{elems: make([]any, 0, sizeHint)}
}

type frozenBuilder struct {
	keyed   bool
	elems   []any
	entries []Entry
}

func hashableSample(sample any) (any, bool) {
	v, ok := convert(sample, hashableType)
	if !ok {
		return nil, false
	}
	h := v.Interface()
	return h, freezable(h)
}

func (b *frozenBuilder) Append(sample any) bool {
	if b.keyed {
		return false
	}
	h, ok := hashableSample(sample)
	if ok {
		b.elems = append(b.elems, h)
	}
	return ok
}

func (b *frozenBuilder) Put(key, value any) bool {
	if !b.keyed {
		return false
	}
	k, ok := hashableSample(key)
	if !ok {
		return false
	}
	v, ok := hashableSample(value)
	if !ok {
		return false
	}
	b.entries = append(b.entries, Entry{Key: k, Value: v})
	return true
}

func (b *frozenBuilder) Build() (any, bool) {
	if b.keyed {
		m, err := FreezeMap(b.entries)
		return m, err == nil
	}
	l, err := FreezeList(b.elems)
	return l, err == nil
}
