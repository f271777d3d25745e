package runtime

import (
	"io"
	"math/rand"
	"os"
	"time"

	"avm1/pkg/action"
)

// Hooks are the external per-tag callbacks wired in by the rendering/tag
// subsystem. Generated routines call them with fixed argument lists; every
// hook defaults to a no-op.
type Hooks struct {
	ShowFrame     func(frame int)
	SetBackground func(r, g, b uint8)
	StopSounds    func()
}

// Context is the runtime state one translated program executes against:
// operand stack, variable store, and object arena. Nothing is shared between
// contexts, so independent programs can run in sequence (or side by side)
// without process-wide state.
type Context struct {
	stack   *Stack
	vars    *VarStore
	objects *Arena
	hooks   Hooks

	out   io.Writer
	rng   *rand.Rand
	epoch time.Time

	frame   int // index of the routine currently running
	jump    int // requested next frame, or -1
	stopped bool

	maxSteps int
	steps    int
}

type Option func(*Context)

// WithWriter sets the trace output writer.
func WithWriter(w io.Writer) Option {
	return func(c *Context) { c.out = w }
}

// WithMaxSteps caps the instructions executed per routine (0 = unlimited).
func WithMaxSteps(n int) Option {
	return func(c *Context) { c.maxSteps = n }
}

// WithStackSize sets the operand stack buffer size in bytes.
func WithStackSize(n int) Option {
	return func(c *Context) { c.stack = NewStack(n, c.stack.pool) }
}

// WithRandomSeed makes the random-number action deterministic.
func WithRandomSeed(seed int64) Option {
	return func(c *Context) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithHooks installs the external tag callbacks.
func WithHooks(h Hooks) Option {
	return func(c *Context) { c.hooks = h }
}

// NewContext creates a fresh context for one translated program. The stack
// borrows the program's constant pool; the variable store's dense tier is
// sized from the translator's identifier count.
func NewContext(prog *action.Program, opts ...Option) *Context {
	c := &Context{
		stack:   NewStack(DefaultStackSize, prog.Pool),
		objects: NewArena(),
		epoch:   time.Now(),
		jump:    -1,
	}
	c.vars = NewVarStore(prog.DenseCount, c.objects)

	for _, o := range opts {
		o(c)
	}

	if c.out == nil {
		c.out = os.Stdout
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Stack exposes the operand stack, mainly for tag-handling callers that push
// operands before invoking named actions.
func (c *Context) Stack() *Stack {
	return c.stack
}

// Vars exposes the variable store.
func (c *Context) Vars() *VarStore {
	return c.vars
}

// Objects exposes the object arena.
func (c *Context) Objects() *Arena {
	return c.objects
}

// Output returns the trace writer.
func (c *Context) Output() io.Writer {
	return c.out
}

// Stopped reports whether a stop action has been executed.
func (c *Context) Stopped() bool {
	return c.stopped
}

// JumpTarget returns the explicitly requested next frame, if any.
func (c *Context) JumpTarget() (int, bool) {
	if c.jump < 0 {
		return 0, false
	}
	return c.jump, true
}

// RequestJump asks the scheduler to continue at the given frame.
func (c *Context) RequestJump(frame int) {
	c.jump = frame
}

// Close tears down the variable store, releasing every owned string and
// object reference it holds. Idempotent: a second call sees cleared slots.
func (c *Context) Close() error {
	return c.vars.Close()
}

// RunRoutine executes one translated routine to completion. Transient state
// (operand stack, scratch text, jump request) is reset first; variables and
// objects persist across routines.
func (c *Context) RunRoutine(frame int, instrs []action.Instruction) error {
	c.stack.Reset()
	c.frame = frame
	c.jump = -1
	c.steps = 0

	pc := 0
	for pc >= 0 && pc < len(instrs) {
		if c.maxSteps > 0 && c.steps >= c.maxSteps {
			return ErrMaxStepsExceeded
		}
		c.steps++

		next, halted, err := c.step(instrs[pc], pc)
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		pc = next
	}
	return nil
}

// materialize converts a popped stack entry into a storable value,
// deep-copying any text that lives in the stack's transient buffers
// (copy-on-store). Constant-pool text is stored as a borrow.
func (c *Context) materialize(e Entry) Value {
	switch e.Kind {
	case KindNumber:
		return NewNumber(e.Number())
	case KindBoolean:
		return NewBoolean(e.payload != 0)
	case KindObject:
		return NewObjectValue(e.Object())
	case KindString:
		if e.pool == poolConstant {
			return BorrowedString(c.stack.pool[e.payload])
		}
		return NewString(c.stack.EntryString(e))
	case KindStringList:
		return NewString(c.stack.EntryString(e))
	default:
		return Undefined()
	}
}

// releaseEntry drops the owning reference a popped entry held, if any.
// Popping an object without transferring it must go through here.
func (c *Context) releaseEntry(e Entry) error {
	if e.Kind == KindObject {
		return c.objects.Release(e.Object())
	}
	return nil
}
