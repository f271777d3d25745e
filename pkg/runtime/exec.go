package runtime

import (
	"fmt"
	"math"
	"time"

	"avm1/pkg/action"
)

// step executes one instruction and returns the next pc. Binary operations
// pop the right operand first (it was pushed last), so Subtract computes
// second-from-top minus top, matching the source bytecode's contract.
func (c *Context) step(in action.Instruction, pc int) (next int, halted bool, err error) {
	next = pc + 1

	switch in.Op {
	case action.OpNop:

	case action.OpEnd:
		return 0, true, nil

	case action.OpPushNumber:
		err = c.stack.PushNumber(in.Num)

	case action.OpPushString:
		if in.DenseID != action.NoDense {
			err = c.stack.PushConstant(in.DenseID, in.DenseID)
		} else {
			err = c.stack.PushString(in.Str)
		}

	case action.OpPushBool:
		err = c.stack.PushBoolean(in.Flag)

	case action.OpPop:
		var e Entry
		if e, err = c.stack.Pop(); err == nil {
			err = c.releaseEntry(e)
		}

	case action.OpAdd, action.OpSubtract, action.OpMultiply, action.OpDivide, action.OpModulo,
		action.OpEquals, action.OpLess, action.OpAnd, action.OpOr:
		err = c.binaryNumeric(in.Op)

	case action.OpNot:
		var e Entry
		if e, err = c.stack.Pop(); err != nil {
			break
		}
		n := c.stack.EntryNumber(e)
		if err = c.releaseEntry(e); err != nil {
			break
		}
		err = c.stack.PushNumber(boolNum(!truthyNumber(n)))

	case action.OpStringEquals:
		var a, b Entry
		if a, b, err = c.popPair(); err != nil {
			break
		}
		eq := c.stack.EntryString(b) == c.stack.EntryString(a)
		if err = c.releasePair(a, b); err != nil {
			break
		}
		err = c.stack.PushNumber(boolNum(eq))

	case action.OpStringLength:
		var e Entry
		if e, err = c.stack.Pop(); err != nil {
			break
		}
		n := len(c.stack.EntryString(e))
		if err = c.releaseEntry(e); err != nil {
			break
		}
		err = c.stack.PushNumber(float64(n))

	case action.OpStringAdd:
		var a, b Entry
		if a, b, err = c.popPair(); err != nil {
			break
		}
		if err = c.releasePair(a, b); err != nil {
			break
		}
		err = c.stack.PushConcat(b, a)

	case action.OpToInteger:
		var e Entry
		if e, err = c.stack.Pop(); err != nil {
			break
		}
		n := ToInteger(c.stack.EntryNumber(e))
		if err = c.releaseEntry(e); err != nil {
			break
		}
		err = c.stack.PushNumber(n)

	case action.OpGetVariable:
		err = c.execGetVariable()

	case action.OpSetVariable:
		err = c.execSetVariable()

	case action.OpTrace:
		var e Entry
		if e, err = c.stack.Pop(); err != nil {
			break
		}
		fmt.Fprintln(c.out, c.stack.EntryString(e))
		err = c.releaseEntry(e)

	case action.OpRandom:
		var e Entry
		if e, err = c.stack.Pop(); err != nil {
			break
		}
		max := int(ToInteger(c.stack.EntryNumber(e)))
		if err = c.releaseEntry(e); err != nil {
			break
		}
		var n float64
		if max > 0 {
			n = float64(c.rng.Intn(max))
		}
		err = c.stack.PushNumber(n)

	case action.OpGetTime:
		err = c.stack.PushNumber(float64(time.Since(c.epoch) / time.Millisecond))

	case action.OpInitObject:
		err = c.execInitObject()

	case action.OpInitArray:
		err = c.execInitArray()

	case action.OpGetMember:
		err = c.execGetMember()

	case action.OpSetMember:
		err = c.execSetMember()

	case action.OpJump:
		next = in.Target

	case action.OpIf:
		var e Entry
		if e, err = c.stack.Pop(); err != nil {
			break
		}
		cond := c.stack.EntryTruthy(e)
		if err = c.releaseEntry(e); err != nil {
			break
		}
		if cond {
			next = in.Target
		}

	case action.OpStop:
		c.stopped = true

	case action.OpPlay:
		c.stopped = false

	case action.OpStopSounds:
		if c.hooks.StopSounds != nil {
			c.hooks.StopSounds()
		}

	case action.OpNextFrame:
		c.jump = c.frame + 1

	case action.OpPrevFrame:
		c.jump = c.frame - 1

	case action.OpGotoFrame:
		c.jump = in.Target

	default:
		err = fmt.Errorf("unhandled op at %d: %s", pc, in.Op)
	}

	return next, false, err
}

func (c *Context) popPair() (a, b Entry, err error) {
	if a, err = c.stack.Pop(); err != nil {
		return
	}
	b, err = c.stack.Pop()
	return
}

func (c *Context) releasePair(a, b Entry) error {
	if err := c.releaseEntry(a); err != nil {
		return err
	}
	return c.releaseEntry(b)
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// binaryNumeric handles the arithmetic, comparison, and logical operations,
// all of which coerce both operands to numbers. Division by zero and
// non-numeric coercion are not errors: they produce Infinity or NaN and
// propagate normally.
func (c *Context) binaryNumeric(op action.Op) error {
	a, b, err := c.popPair()
	if err != nil {
		return err
	}
	x := c.stack.EntryNumber(b) // pushed first
	y := c.stack.EntryNumber(a)
	if err := c.releasePair(a, b); err != nil {
		return err
	}

	var r float64
	switch op {
	case action.OpAdd:
		r = x + y
	case action.OpSubtract:
		r = x - y
	case action.OpMultiply:
		r = x * y
	case action.OpDivide:
		r = x / y
	case action.OpModulo:
		r = math.Mod(x, y)
	case action.OpEquals:
		r = boolNum(x == y)
	case action.OpLess:
		r = boolNum(x < y)
	case action.OpAnd:
		r = boolNum(truthyNumber(x) && truthyNumber(y))
	case action.OpOr:
		r = boolNum(truthyNumber(x) || truthyNumber(y))
	}
	return c.stack.PushNumber(r)
}

func (c *Context) execGetVariable() error {
	name, err := c.stack.Pop()
	if err != nil {
		return err
	}

	var v Value
	if name.Kind == KindString && name.DenseID >= 0 {
		v = c.vars.LoadDense(name.DenseID)
	} else {
		v = c.vars.Load(c.stack.EntryString(name))
	}
	if err := c.releaseEntry(name); err != nil {
		return err
	}

	// the pushed entry is a new owning reference
	if v.Kind == KindObject {
		if err := c.objects.Retain(v.Obj); err != nil {
			return err
		}
	}
	return c.stack.PushValue(v)
}

func (c *Context) execSetVariable() error {
	val, err := c.stack.Pop()
	if err != nil {
		return err
	}
	name, err := c.stack.Pop()
	if err != nil {
		return err
	}

	v := c.materialize(val)
	if name.Kind == KindString && name.DenseID >= 0 {
		err = c.vars.StoreDense(name.DenseID, v)
	} else {
		err = c.vars.Store(c.stack.EntryString(name), v)
	}
	if err != nil {
		return err
	}

	// the store retained; drop the popped stack reference
	if err := c.releaseEntry(val); err != nil {
		return err
	}
	return c.releaseEntry(name)
}

// execInitObject builds an object from name/value pairs below a pair count:
// ... name1 value1 name2 value2 n => object
func (c *Context) execInitObject() error {
	cnt, err := c.stack.Pop()
	if err != nil {
		return err
	}
	n := int(ToInteger(c.stack.EntryNumber(cnt)))
	if err := c.releaseEntry(cnt); err != nil {
		return err
	}

	h := c.objects.Allocate(n)
	for i := 0; i < n; i++ {
		val, err := c.stack.Pop()
		if err != nil {
			return err
		}
		name, err := c.stack.Pop()
		if err != nil {
			return err
		}
		if err := c.objects.SetProperty(h, c.stack.EntryString(name), c.materialize(val)); err != nil {
			return err
		}
		if err := c.releasePair(val, name); err != nil {
			return err
		}
	}

	// the allocation's initial reference transfers to the stack entry
	return c.stack.PushObject(h)
}

// execInitArray builds an array object from elements below an element count:
// ... elemN .. elem1 n => object with "0".."N-1" and "length"
func (c *Context) execInitArray() error {
	cnt, err := c.stack.Pop()
	if err != nil {
		return err
	}
	n := int(ToInteger(c.stack.EntryNumber(cnt)))
	if err := c.releaseEntry(cnt); err != nil {
		return err
	}

	h := c.objects.Allocate(n + 1)
	for i := 0; i < n; i++ {
		el, err := c.stack.Pop()
		if err != nil {
			return err
		}
		if err := c.objects.SetProperty(h, NumberToString(float64(i)), c.materialize(el)); err != nil {
			return err
		}
		if err := c.releaseEntry(el); err != nil {
			return err
		}
	}
	if err := c.objects.SetProperty(h, "length", NewNumber(float64(n))); err != nil {
		return err
	}

	return c.stack.PushObject(h)
}

func (c *Context) execGetMember() error {
	name, err := c.stack.Pop()
	if err != nil {
		return err
	}
	obj, err := c.stack.Pop()
	if err != nil {
		return err
	}

	if obj.Kind != KindObject {
		if err := c.releasePair(name, obj); err != nil {
			return err
		}
		return c.stack.PushValue(Undefined())
	}

	v, err := c.objects.Property(obj.Object(), c.stack.EntryString(name))
	if err != nil {
		return err
	}
	if v.Kind == KindObject {
		if err := c.objects.Retain(v.Obj); err != nil {
			return err
		}
	}
	if err := c.releasePair(name, obj); err != nil {
		return err
	}
	return c.stack.PushValue(v)
}

func (c *Context) execSetMember() error {
	val, err := c.stack.Pop()
	if err != nil {
		return err
	}
	name, err := c.stack.Pop()
	if err != nil {
		return err
	}
	obj, err := c.stack.Pop()
	if err != nil {
		return err
	}

	if obj.Kind == KindObject {
		if err := c.objects.SetProperty(obj.Object(), c.stack.EntryString(name), c.materialize(val)); err != nil {
			return err
		}
	}

	if err := c.releaseEntry(val); err != nil {
		return err
	}
	if err := c.releaseEntry(name); err != nil {
		return err
	}
	return c.releaseEntry(obj)
}
