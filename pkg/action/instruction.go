package action

import "fmt"

// Op identifies one operation in the translated program. The translator
// lowers every action record to one or more of these; the runtime dispatches
// on them with a single step function.
type Op int

const (
	OpNop Op = iota
	OpEnd
	OpPushNumber
	OpPushString // string literal resolved from the record or constant pool
	OpPushBool
	OpPop
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEquals
	OpLess
	OpAnd
	OpOr
	OpNot
	OpStringEquals
	OpStringLength
	OpStringAdd
	OpToInteger
	OpGetVariable
	OpSetVariable
	OpTrace
	OpRandom
	OpGetTime
	OpJump
	OpIf
	OpInitArray
	OpInitObject
	OpGetMember
	OpSetMember
	OpStop
	OpPlay
	OpStopSounds
	OpNextFrame
	OpPrevFrame
	OpGotoFrame
)

var opNames = map[Op]string{
	OpNop:          "nop",
	OpEnd:          "end",
	OpPushNumber:   "push.num",
	OpPushString:   "push.str",
	OpPushBool:     "push.bool",
	OpPop:          "pop",
	OpAdd:          "add",
	OpSubtract:     "sub",
	OpMultiply:     "mul",
	OpDivide:       "div",
	OpModulo:       "mod",
	OpEquals:       "eq",
	OpLess:         "lt",
	OpAnd:          "and",
	OpOr:           "or",
	OpNot:          "not",
	OpStringEquals: "streq",
	OpStringLength: "strlen",
	OpStringAdd:    "stradd",
	OpToInteger:    "toint",
	OpGetVariable:  "getvar",
	OpSetVariable:  "setvar",
	OpTrace:        "trace",
	OpRandom:       "random",
	OpGetTime:      "gettime",
	OpInitArray:    "initarray",
	OpInitObject:   "initobject",
	OpGetMember:    "getmember",
	OpSetMember:    "setmember",
	OpJump:         "jmp",
	OpIf:           "jif",
	OpStop:         "stop",
	OpPlay:         "play",
	OpStopSounds:   "stopsounds",
	OpNextFrame:    "nextframe",
	OpPrevFrame:    "prevframe",
	OpGotoFrame:    "gotoframe",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// NoDense marks a pushed string that did not come from the constant pool and
// therefore has no translator-assigned variable identifier.
const NoDense = -1

// Instruction is one translated operation.
//
// Num carries the operand of push.num; Str the operand of push.str; Flag the
// operand of push.bool. DenseID tags a push.str whose text is a constant-pool
// entry, enabling array-tier variable storage downstream. Target is a
// resolved instruction index for jmp/jif and a frame index for gotoframe.
// Offset is the byte offset of the source record, kept for diagnostics.
type Instruction struct {
	Op      Op
	Num     float64
	Str     string
	Flag    bool
	DenseID int
	Target  int
	Offset  int
}

// String renders the instruction for disassembly listings.
func (in Instruction) String() string {
	switch in.Op {
	case OpPushNumber:
		return fmt.Sprintf("%-10s %g", in.Op, in.Num)
	case OpPushString:
		if in.DenseID != NoDense {
			return fmt.Sprintf("%-10s %q dense=%d", in.Op, in.Str, in.DenseID)
		}
		return fmt.Sprintf("%-10s %q", in.Op, in.Str)
	case OpPushBool:
		return fmt.Sprintf("%-10s %v", in.Op, in.Flag)
	case OpJump, OpIf, OpGotoFrame:
		return fmt.Sprintf("%-10s -> %d", in.Op, in.Target)
	default:
		return in.Op.String()
	}
}

// StackDelta returns the net stack-depth change of executing the
// instruction: results produced minus operands consumed. It is meaningless
// for the two init ops, whose operand count rides on a popped counter; check
// HasStaticDelta first.
func (in Instruction) StackDelta() int {
	switch in.Op {
	case OpPushNumber, OpPushString, OpPushBool, OpGetTime:
		return 1
	case OpPop, OpTrace, OpIf, OpGetMember:
		return -1
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo,
		OpEquals, OpLess, OpAnd, OpOr,
		OpStringEquals, OpStringAdd:
		return -1
	case OpSetVariable:
		return -2
	case OpSetMember:
		return -3
	default:
		return 0
	}
}

// HasStaticDelta reports whether StackDelta is meaningful for the op.
func (in Instruction) HasStaticDelta() bool {
	return in.Op != OpInitArray && in.Op != OpInitObject
}
