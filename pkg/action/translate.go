package action

// Program is one translated action unit: the instruction sequence, the
// constant pool its string pushes borrow from, and the number of dense
// variable identifiers the translator assigned (one per pool entry).
type Program struct {
	Instructions []Instruction
	Pool         []string
	DenseCount   int
}

// translator carries the state of one translation unit across both passes.
type translator struct {
	data        []byte
	instrs      []Instruction
	pool        []string
	offsetIndex map[int]int // record byte offset -> instruction index
	branches    []int       // indices of instructions holding unresolved byte targets
}

// Translate decodes a raw SWF action byte stream into a Program.
//
// Two passes: the first walks the records, emits instructions, and builds
// the byte-offset to instruction-index table; the second rewrites every
// branch's byte target into an instruction index using that table. Branch
// offsets in the stream are signed 16-bit values relative to the position
// immediately after the branching record, so forward branches reference
// offsets the first pass has not reached yet.
//
// Any decode failure rejects the whole unit: the returned Program is nil and
// the error names the opcode and byte offset.
func Translate(data []byte) (*Program, error) {
	t := &translator{
		data:        data,
		offsetIndex: make(map[int]int),
	}

	if err := t.decodeRecords(); err != nil {
		return nil, err
	}
	if err := t.resolveBranches(); err != nil {
		return nil, err
	}

	return &Program{
		Instructions: t.instrs,
		Pool:         t.pool,
		DenseCount:   len(t.pool),
	}, nil
}

// decodeRecords is the first pass.
func (t *translator) decodeRecords() error {
	r := newRecordReader(t.data)
	for r.more() {
		rec, err := r.read()
		if err != nil {
			return err
		}

		t.offsetIndex[rec.offset] = len(t.instrs)
		if err := t.emitRecord(rec); err != nil {
			return err
		}
	}

	// a branch may legally land just past the final record
	t.offsetIndex[len(t.data)] = len(t.instrs)
	return nil
}

// emitRecord lowers one record to instructions. Branch targets are left as
// absolute byte offsets in Target until the second pass.
func (t *translator) emitRecord(rec record) error {
	emit := func(in Instruction) {
		in.Offset = rec.offset
		in.DenseID = NoDense
		t.instrs = append(t.instrs, in)
	}

	switch rec.code {
	case CodeEnd:
		emit(Instruction{Op: OpEnd})
	case CodeStop:
		emit(Instruction{Op: OpStop})
	case CodePlay:
		emit(Instruction{Op: OpPlay})
	case CodeStopSounds:
		emit(Instruction{Op: OpStopSounds})
	case CodeNextFrame:
		emit(Instruction{Op: OpNextFrame})
	case CodePrevFrame:
		emit(Instruction{Op: OpPrevFrame})
	case CodeAdd:
		emit(Instruction{Op: OpAdd})
	case CodeSubtract:
		emit(Instruction{Op: OpSubtract})
	case CodeMultiply:
		emit(Instruction{Op: OpMultiply})
	case CodeDivide:
		emit(Instruction{Op: OpDivide})
	case CodeModulo:
		emit(Instruction{Op: OpModulo})
	case CodeEquals:
		emit(Instruction{Op: OpEquals})
	case CodeLess:
		emit(Instruction{Op: OpLess})
	case CodeAnd:
		emit(Instruction{Op: OpAnd})
	case CodeOr:
		emit(Instruction{Op: OpOr})
	case CodeNot:
		emit(Instruction{Op: OpNot})
	case CodeStringEquals:
		emit(Instruction{Op: OpStringEquals})
	case CodeStringLength:
		emit(Instruction{Op: OpStringLength})
	case CodeStringAdd:
		emit(Instruction{Op: OpStringAdd})
	case CodeToInteger:
		emit(Instruction{Op: OpToInteger})
	case CodePop:
		emit(Instruction{Op: OpPop})
	case CodeGetVariable:
		emit(Instruction{Op: OpGetVariable})
	case CodeSetVariable:
		emit(Instruction{Op: OpSetVariable})
	case CodeTrace:
		emit(Instruction{Op: OpTrace})
	case CodeInitArray:
		emit(Instruction{Op: OpInitArray})
	case CodeInitObject:
		emit(Instruction{Op: OpInitObject})
	case CodeGetMember:
		emit(Instruction{Op: OpGetMember})
	case CodeSetMember:
		emit(Instruction{Op: OpSetMember})
	case CodeRandom:
		emit(Instruction{Op: OpRandom})
	case CodeGetTime:
		emit(Instruction{Op: OpGetTime})

	case CodeGotoFrame:
		p := payloadReader{rec: rec}
		frame, err := p.uint16()
		if err != nil {
			return err
		}
		emit(Instruction{Op: OpGotoFrame, Target: int(frame)})

	case CodeConstantPool:
		return t.declarePool(rec)

	case CodePush:
		return t.emitPush(rec)

	case CodeJump:
		p := payloadReader{rec: rec}
		off, err := p.int16()
		if err != nil {
			return err
		}
		t.branches = append(t.branches, len(t.instrs))
		emit(Instruction{Op: OpJump, Target: rec.next + int(off)})

	case CodeIf:
		p := payloadReader{rec: rec}
		off, err := p.int16()
		if err != nil {
			return err
		}
		t.branches = append(t.branches, len(t.instrs))
		emit(Instruction{Op: OpIf, Target: rec.next + int(off)})

	default:
		return decodeErrorf(rec.offset, rec.code, "unrecognized opcode")
	}
	return nil
}

// declarePool replaces the active constant pool. A new pool reassigns the
// dense identifier space, so only one declaration per unit is accepted.
func (t *translator) declarePool(rec record) error {
	if t.pool != nil {
		return decodeErrorf(rec.offset, rec.code, "constant pool redeclared")
	}

	p := payloadReader{rec: rec}
	count, err := p.uint16()
	if err != nil {
		return err
	}
	pool := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		s, err := p.cstring()
		if err != nil {
			return err
		}
		pool = append(pool, s)
	}
	t.pool = pool
	return nil
}

// emitPush lowers a Push record: a sequence of typed values, one push
// instruction per value.
func (t *translator) emitPush(rec record) error {
	p := payloadReader{rec: rec}
	for p.more() {
		typ, err := p.byte()
		if err != nil {
			return err
		}

		in := Instruction{Offset: rec.offset, DenseID: NoDense}
		switch typ {
		case pushTypeString:
			s, err := p.cstring()
			if err != nil {
				return err
			}
			in.Op = OpPushString
			in.Str = s
		case pushTypeFloat:
			f, err := p.float32()
			if err != nil {
				return err
			}
			in.Op = OpPushNumber
			in.Num = float64(f)
		case pushTypeBool:
			b, err := p.byte()
			if err != nil {
				return err
			}
			in.Op = OpPushBool
			in.Flag = b != 0
		case pushTypeDouble:
			f, err := p.float64()
			if err != nil {
				return err
			}
			in.Op = OpPushNumber
			in.Num = f
		case pushTypeInt:
			n, err := p.int32()
			if err != nil {
				return err
			}
			in.Op = OpPushNumber
			in.Num = float64(n)
		case pushTypeConst8:
			idx, err := p.byte()
			if err != nil {
				return err
			}
			if err := t.constPush(&in, rec, int(idx)); err != nil {
				return err
			}
		case pushTypeConst16:
			idx, err := p.uint16()
			if err != nil {
				return err
			}
			if err := t.constPush(&in, rec, int(idx)); err != nil {
				return err
			}
		default:
			return decodeErrorf(rec.offset, rec.code, "unsupported push value type %d", typ)
		}

		t.instrs = append(t.instrs, in)
	}
	return nil
}

// constPush fills a push instruction from a constant-pool reference. The
// pool index doubles as the dense variable identifier.
func (t *translator) constPush(in *Instruction, rec record, idx int) error {
	if idx >= len(t.pool) {
		return decodeErrorf(rec.offset, rec.code, "constant index %d out of range (pool size %d)", idx, len(t.pool))
	}
	in.Op = OpPushString
	in.Str = t.pool[idx]
	in.DenseID = idx
	return nil
}

// resolveBranches is the second pass: rewrite byte targets into instruction
// indices.
func (t *translator) resolveBranches() error {
	for _, i := range t.branches {
		in := &t.instrs[i]
		idx, ok := t.offsetIndex[in.Target]
		if !ok {
			return decodeErrorf(in.Offset, branchCode(in.Op), "branch target %d is not a record boundary", in.Target)
		}
		in.Target = idx
	}
	return nil
}

func branchCode(op Op) Opcode {
	if op == OpIf {
		return CodeIf
	}
	return CodeJump
}
