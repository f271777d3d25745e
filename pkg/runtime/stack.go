package runtime

import (
	"encoding/binary"
	"math"
	"strings"
)

func float64Bits(f float64) uint64 {
	return math.Float64bits(f)
}

func float64FromBits(b uint64) float64 {
	return math.Float64frombits(b)
}

// The operand stack is a downward-growing byte buffer of fixed-size typed
// entries. Each entry records the byte offset of the previous top, so the
// entries form a singly linked list through the buffer and popping needs no
// separate size table: restoring the stack pointer to the back-link abandons
// the vacated bytes without clearing them. Offsets are plain integer indices
// into the owned buffer, bounds-checked on every access.
//
// String payloads are borrowed views, never inline copies. The pool tag
// selects the backing store: the translation unit's constant pool, the
// scratch buffer holding transient dynamic text, or the held list of strings
// borrowed from variable storage during a load. Scratch and held are reset
// per routine, which is why stores must copy out of them (copy-on-store).
//
// Entry layout, little-endian:
//
//	[0]     kind
//	[1]     pool tag
//	[2:4]   reserved
//	[4:8]   dense id (int32, -1 when absent)
//	[8:12]  back-link (byte offset of previous top)
//	[12:16] length (string byte length / fragment count)
//	[16:24] payload (number bits, bool, handle, or backing-store index)
const entrySize = 24

// DefaultStackSize is the operand stack buffer size in bytes.
const DefaultStackSize = 4096

const (
	poolConstant byte = iota // index into the constant pool
	poolScratch              // offset into the scratch buffer
	poolHeld                 // index into the held list (variable-backed)
)

// Entry is a decoded view of one stack slot.
type Entry struct {
	Kind    Kind
	DenseID int
	pool    byte
	length  uint32
	payload uint64
}

// Stack is the operand stack of one interpreter context.
type Stack struct {
	buf     []byte
	sp      int // byte offset of the top entry; len(buf) is the sentinel base
	pool    []string
	scratch []byte
	held    []string
	frags   []fragment
}

// fragment is one piece of a deferred string concatenation.
type fragment struct {
	pool    byte
	payload uint32
	length  uint32
}

// NewStack creates a stack with the given buffer size over a constant pool.
func NewStack(size int, pool []string) *Stack {
	if size < entrySize {
		size = DefaultStackSize
	}
	s := &Stack{
		buf:  make([]byte, size),
		pool: pool,
	}
	s.sp = len(s.buf)
	return s
}

// Reset abandons all entries and transient string storage. The buffer itself
// is reused, not cleared.
func (s *Stack) Reset() {
	s.sp = len(s.buf)
	s.scratch = s.scratch[:0]
	s.held = s.held[:0]
	s.frags = s.frags[:0]
}

// Empty reports whether the stack holds no entries.
func (s *Stack) Empty() bool {
	return s.sp >= len(s.buf)
}

// Depth walks the back-link chain and returns the number of live entries.
func (s *Stack) Depth() int {
	n := 0
	for off := s.sp; off < len(s.buf); {
		n++
		off = int(binary.LittleEndian.Uint32(s.buf[off+8 : off+12]))
	}
	return n
}

func (s *Stack) push(e Entry) error {
	ns := s.sp - entrySize
	if ns < 0 {
		return ErrStackOverflow
	}
	back := s.sp
	s.sp = ns
	s.writeEntry(ns, e, back)
	return nil
}

func (s *Stack) writeEntry(off int, e Entry, back int) {
	b := s.buf[off : off+entrySize]
	b[0] = byte(e.Kind)
	b[1] = e.pool
	b[2], b[3] = 0, 0
	binary.LittleEndian.PutUint32(b[4:8], uint32(int32(e.DenseID)))
	binary.LittleEndian.PutUint32(b[8:12], uint32(back))
	binary.LittleEndian.PutUint32(b[12:16], e.length)
	binary.LittleEndian.PutUint64(b[16:24], e.payload)
}

func (s *Stack) readEntry(off int) Entry {
	b := s.buf[off : off+entrySize]
	return Entry{
		Kind:    Kind(b[0]),
		pool:    b[1],
		DenseID: int(int32(binary.LittleEndian.Uint32(b[4:8]))),
		length:  binary.LittleEndian.Uint32(b[12:16]),
		payload: binary.LittleEndian.Uint64(b[16:24]),
	}
}

// Pop removes the top entry. The vacated bytes stay in the buffer but are no
// longer reachable through the pointer chain; reading them afterwards is an
// ownership violation, not a supported aliasing feature.
func (s *Stack) Pop() (Entry, error) {
	if s.Empty() {
		return Entry{}, ErrStackUnderflow
	}
	e := s.readEntry(s.sp)
	s.sp = int(binary.LittleEndian.Uint32(s.buf[s.sp+8 : s.sp+12]))
	return e, nil
}

// Peek reads the top entry without moving the stack pointer.
func (s *Stack) Peek() (Entry, error) {
	if s.Empty() {
		return Entry{}, ErrStackUnderflow
	}
	return s.readEntry(s.sp), nil
}

func (s *Stack) PushNumber(f float64) error {
	return s.push(Entry{Kind: KindNumber, DenseID: -1, payload: float64Bits(f)})
}

func (s *Stack) PushBoolean(b bool) error {
	var p uint64
	if b {
		p = 1
	}
	return s.push(Entry{Kind: KindBoolean, DenseID: -1, payload: p})
}

// PushObject pushes an object handle. The caller decides whether the push
// transfers an existing owning reference or needs a retain.
func (s *Stack) PushObject(h Handle) error {
	return s.push(Entry{Kind: KindObject, DenseID: -1, payload: uint64(uint32(h))})
}

// PushConstant pushes a borrowed view of a constant-pool string, tagged with
// its dense variable identifier.
func (s *Stack) PushConstant(poolIdx, denseID int) error {
	if poolIdx < 0 || poolIdx >= len(s.pool) {
		return ErrBadHandle
	}
	return s.push(Entry{
		Kind:    KindString,
		DenseID: denseID,
		pool:    poolConstant,
		length:  uint32(len(s.pool[poolIdx])),
		payload: uint64(poolIdx),
	})
}

// PushString copies text into the scratch buffer and pushes a view of it.
func (s *Stack) PushString(str string) error {
	off := len(s.scratch)
	s.scratch = append(s.scratch, str...)
	return s.push(Entry{
		Kind:    KindString,
		DenseID: -1,
		pool:    poolScratch,
		length:  uint32(len(str)),
		payload: uint64(off),
	})
}

// PushValue pushes a value loaded from variable or property storage. String
// payloads are borrowed (held), not copied; the view dies with the routine.
func (s *Stack) PushValue(v Value) error {
	switch v.Kind {
	case KindNumber:
		return s.PushNumber(v.Num)
	case KindBoolean:
		return s.PushBoolean(v.Flag)
	case KindObject:
		return s.PushObject(v.Obj)
	case KindString:
		idx := len(s.held)
		s.held = append(s.held, v.Str)
		return s.push(Entry{
			Kind:    KindString,
			DenseID: -1,
			pool:    poolHeld,
			length:  uint32(len(v.Str)),
			payload: uint64(idx),
		})
	default:
		return s.push(Entry{Kind: KindUndefined, DenseID: -1})
	}
}

// PushConcat pushes a fragment list deferring the concatenation of a and b.
// No text is copied until the list is materialized by a store or an explicit
// string conversion.
func (s *Stack) PushConcat(a, b Entry) error {
	start := len(s.frags)
	if err := s.appendFragments(a); err != nil {
		return err
	}
	if err := s.appendFragments(b); err != nil {
		return err
	}
	return s.push(Entry{
		Kind:    KindStringList,
		DenseID: -1,
		pool:    poolScratch,
		length:  uint32(len(s.frags) - start),
		payload: uint64(start),
	})
}

func (s *Stack) appendFragments(e Entry) error {
	switch e.Kind {
	case KindString:
		s.frags = append(s.frags, fragment{pool: e.pool, payload: uint32(e.payload), length: e.length})
	case KindStringList:
		start := int(e.payload)
		end := start + int(e.length)
		s.frags = append(s.frags, s.frags[start:end]...)
	default:
		// non-string operand: materialize its text into scratch first
		text := s.EntryString(e)
		off := len(s.scratch)
		s.scratch = append(s.scratch, text...)
		s.frags = append(s.frags, fragment{pool: poolScratch, payload: uint32(off), length: uint32(len(text))})
	}
	return nil
}

func (s *Stack) fragmentString(f fragment) string {
	switch f.pool {
	case poolConstant:
		return s.pool[f.payload]
	case poolHeld:
		return s.held[f.payload]
	default:
		return string(s.scratch[f.payload : f.payload+f.length])
	}
}

// EntryString resolves an entry to its text per the coercion rules.
func (s *Stack) EntryString(e Entry) string {
	switch e.Kind {
	case KindString:
		return s.fragmentString(fragment{pool: e.pool, payload: uint32(e.payload), length: e.length})
	case KindStringList:
		var sb strings.Builder
		start := int(e.payload)
		for _, f := range s.frags[start : start+int(e.length)] {
			sb.WriteString(s.fragmentString(f))
		}
		return sb.String()
	case KindNumber:
		return NumberToString(float64FromBits(e.payload))
	case KindBoolean:
		if e.payload != 0 {
			return "true"
		}
		return "false"
	case KindObject:
		return "[object Object]"
	default:
		return "undefined"
	}
}

// EntryNumber resolves an entry to a number per the coercion rules.
func (s *Stack) EntryNumber(e Entry) float64 {
	switch e.Kind {
	case KindNumber:
		return float64FromBits(e.payload)
	case KindBoolean:
		if e.payload != 0 {
			return 1
		}
		return 0
	case KindString, KindStringList:
		return ToNumber(s.EntryString(e))
	default:
		return nan()
	}
}

// EntryTruthy resolves an entry to a boolean per the coercion rules.
func (s *Stack) EntryTruthy(e Entry) bool {
	switch e.Kind {
	case KindNumber:
		return truthyNumber(float64FromBits(e.payload))
	case KindBoolean:
		return e.payload != 0
	case KindString, KindStringList:
		return len(s.EntryString(e)) > 0
	case KindObject:
		return true
	default:
		return false
	}
}

// Object returns the handle carried by an object entry.
func (e Entry) Object() Handle {
	return Handle(int32(uint32(e.payload)))
}

// Number returns the numeric payload of a number entry.
func (e Entry) Number() float64 {
	return float64FromBits(e.payload)
}

// ConvertToNumber rewrites the top entry in place as a number. Entries below
// the top are never touched.
func (s *Stack) ConvertToNumber() error {
	e, err := s.Peek()
	if err != nil {
		return err
	}
	n := s.EntryNumber(e)
	s.rewriteTop(Entry{Kind: KindNumber, DenseID: -1, payload: float64Bits(n)})
	return nil
}

// ConvertToString rewrites the top entry in place as a string. Fragment
// lists and non-string entries materialize into scratch.
func (s *Stack) ConvertToString() error {
	e, err := s.Peek()
	if err != nil {
		return err
	}
	if e.Kind == KindString {
		return nil
	}
	text := s.EntryString(e)
	off := len(s.scratch)
	s.scratch = append(s.scratch, text...)
	s.rewriteTop(Entry{
		Kind:    KindString,
		DenseID: -1,
		pool:    poolScratch,
		length:  uint32(len(text)),
		payload: uint64(off),
	})
	return nil
}

// rewriteTop replaces the top entry's kind and payload, preserving its
// back-link.
func (s *Stack) rewriteTop(e Entry) {
	back := int(binary.LittleEndian.Uint32(s.buf[s.sp+8 : s.sp+12]))
	s.writeEntry(s.sp, e, back)
}
