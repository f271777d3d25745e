package action

import (
	"encoding/binary"
	"math"
)

// record is one decoded action record: an opcode, its payload (empty for
// codes without the length bit), and the byte offsets delimiting it. next is
// the offset of the following record, which is also the base that branch
// offsets are relative to.
type record struct {
	code    Opcode
	payload []byte
	offset  int
	next    int
}

// recordReader walks a raw action byte stream record by record.
type recordReader struct {
	data []byte
	pos  int
}

func newRecordReader(data []byte) *recordReader {
	return &recordReader{data: data}
}

func (r *recordReader) more() bool {
	return r.pos < len(r.data)
}

// read decodes the record at the current position and advances past it.
func (r *recordReader) read() (record, error) {
	start := r.pos
	code := Opcode(r.data[r.pos])
	r.pos++

	rec := record{code: code, offset: start}
	if !code.HasLength() {
		rec.next = r.pos
		return rec, nil
	}

	if r.pos+2 > len(r.data) {
		return record{}, decodeErrorf(start, code, "truncated length field")
	}
	length := int(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2

	if r.pos+length > len(r.data) {
		return record{}, decodeErrorf(start, code, "truncated payload: need %d bytes, have %d", length, len(r.data)-r.pos)
	}
	rec.payload = r.data[r.pos : r.pos+length]
	r.pos += length
	rec.next = r.pos
	return rec, nil
}

// payloadReader cursors over one record's payload bytes.
type payloadReader struct {
	rec record
	pos int
}

func (p *payloadReader) more() bool {
	return p.pos < len(p.rec.payload)
}

func (p *payloadReader) byte() (byte, error) {
	if p.pos >= len(p.rec.payload) {
		return 0, decodeErrorf(p.rec.offset, p.rec.code, "payload ends inside value")
	}
	b := p.rec.payload[p.pos]
	p.pos++
	return b, nil
}

func (p *payloadReader) uint16() (uint16, error) {
	if p.pos+2 > len(p.rec.payload) {
		return 0, decodeErrorf(p.rec.offset, p.rec.code, "payload ends inside uint16")
	}
	v := binary.LittleEndian.Uint16(p.rec.payload[p.pos:])
	p.pos += 2
	return v, nil
}

func (p *payloadReader) int16() (int16, error) {
	v, err := p.uint16()
	return int16(v), err
}

func (p *payloadReader) int32() (int32, error) {
	if p.pos+4 > len(p.rec.payload) {
		return 0, decodeErrorf(p.rec.offset, p.rec.code, "payload ends inside int32")
	}
	v := binary.LittleEndian.Uint32(p.rec.payload[p.pos:])
	p.pos += 4
	return int32(v), nil
}

func (p *payloadReader) float32() (float32, error) {
	if p.pos+4 > len(p.rec.payload) {
		return 0, decodeErrorf(p.rec.offset, p.rec.code, "payload ends inside float32")
	}
	bits := binary.LittleEndian.Uint32(p.rec.payload[p.pos:])
	p.pos += 4
	return math.Float32frombits(bits), nil
}

func (p *payloadReader) float64() (float64, error) {
	if p.pos+8 > len(p.rec.payload) {
		return 0, decodeErrorf(p.rec.offset, p.rec.code, "payload ends inside double")
	}
	bits := binary.LittleEndian.Uint64(p.rec.payload[p.pos:])
	p.pos += 8
	return math.Float64frombits(bits), nil
}

// cstring reads a NUL-terminated string from the payload.
func (p *payloadReader) cstring() (string, error) {
	for i := p.pos; i < len(p.rec.payload); i++ {
		if p.rec.payload[i] == 0 {
			s := string(p.rec.payload[p.pos:i])
			p.pos = i + 1
			return s, nil
		}
	}
	return "", decodeErrorf(p.rec.offset, p.rec.code, "unterminated string in payload")
}
