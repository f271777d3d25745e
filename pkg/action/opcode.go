package action

// Opcode is a raw SWF action code byte. Codes with the high bit set carry a
// little-endian uint16 length followed by that many payload bytes.
type Opcode byte

// SWF action codes (SWF file format specification, DoAction tag)
const (
	CodeEnd          Opcode = 0x00
	CodeNextFrame    Opcode = 0x04
	CodePrevFrame    Opcode = 0x05
	CodePlay         Opcode = 0x06
	CodeStop         Opcode = 0x07
	CodeStopSounds   Opcode = 0x09
	CodeAdd          Opcode = 0x0A
	CodeSubtract     Opcode = 0x0B
	CodeMultiply     Opcode = 0x0C
	CodeDivide       Opcode = 0x0D
	CodeEquals       Opcode = 0x0E
	CodeLess         Opcode = 0x0F
	CodeAnd          Opcode = 0x10
	CodeOr           Opcode = 0x11
	CodeNot          Opcode = 0x12
	CodeStringEquals Opcode = 0x13
	CodeStringLength Opcode = 0x14
	CodePop          Opcode = 0x17
	CodeToInteger    Opcode = 0x18
	CodeGetVariable  Opcode = 0x1C
	CodeSetVariable  Opcode = 0x1D
	CodeStringAdd    Opcode = 0x21
	CodeTrace        Opcode = 0x26
	CodeRandom       Opcode = 0x30
	CodeGetTime      Opcode = 0x34
	CodeModulo       Opcode = 0x3F
	CodeInitArray    Opcode = 0x42
	CodeInitObject   Opcode = 0x43
	CodeGetMember    Opcode = 0x4E
	CodeSetMember    Opcode = 0x4F
	CodeGotoFrame    Opcode = 0x81
	CodeConstantPool Opcode = 0x88
	CodePush         Opcode = 0x96
	CodeJump         Opcode = 0x99
	CodeIf           Opcode = 0x9D
)

// Push payload value types
const (
	pushTypeString  = 0
	pushTypeFloat   = 1
	pushTypeBool    = 5
	pushTypeDouble  = 6
	pushTypeInt     = 7
	pushTypeConst8  = 8
	pushTypeConst16 = 9
)

// opcodeInfo records the documented name and stack arity of an action code.
// Pops/Pushes are per executed operation; Push records one operation per
// payload value, so its table entry covers a single value. VarArity marks
// codes whose operand count depends on a popped counter and is therefore not
// checkable from the table alone.
type opcodeInfo struct {
	Name     string
	Pops     int
	Pushes   int
	VarArity bool
}

var opcodeTable = map[Opcode]opcodeInfo{
	CodeEnd:          {Name: "End"},
	CodeNextFrame:    {Name: "NextFrame"},
	CodePrevFrame:    {Name: "PrevFrame"},
	CodePlay:         {Name: "Play"},
	CodeStop:         {Name: "Stop"},
	CodeStopSounds:   {Name: "StopSounds"},
	CodeAdd:          {Name: "Add", Pops: 2, Pushes: 1},
	CodeSubtract:     {Name: "Subtract", Pops: 2, Pushes: 1},
	CodeMultiply:     {Name: "Multiply", Pops: 2, Pushes: 1},
	CodeDivide:       {Name: "Divide", Pops: 2, Pushes: 1},
	CodeEquals:       {Name: "Equals", Pops: 2, Pushes: 1},
	CodeLess:         {Name: "Less", Pops: 2, Pushes: 1},
	CodeAnd:          {Name: "And", Pops: 2, Pushes: 1},
	CodeOr:           {Name: "Or", Pops: 2, Pushes: 1},
	CodeNot:          {Name: "Not", Pops: 1, Pushes: 1},
	CodeStringEquals: {Name: "StringEquals", Pops: 2, Pushes: 1},
	CodeStringLength: {Name: "StringLength", Pops: 1, Pushes: 1},
	CodePop:          {Name: "Pop", Pops: 1},
	CodeToInteger:    {Name: "ToInteger", Pops: 1, Pushes: 1},
	CodeGetVariable:  {Name: "GetVariable", Pops: 1, Pushes: 1},
	CodeSetVariable:  {Name: "SetVariable", Pops: 2},
	CodeStringAdd:    {Name: "StringAdd", Pops: 2, Pushes: 1},
	CodeTrace:        {Name: "Trace", Pops: 1},
	CodeInitArray:    {Name: "InitArray", Pushes: 1, VarArity: true},
	CodeInitObject:   {Name: "InitObject", Pushes: 1, VarArity: true},
	CodeGetMember:    {Name: "GetMember", Pops: 2, Pushes: 1},
	CodeSetMember:    {Name: "SetMember", Pops: 3},
	CodeRandom:       {Name: "RandomNumber", Pops: 1, Pushes: 1},
	CodeGetTime:      {Name: "GetTime", Pushes: 1},
	CodeModulo:       {Name: "Modulo", Pops: 2, Pushes: 1},
	CodeGotoFrame:    {Name: "GotoFrame"},
	CodeConstantPool: {Name: "ConstantPool"},
	CodePush:         {Name: "Push", Pushes: 1},
	CodeJump:         {Name: "Jump"},
	CodeIf:           {Name: "If", Pops: 1},
}

// HasLength reports whether the code is followed by a uint16 length field.
func (o Opcode) HasLength() bool {
	return o&0x80 != 0
}

// Known reports whether the code is in the supported set.
func (o Opcode) Known() bool {
	_, ok := opcodeTable[o]
	return ok
}

// String returns the documented action name, or a hex rendering for codes
// outside the supported set.
func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.Name
	}
	return "0x" + hexByte(byte(o))
}

func hexByte(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}
