package runtime

// Kind discriminates the typed values that flow between the stack, the
// variable store, and object properties. StringList appears only on the
// stack; stores materialize it into a plain String.
type Kind int

const (
	KindUndefined Kind = iota
	KindNumber
	KindBoolean
	KindString
	KindStringList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindStringList:
		return "stringlist"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the boundary representation used by the variable store and object
// properties. Owned distinguishes a string payload that is the slot's private
// copy from one borrowed out of the translation unit's constant pool; only
// pool strings may be stored without copying.
type Value struct {
	Kind  Kind
	Num   float64
	Flag  bool
	Str   string
	Owned bool
	Obj   Handle
}

// Undefined is the sentinel returned when loading an unset variable.
func Undefined() Value {
	return Value{Kind: KindUndefined}
}

func NewNumber(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

func NewBoolean(b bool) Value {
	return Value{Kind: KindBoolean, Flag: b}
}

// NewString builds an owned string value (a private copy).
func NewString(s string) Value {
	return Value{Kind: KindString, Str: s, Owned: true}
}

// BorrowedString builds a string value that references constant-pool text
// and is never copied on store.
func BorrowedString(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func NewObjectValue(h Handle) Value {
	return Value{Kind: KindObject, Obj: h}
}

// ToNumber converts the value per the coercion rules.
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBoolean:
		if v.Flag {
			return 1
		}
		return 0
	case KindString:
		return ToNumber(v.Str)
	case KindObject:
		return nan()
	default:
		return nan()
	}
}

// ToString converts the value per the coercion rules.
func (v Value) ToString() string {
	switch v.Kind {
	case KindNumber:
		return NumberToString(v.Num)
	case KindBoolean:
		if v.Flag {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	case KindObject:
		return "[object Object]"
	default:
		return "undefined"
	}
}

// Truthy applies the boolean coercion rules: zero, NaN, undefined, and the
// empty string are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNumber:
		return truthyNumber(v.Num)
	case KindBoolean:
		return v.Flag
	case KindString:
		return v.Str != ""
	case KindObject:
		return true
	default:
		return false
	}
}
