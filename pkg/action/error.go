package action

import (
	"fmt"

	"avm1/pkg/color"
)

// DecodeError is a fatal translation failure. It names the offending code
// byte and the byte offset of the record it occurred in; the whole unit is
// rejected and no instructions are produced.
type DecodeError struct {
	Offset int
	Code   Opcode
	Reason string
}

func (e *DecodeError) Error() string {
	msg := color.RedText("action decode failed") + ": " + e.Reason
	msg += " (" + color.BlueText(fmt.Sprintf("opcode 0x%02X", byte(e.Code))) + ")"
	msg += " at " + color.YellowText(fmt.Sprintf("byte offset %d", e.Offset))
	return msg
}

func decodeErrorf(offset int, code Opcode, format string, args ...any) *DecodeError {
	return &DecodeError{
		Offset: offset,
		Code:   code,
		Reason: fmt.Sprintf(format, args...),
	}
}
