package runtime

import "errors"

var (
	// ErrStackOverflow means the operand stack buffer is exhausted. Fatal.
	ErrStackOverflow = errors.New("operand stack exhausted")

	// ErrStackUnderflow means an operation popped an empty stack. This is a
	// translator/runtime contract violation, not a recoverable condition.
	ErrStackUnderflow = errors.New("operand stack underflow")

	// ErrBadHandle means an object handle does not name an arena slot.
	ErrBadHandle = errors.New("invalid object handle")

	// ErrDoubleRelease means Release was called on an already-freed record.
	ErrDoubleRelease = errors.New("object released after deallocation")

	// ErrMaxStepsExceeded means a routine ran past its instruction cap.
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")

	// ErrMaxFramesExceeded means the scheduler ran past its frame cap,
	// usually a malformed jump cycle.
	ErrMaxFramesExceeded = errors.New("maximum frames exceeded")
)
