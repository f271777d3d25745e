package runtime

import (
	"bytes"
	"errors"
	"testing"

	"avm1/pkg/action"
)

func schedFrames(n int) []Routine {
	frames := make([]Routine, n)
	for i := range frames {
		frames[i] = Routine{}
	}
	return frames
}

func newSchedContext(opts ...Option) *Context {
	var out bytes.Buffer
	return NewContext(&action.Program{}, append([]Option{WithWriter(&out)}, opts...)...)
}

func TestSequentialFramesStopAtTableEnd(t *testing.T) {
	var order []int
	ctx := newSchedContext(WithHooks(Hooks{
		ShowFrame: func(f int) { order = append(order, f) },
	}))

	s := NewScheduler(ctx, schedFrames(3))
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}

	if s.State() != Stopped {
		t.Errorf("expected Stopped, got %v", s.State())
	}
	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("expected frames %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected frames %v, got %v", want, order)
		}
	}
}

func TestStopActionTerminates(t *testing.T) {
	var order []int
	ctx := newSchedContext(WithHooks(Hooks{
		ShowFrame: func(f int) { order = append(order, f) },
	}))

	frames := schedFrames(5)
	frames[1] = Routine{{Op: action.OpStop, DenseID: action.NoDense}}

	s := NewScheduler(ctx, frames)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[1] != 1 {
		t.Errorf("stop should end the schedule at frame 1, got %v", order)
	}
	if s.State() != Stopped {
		t.Errorf("expected Stopped, got %v", s.State())
	}
}

// A routine that requests a jump to frame 0 from frame 5 makes the next
// executed routine frame 0's, not frame 6's.
func TestExplicitJumpRedirects(t *testing.T) {
	var order []int
	ctx := newSchedContext(WithHooks(Hooks{
		ShowFrame: func(f int) { order = append(order, f) },
	}))

	frames := schedFrames(6)
	frames[5] = Routine{{Op: action.OpGotoFrame, Target: 0, DenseID: action.NoDense}}

	s := NewScheduler(ctx, frames, WithMaxFrames(8))
	err := s.Run()
	if !errors.Is(err, ErrMaxFramesExceeded) {
		t.Fatalf("cyclic schedule should trip the frame cap, got %v", err)
	}

	want := []int{0, 1, 2, 3, 4, 5, 0, 1}
	if len(order) != len(want) {
		t.Fatalf("expected frames %v, got %v", want, order)
	}
	if order[6] != 0 {
		t.Errorf("after the jump from frame 5 the next frame must be 0, got %d", order[6])
	}
}

func TestNextAndPrevFrame(t *testing.T) {
	var order []int
	ctx := newSchedContext(WithHooks(Hooks{
		ShowFrame: func(f int) { order = append(order, f) },
	}))

	frames := schedFrames(4)
	// frame 1 jumps forward over frame 2
	frames[1] = Routine{{Op: action.OpGotoFrame, Target: 3, DenseID: action.NoDense}}

	s := NewScheduler(ctx, frames)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 3}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestNextFrameAction(t *testing.T) {
	var order []int
	ctx := newSchedContext(WithHooks(Hooks{
		ShowFrame: func(f int) { order = append(order, f) },
	}))

	frames := schedFrames(3)
	// nextframe is an explicit jump request to frame+1
	frames[0] = Routine{{Op: action.OpNextFrame, DenseID: action.NoDense}}
	frames[2] = Routine{{Op: action.OpStop, DenseID: action.NoDense}}

	s := NewScheduler(ctx, frames)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestVariablesPersistAcrossFrames(t *testing.T) {
	var out bytes.Buffer
	ctx := NewContext(&action.Program{}, WithWriter(&out))

	frames := []Routine{
		{
			{Op: action.OpPushString, Str: "n", DenseID: action.NoDense},
			{Op: action.OpPushNumber, Num: 12, DenseID: action.NoDense},
			{Op: action.OpSetVariable, DenseID: action.NoDense},
		},
		{
			{Op: action.OpPushString, Str: "n", DenseID: action.NoDense},
			{Op: action.OpGetVariable, DenseID: action.NoDense},
			{Op: action.OpTrace, DenseID: action.NoDense},
		},
	}

	s := NewScheduler(ctx, frames)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "12\n" {
		t.Errorf("variables should survive frame boundaries, got %q", got)
	}
}

func TestPlayClearsStopRequest(t *testing.T) {
	ctx := newSchedContext()
	frames := schedFrames(2)
	frames[0] = Routine{
		{Op: action.OpStop, DenseID: action.NoDense},
		{Op: action.OpPlay, DenseID: action.NoDense},
	}

	s := NewScheduler(ctx, frames)
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	// play cancelled the stop, so both frames ran and the table end stopped us
	if s.Frame() != 2 {
		t.Errorf("expected schedule to pass the table end, final frame %d", s.Frame())
	}
}
