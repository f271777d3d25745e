package runtime

import (
	"errors"
	"testing"
)

func TestStackPushPopBalance(t *testing.T) {
	s := NewStack(DefaultStackSize, []string{"pool0"})

	if !s.Empty() {
		t.Fatal("new stack should be empty")
	}

	pushes := []func() error{
		func() error { return s.PushNumber(1.5) },
		func() error { return s.PushBoolean(true) },
		func() error { return s.PushString("dynamic") },
		func() error { return s.PushConstant(0, 0) },
	}
	for i, push := range pushes {
		if err := push(); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
		if got := s.Depth(); got != i+1 {
			t.Fatalf("depth after push %d: expected %d, got %d", i, i+1, got)
		}
	}

	for i := len(pushes); i > 0; i-- {
		if _, err := s.Pop(); err != nil {
			t.Fatalf("pop at depth %d: %v", i, err)
		}
		if got := s.Depth(); got != i-1 {
			t.Fatalf("depth after pop: expected %d, got %d", i-1, got)
		}
	}
	if !s.Empty() {
		t.Error("stack should be empty after balanced pops")
	}
}

func TestStackBackLinkOrder(t *testing.T) {
	s := NewStack(DefaultStackSize, nil)
	for _, n := range []float64{1, 2, 3} {
		if err := s.PushNumber(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []float64{3, 2, 1} {
		e, err := s.Pop()
		if err != nil {
			t.Fatal(err)
		}
		if e.Kind != KindNumber || e.Number() != want {
			t.Errorf("pop: expected number %v, got %v %v", want, e.Kind, e.Number())
		}
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack(DefaultStackSize, nil)
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("pop on empty: expected ErrStackUnderflow, got %v", err)
	}
	if _, err := s.Peek(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("peek on empty: expected ErrStackUnderflow, got %v", err)
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack(entrySize*2, nil)
	if err := s.PushNumber(1); err != nil {
		t.Fatal(err)
	}
	if err := s.PushNumber(2); err != nil {
		t.Fatal(err)
	}
	if err := s.PushNumber(3); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("expected ErrStackOverflow, got %v", err)
	}
}

func TestConvertToNumberInPlace(t *testing.T) {
	s := NewStack(DefaultStackSize, nil)
	if err := s.PushNumber(7); err != nil {
		t.Fatal(err)
	}
	if err := s.PushString("42"); err != nil {
		t.Fatal(err)
	}

	if err := s.ConvertToNumber(); err != nil {
		t.Fatal(err)
	}
	if got := s.Depth(); got != 2 {
		t.Fatalf("conversion changed depth: %d", got)
	}

	top, err := s.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if top.Kind != KindNumber || top.Number() != 42 {
		t.Errorf("top after convert: expected number 42, got %v %v", top.Kind, top.Number())
	}

	// the entry below the top must be untouched
	below, err := s.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if below.Kind != KindNumber || below.Number() != 7 {
		t.Errorf("below entry corrupted: got %v %v", below.Kind, below.Number())
	}
}

func TestConvertToString(t *testing.T) {
	tests := []struct {
		push     func(*Stack) error
		expected string
	}{
		{func(s *Stack) error { return s.PushNumber(3) }, "3"},
		{func(s *Stack) error { return s.PushNumber(2.5) }, "2.5"},
		{func(s *Stack) error { return s.PushBoolean(true) }, "true"},
		{func(s *Stack) error { return s.PushString("already") }, "already"},
	}

	for _, test := range tests {
		s := NewStack(DefaultStackSize, nil)
		if err := test.push(s); err != nil {
			t.Fatal(err)
		}
		if err := s.ConvertToString(); err != nil {
			t.Fatal(err)
		}
		e, err := s.Peek()
		if err != nil {
			t.Fatal(err)
		}
		if e.Kind != KindString {
			t.Errorf("expected string kind, got %v", e.Kind)
		}
		if got := s.EntryString(e); got != test.expected {
			t.Errorf("expected %q, got %q", test.expected, got)
		}
	}
}

func TestDeferredConcat(t *testing.T) {
	s := NewStack(DefaultStackSize, nil)
	if err := s.PushString("Hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.PushString("World"); err != nil {
		t.Fatal(err)
	}

	a, _ := s.Pop() // "World"
	b, _ := s.Pop() // "Hello"
	if err := s.PushConcat(b, a); err != nil {
		t.Fatal(err)
	}

	e, err := s.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != KindStringList {
		t.Fatalf("expected fragment list on top, got %v", e.Kind)
	}
	if got := s.EntryString(e); got != "HelloWorld" {
		t.Errorf("expected %q, got %q", "HelloWorld", got)
	}

	// chained concatenation flattens existing lists
	if err := s.PushString("!"); err != nil {
		t.Fatal(err)
	}
	x, _ := s.Pop()
	l, _ := s.Pop()
	if err := s.PushConcat(l, x); err != nil {
		t.Fatal(err)
	}
	e, _ = s.Peek()
	if got := s.EntryString(e); got != "HelloWorld!" {
		t.Errorf("expected %q, got %q", "HelloWorld!", got)
	}
}

func TestConcatMaterializesOnConvert(t *testing.T) {
	s := NewStack(DefaultStackSize, []string{"con", "cat"})
	if err := s.PushConstant(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.PushConstant(1, 1); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	if err := s.PushConcat(b, a); err != nil {
		t.Fatal(err)
	}

	if err := s.ConvertToString(); err != nil {
		t.Fatal(err)
	}
	e, _ := s.Peek()
	if e.Kind != KindString {
		t.Fatalf("expected plain string after convert, got %v", e.Kind)
	}
	if got := s.EntryString(e); got != "concat" {
		t.Errorf("expected %q, got %q", "concat", got)
	}
}

func TestEntryCoercions(t *testing.T) {
	s := NewStack(DefaultStackSize, nil)

	if err := s.PushString("10"); err != nil {
		t.Fatal(err)
	}
	e, _ := s.Pop()
	if got := s.EntryNumber(e); got != 10 {
		t.Errorf("EntryNumber of \"10\": got %v", got)
	}

	if err := s.PushBoolean(true); err != nil {
		t.Fatal(err)
	}
	e, _ = s.Pop()
	if got := s.EntryNumber(e); got != 1 {
		t.Errorf("EntryNumber of true: got %v", got)
	}
	if got := s.EntryString(e); got != "true" {
		t.Errorf("EntryString of true: got %q", got)
	}

	if err := s.PushString(""); err != nil {
		t.Fatal(err)
	}
	e, _ = s.Pop()
	if s.EntryTruthy(e) {
		t.Error("empty string should not be truthy")
	}
}

func TestResetAbandonsTransientStorage(t *testing.T) {
	s := NewStack(DefaultStackSize, nil)
	if err := s.PushString("transient"); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if !s.Empty() {
		t.Error("reset should empty the stack")
	}
	if len(s.scratch) != 0 || len(s.held) != 0 || len(s.frags) != 0 {
		t.Error("reset should clear scratch, held, and fragment storage")
	}
}
