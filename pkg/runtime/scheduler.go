package runtime

import "avm1/pkg/action"

// State is the scheduler's execution state.
type State int

const (
	Running State = iota
	Jumped         // a routine requested an explicit target frame
	Stopped        // terminal
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Jumped:
		return "jumped"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Routine is one frame's translated instruction sequence.
type Routine []action.Instruction

// Scheduler drives sequential or jump-directed execution of per-frame
// routines. After a routine completes, the next frame is the routine's
// explicit jump target if it requested one, otherwise the current index plus
// one; execution stops on a stop action or when the next index has no
// routine. The loop carries a hard iteration cap so malformed jump cycles
// terminate instead of spinning.
type Scheduler struct {
	ctx       *Context
	frames    []Routine
	state     State
	frame     int
	maxFrames int
}

// DefaultMaxFrames bounds the scheduler loop defensively.
const DefaultMaxFrames = 100000

type SchedulerOption func(*Scheduler)

// WithMaxFrames sets the hard cap on frame iterations (0 = default cap).
func WithMaxFrames(n int) SchedulerOption {
	return func(s *Scheduler) { s.maxFrames = n }
}

// NewScheduler creates a scheduler over a frame table. Frame zero runs
// first.
func NewScheduler(ctx *Context, frames []Routine, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		ctx:       ctx,
		frames:    frames,
		state:     Running,
		maxFrames: DefaultMaxFrames,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	return s.state
}

// Frame returns the index of the last frame entered.
func (s *Scheduler) Frame() int {
	return s.frame
}

// Run executes frames until the schedule reaches Stopped or the iteration
// cap trips.
func (s *Scheduler) Run() error {
	s.frame = 0
	s.state = Running

	for iter := 0; ; iter++ {
		if s.maxFrames > 0 && iter >= s.maxFrames {
			s.state = Stopped
			return ErrMaxFramesExceeded
		}

		if s.frame < 0 || s.frame >= len(s.frames) {
			s.state = Stopped
			return nil
		}

		s.state = Running
		if err := s.ctx.RunRoutine(s.frame, s.frames[s.frame]); err != nil {
			s.state = Stopped
			return err
		}

		if s.ctx.hooks.ShowFrame != nil {
			s.ctx.hooks.ShowFrame(s.frame)
		}

		if s.ctx.Stopped() {
			s.state = Stopped
			return nil
		}

		if target, ok := s.ctx.JumpTarget(); ok {
			s.state = Jumped
			s.frame = target
			continue
		}

		s.frame++
	}
}
