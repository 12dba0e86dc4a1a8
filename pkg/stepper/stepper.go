// Package stepper tracks the position of a linear, multi-step form.
package stepper

// Transition is notified when the visible step changes. Implementations
// drive whatever visibility or animation the front end uses.
type Transition interface {
	Hide(step int)
	Show(step int)
}

type nopTransition struct{}

func (nopTransition) Hide(int) {}
func (nopTransition) Show(int) {}

// Option configures a Stepper.
type Option func(*Stepper)

// WithTransition sets the observer for step changes.
func WithTransition(t Transition) Option {
	return func(s *Stepper) {
		if t != nil {
			s.transition = t
		}
	}
}

// WithProgress registers a callback receiving the progress percentage
// after every step change, and once on construction.
func WithProgress(fn func(percent float64)) Option {
	return func(s *Stepper) {
		s.onProgress = fn
	}
}

// Stepper holds the current step of a wizard with Total steps, numbered
// from 1. The current step is its only mutable state.
type Stepper struct {
	current    int
	total      int
	transition Transition
	onProgress func(float64)
}

// New returns a Stepper positioned on step 1. A total below 1 is treated
// as a single-step form.
func New(total int, opts ...Option) *Stepper {
	if total < 1 {
		total = 1
	}
	s := &Stepper{
		current:    1,
		total:      total,
		transition: nopTransition{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transition.Show(s.current)
	s.reportProgress()
	return s
}

func (s *Stepper) Current() int { return s.current }
func (s *Stepper) Total() int   { return s.total }
func (s *Stepper) IsFirst() bool {
	return s.current == 1
}
func (s *Stepper) IsLast() bool {
	return s.current == s.total
}

// Progress returns (current-1)/(total-1) as a percentage. A single-step
// form is always complete.
func (s *Stepper) Progress() float64 {
	if s.total <= 1 {
		return 100
	}
	return float64(s.current-1) / float64(s.total-1) * 100
}

// GoTo moves to step n. It is a no-op returning false when n is outside
// [1, Total] or already current.
func (s *Stepper) GoTo(n int) bool {
	if n < 1 || n > s.total || n == s.current {
		return false
	}
	s.transition.Hide(s.current)
	s.transition.Show(n)
	s.current = n
	s.reportProgress()
	return true
}

// Next advances one step unless already on the last one.
func (s *Stepper) Next() bool {
	if s.current >= s.total {
		return false
	}
	return s.GoTo(s.current + 1)
}

// Previous goes back one step unless already on the first one.
func (s *Stepper) Previous() bool {
	if s.current <= 1 {
		return false
	}
	return s.GoTo(s.current - 1)
}

// Reset returns to step 1.
func (s *Stepper) Reset() {
	s.GoTo(1)
}

func (s *Stepper) reportProgress() {
	if s.onProgress != nil {
		s.onProgress(s.Progress())
	}
}
