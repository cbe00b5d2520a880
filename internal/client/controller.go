package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"smart-diet-planner/internal/mealplan"
)

// Phase is the submission lifecycle position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Client-side messages.
const (
	MsgInvalidNumbers = "Please enter valid positive numbers for Calories and Budget."
	progressCeiling   = 90
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("a plan is already being generated")

// State is a snapshot of the controller.
type State struct {
	Phase    Phase
	Progress int
	Loading  bool
	Plan     mealplan.MealPlan
	Err      string
}

// Submitter sends constraints to a plan generator.
type Submitter interface {
	Submit(ctx context.Context, c mealplan.Constraints) (mealplan.MealPlan, error)
}

// Observer is notified of every state change, in order, from the goroutine
// that caused it.
type Observer interface {
	OnState(s State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithTickInterval sets how often the cosmetic progress advances.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) { c.tickInterval = d }
}

// WithSettleDelay sets how long a terminal state stays loading before the
// controller returns to idle. Zero settles synchronously.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) { c.settleDelay = d }
}

// WithRand sets the source of progress increments.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rnd = r }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// Controller owns the constraints draft and drives one submission at a time
// through Idle -> Submitting -> Succeeded|Failed -> Idle.
type Controller struct {
	submitter    Submitter
	tickInterval time.Duration
	settleDelay  time.Duration
	rnd          *rand.Rand
	observers    []Observer

	mu    sync.Mutex
	draft mealplan.Constraints
	state State
	seq   int

	notifyMu sync.Mutex
}

// NewController creates a controller whose draft starts at the form defaults.
func NewController(s Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter:    s,
		tickInterval: 800 * time.Millisecond,
		settleDelay:  500 * time.Millisecond,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		draft:        mealplan.DefaultConstraints(),
		state:        State{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Draft returns a copy of the current constraints draft.
func (c *Controller) Draft() mealplan.Constraints {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Update edits the draft. Edits are refused while a submission is loading.
func (c *Controller) Update(fn func(*mealplan.Constraints)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Loading {
		return ErrBusy
	}
	fn(&c.draft)
	return nil
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one submission with the current draft and returns the
// terminal state. The submitting state is published to observers before the
// submitter is called. Loading clears after the settle delay.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.state.Loading {
		s := c.state
		c.mu.Unlock()
		return s, ErrBusy
	}
	c.seq++
	seq := c.seq
	draft := c.draft
	c.state = State{Phase: PhaseSubmitting, Loading: true}
	pending := c.state
	c.mu.Unlock()

	c.notify(pending)

	if draft.CalorieTarget <= 0 || draft.DailyBudget <= 0 {
		return c.finish(seq, nil, errors.New(MsgInvalidNumbers), false), nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go c.tick(seq, stop, done)

	plan, err := c.submitter.Submit(ctx, draft)

	close(stop)
	<-done

	return c.finish(seq, plan, err, true), nil
}

func (c *Controller) tick(seq int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	t := time.NewTicker(c.tickInterval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.mu.Lock()
			if c.seq != seq || c.state.Phase != PhaseSubmitting {
				c.mu.Unlock()
				return
			}
			p := c.state.Progress + 1 + c.rnd.Intn(6)
			if p > progressCeiling {
				p = progressCeiling
			}
			changed := p != c.state.Progress
			c.state.Progress = p
			s := c.state
			c.mu.Unlock()

			if changed {
				c.notify(s)
			}
		}
	}
}

func (c *Controller) finish(seq int, plan mealplan.MealPlan, err error, remote bool) State {
	c.mu.Lock()
	if err != nil {
		msg := err.Error()
		if remote {
			msg = FailureMessage(err)
		}
		c.state = State{Phase: PhaseFailed, Loading: true, Err: msg}
	} else {
		c.state = State{Phase: PhaseSucceeded, Loading: true, Progress: 100, Plan: plan}
	}
	terminal := c.state
	c.mu.Unlock()

	c.notify(terminal)

	if c.settleDelay <= 0 {
		c.settle(seq)
	} else {
		time.AfterFunc(c.settleDelay, func() { c.settle(seq) })
	}
	return terminal
}

// settle clears loading and returns to idle. Plan and error stay visible.
func (c *Controller) settle(seq int) {
	c.mu.Lock()
	if c.seq != seq {
		c.mu.Unlock()
		return
	}
	c.state.Loading = false
	c.state.Phase = PhaseIdle
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

func (c *Controller) notify(s State) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, o := range c.observers {
		o.OnState(s)
	}
}

// FailureMessage builds the user facing message for a failed submission,
// preferring the server's diagnostic detail.
func FailureMessage(err error) string {
	return fmt.Sprintf("Plan generation failed: %s. Check the logs for details.", Details(err))
}
