package client

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-diet-planner/internal/mealplan"
)

type fakeSubmitter struct {
	mu     sync.Mutex
	calls  int
	plan   mealplan.MealPlan
	err    error
	during func()
}

func (f *fakeSubmitter) Submit(ctx context.Context, c mealplan.Constraints) (mealplan.MealPlan, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.during != nil {
		f.during()
	}
	return f.plan, f.err
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) OnState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) Phases() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Phase
	for _, s := range r.states {
		if len(out) == 0 || out[len(out)-1] != s.Phase {
			out = append(out, s.Phase)
		}
	}
	return out
}

func (r *stateRecorder) MaxSubmittingProgress() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, s := range r.states {
		if s.Phase == PhaseSubmitting && s.Progress > max {
			max = s.Progress
		}
	}
	return max
}

func onePlan() mealplan.MealPlan {
	return mealplan.MealPlan{{Day: 1, Meals: []mealplan.Meal{{MealType: "Lunch", DishName: "Thali"}}, DailyTotalCostApprox: 120}}
}

func newTestController(sub Submitter, rec *stateRecorder, opts ...Option) *Controller {
	base := []Option{
		WithTickInterval(time.Millisecond),
		WithSettleDelay(0),
		WithRand(rand.New(rand.NewSource(1))),
		WithObserver(rec),
	}
	return NewController(sub, append(base, opts...)...)
}

func TestController_DefaultDraft(t *testing.T) {
	c := NewController(&fakeSubmitter{})
	assert.Equal(t, mealplan.DefaultConstraints(), c.Draft())
	assert.Equal(t, PhaseIdle, c.State().Phase)
}

func TestController_InvalidNumbersNeverCallsNetwork(t *testing.T) {
	sub := &fakeSubmitter{plan: onePlan()}
	rec := &stateRecorder{}
	c := newTestController(sub, rec, WithSettleDelay(time.Hour))

	require.NoError(t, c.Update(func(d *mealplan.Constraints) { d.CalorieTarget = 0 }))

	s, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, MsgInvalidNumbers, s.Err)
	assert.Equal(t, 0, s.Progress)
	assert.Zero(t, sub.Calls())
	assert.Equal(t, []Phase{PhaseSubmitting, PhaseFailed}, rec.Phases())
}

func TestController_Success(t *testing.T) {
	rec := &stateRecorder{}
	sub := &fakeSubmitter{plan: onePlan()}
	sub.during = func() {
		// the pending state is published before the call starts
		require.NotEmpty(t, rec.Phases())
		assert.Equal(t, PhaseSubmitting, rec.Phases()[0])
	}
	c := newTestController(sub, rec)

	s, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PhaseSucceeded, s.Phase)
	assert.Equal(t, 100, s.Progress)
	assert.Equal(t, onePlan(), s.Plan)
	assert.Equal(t, 1, sub.Calls())

	final := c.State()
	assert.Equal(t, PhaseIdle, final.Phase)
	assert.False(t, final.Loading)
	assert.Equal(t, onePlan(), final.Plan, "plan stays visible after settling")
	assert.Equal(t, []Phase{PhaseSubmitting, PhaseSucceeded, PhaseIdle}, rec.Phases())
}

func TestController_FailureUsesServerDetails(t *testing.T) {
	rec := &stateRecorder{}
	sub := &fakeSubmitter{err: &APIError{
		StatusCode: 500,
		Message:    "Failed to generate meal plan from AI.",
		Details:    "unexpected end of JSON input",
	}}
	c := newTestController(sub, rec)

	s, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, "Plan generation failed: unexpected end of JSON input. Check the logs for details.", s.Err)
	assert.Nil(t, s.Plan)
}

func TestController_FailureFallsBackToTransportError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("dial tcp 127.0.0.1:3001: connect: connection refused")}
	c := newTestController(sub, &stateRecorder{})

	s, _ := c.Submit(context.Background())
	assert.Equal(t, "Plan generation failed: dial tcp 127.0.0.1:3001: connect: connection refused. Check the logs for details.", s.Err)
}

func TestController_ProgressCapsAtNinety(t *testing.T) {
	rec := &stateRecorder{}
	sub := &fakeSubmitter{plan: onePlan()}
	var c *Controller
	sub.during = func() {
		require.Eventually(t, func() bool { return c.State().Progress == progressCeiling }, 5*time.Second, time.Millisecond)
		// a few more ticks must not move it
		time.Sleep(10 * time.Millisecond)
	}
	c = newTestController(sub, rec)

	s, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, s.Progress)
	assert.Equal(t, progressCeiling, rec.MaxSubmittingProgress())

	// increments stay within [1,6]
	prev := 0
	for _, st := range rec.states {
		if st.Phase != PhaseSubmitting {
			continue
		}
		assert.LessOrEqual(t, st.Progress-prev, 6)
		prev = st.Progress
	}
}

func TestController_BusyWhileLoading(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	sub := &fakeSubmitter{plan: onePlan(), during: func() {
		close(entered)
		<-release
	}}
	c := newTestController(sub, &stateRecorder{}, WithTickInterval(time.Hour))

	done := make(chan State)
	go func() {
		s, _ := c.Submit(context.Background())
		done <- s
	}()
	<-entered

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Update(func(d *mealplan.Constraints) { d.DailyBudget = 1 }), ErrBusy)
	assert.Equal(t, mealplan.Number(300), c.Draft().DailyBudget)

	close(release)
	s := <-done
	assert.Equal(t, PhaseSucceeded, s.Phase)
	assert.Equal(t, 1, sub.Calls())
}

func TestController_SettleDelay(t *testing.T) {
	c := newTestController(&fakeSubmitter{plan: onePlan()}, &stateRecorder{}, WithSettleDelay(20*time.Millisecond))

	s, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Loading)
	assert.True(t, c.State().Loading)

	assert.Eventually(t, func() bool {
		st := c.State()
		return st.Phase == PhaseIdle && !st.Loading
	}, time.Second, 5*time.Millisecond)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressPrinter(&buf, false)

	p.OnState(State{Phase: PhaseSubmitting, Progress: 0})
	p.OnState(State{Phase: PhaseSubmitting, Progress: 4})
	p.OnState(State{Phase: PhaseSubmitting, Progress: 12})
	p.OnState(State{Phase: PhaseFailed, Err: "boom"})

	out := buf.String()
	assert.Contains(t, out, "Generating Plan... (0%)")
	assert.NotContains(t, out, "(4%)")
	assert.Contains(t, out, "Generating Plan... (12%)")
	assert.Contains(t, out, "Error: boom\n")
}
