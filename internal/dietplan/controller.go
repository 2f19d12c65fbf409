package dietplan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FailureMessage is the only error text a user ever sees.
const FailureMessage = "An error occurred. Please try again."

var (
	// ErrFormLocked is returned by UpdateField while the form is not shown.
	ErrFormLocked = errors.New("form is not editable in the current state")

	// ErrNotIdle is returned by Submit and Start when a submission is running
	// or a response is on screen.
	ErrNotIdle = errors.New("a plan has already been requested")

	// ErrNoResponse is returned by Reset when there is nothing to restart from.
	ErrNoResponse = errors.New("no plan to reset")
)

// Phase tags the submission state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the submission state. Response is set only when Completed,
// Message only when Failed.
type State struct {
	Phase    Phase  `json:"phase"`
	Response string `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Generator produces the model's reply to a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder observes finished submissions.
type Recorder interface {
	ObserveSubmission(outcome Phase, elapsed time.Duration)
}

// Snapshot is a consistent copy of the controller for rendering.
type Snapshot struct {
	Inputs FormInputs `json:"inputs"`
	State  State      `json:"state"`
}

// Plan returns the rendered plan when the snapshot holds a non-empty response.
func (s Snapshot) Plan() (Plan, bool) {
	if s.State.Phase != Completed {
		return Plan{}, false
	}
	return ParsePlan(s.State.Response)
}

// Controller owns one form instance: its inputs, the single in-flight
// request, and the resulting state. It is safe for concurrent use.
type Controller struct {
	generator Generator
	timeout   time.Duration
	recorder  Recorder
	onChange  func(State)
	log       zerolog.Logger

	// life is cancelled by Close and bounds every request.
	life   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	inputs FormInputs
	state  State
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithTimeout bounds each outbound request. Zero means no bound beyond the
// controller's lifetime.
func WithTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.timeout = d }
}

// WithRecorder reports every finished submission to r.
func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) { c.recorder = r }
}

// WithOnChange registers fn to run after every state transition.
// fn is called without the controller lock held.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// NewController returns an Idle controller with default inputs.
func NewController(gen Generator, opts ...ControllerOption) *Controller {
	life, cancel := context.WithCancel(context.Background())
	c := &Controller{
		generator: gen,
		log:       zerolog.Nop(),
		life:      life,
		cancel:    cancel,
		inputs:    DefaultInputs(),
		state:     State{Phase: Idle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current inputs and state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Inputs: c.inputs, State: c.state}
}

// UpdateField replaces one input and leaves the others untouched.
func (c *Controller) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != Idle {
		return ErrFormLocked
	}
	next, err := c.inputs.With(name, value)
	if err != nil {
		return err
	}
	c.inputs = next
	return nil
}

// Submit requests a plan for the current inputs and blocks until the request
// finishes. The request ends early if ctx is done or the controller is closed;
// either way the controller lands in Completed or Failed.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	prompt, err := c.begin()
	if err != nil {
		return c.Snapshot().State, err
	}
	return c.run(ctx, prompt), nil
}

// Start is Submit without waiting: it returns once the controller is Loading
// and finishes the request in the background.
func (c *Controller) Start() error {
	prompt, err := c.begin()
	if err != nil {
		return err
	}
	go c.run(context.Background(), prompt)
	return nil
}

// Reset restores the default inputs and returns to Idle. It is only allowed
// once a response (or failure) is on screen.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state.Phase != Completed && c.state.Phase != Failed {
		c.mu.Unlock()
		return ErrNoResponse
	}
	c.inputs = DefaultInputs()
	c.state = State{Phase: Idle}
	c.mu.Unlock()

	c.notify(State{Phase: Idle})
	return nil
}

// Close cancels any in-flight request. The controller stays readable.
func (c *Controller) Close() {
	c.cancel()
}

// begin moves Idle to Loading and captures the prompt for the inputs current
// at this moment.
func (c *Controller) begin() (string, error) {
	c.mu.Lock()
	if c.state.Phase != Idle {
		c.mu.Unlock()
		return "", ErrNotIdle
	}
	c.state = State{Phase: Loading}
	prompt := BuildPrompt(c.inputs)
	c.mu.Unlock()

	c.log.Info().Msg("Requesting diet plan")
	c.notify(State{Phase: Loading})
	return prompt, nil
}

func (c *Controller) run(ctx context.Context, prompt string) State {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()

	if c.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.timeout)
		defer cancelTimeout()
	}

	start := time.Now()
	content, err := c.generator.Generate(ctx, prompt)
	elapsed := time.Since(start)

	next := State{Phase: Completed, Response: content}
	if err != nil {
		c.log.Error().Err(err).Dur("elapsed", elapsed).Msg("Diet plan request failed")
		next = State{Phase: Failed, Message: FailureMessage}
	} else {
		c.log.Info().Dur("elapsed", elapsed).Int("response_chars", len(content)).Msg("Diet plan received")
	}

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.ObserveSubmission(next.Phase, elapsed)
	}
	c.notify(next)
	return next
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
