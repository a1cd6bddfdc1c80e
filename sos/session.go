package sos

import (
	"context"
	"sync"

	"github.com/Daskott/swiftly/countdown"
)

// Session binds an SOS button (the countdown controller) to a Trigger. When a countdown
// is confirmed the alert is fired; if the alert fails the controller goes back to Idle
// so the user can try again.
type Session struct {
	ctx            context.Context
	trigger        *Trigger
	controller     *countdown.Controller
	controllerOpts []countdown.Option
	onOutcome      func(*Outcome, error)

	mu    sync.Mutex
	tasks []*Task
}

type SessionOption func(s *Session)

// OnOutcome registers fn to be called once each alert attempt settles.
func OnOutcome(fn func(*Outcome, error)) SessionOption {
	return func(s *Session) {
		s.onOutcome = fn
	}
}

// OnCountdownTick is forwarded to the countdown controller.
func OnCountdownTick(fn func(remaining int)) SessionOption {
	return func(s *Session) {
		s.controllerOpts = append(s.controllerOpts, countdown.OnTick(fn))
	}
}

// WithCountdown passes options through to the countdown controller.
func WithCountdown(opts ...countdown.Option) SessionOption {
	return func(s *Session) {
		s.controllerOpts = append(s.controllerOpts, opts...)
	}
}

func NewSession(ctx context.Context, trigger *Trigger, opts ...SessionOption) *Session {
	s := &Session{ctx: ctx, trigger: trigger}
	for _, opt := range opts {
		opt(s)
	}

	controllerOpts := append(s.controllerOpts, countdown.OnConfirmed(s.confirmed))
	s.controller = countdown.New(controllerOpts...)
	s.controllerOpts = nil

	return s
}

// Press forwards a button press to the controller.
func (s *Session) Press() countdown.State {
	return s.controller.Press()
}

func (s *Session) State() countdown.State {
	return s.controller.State()
}

func (s *Session) Remaining() int {
	return s.controller.Remaining()
}

// Wait waits for every alert fired so far to settle.
func (s *Session) Wait() {
	s.mu.Lock()
	tasks := append([]*Task{}, s.tasks...)
	s.mu.Unlock()

	for _, task := range tasks {
		<-task.Done()
	}
}

// Close cancels a running countdown & waits for any alert in flight.
func (s *Session) Close() {
	s.controller.Stop()
	s.Wait()
}

func (s *Session) confirmed() {
	task := s.trigger.Fire(s.ctx)

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	outcome, err := task.Wait()
	if err != nil {
		s.controller.Reset()
	}

	if s.onOutcome != nil {
		s.onOutcome(outcome, err)
	}
}
