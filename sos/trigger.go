package sos

import (
	"context"
	"errors"
	"fmt"

	"github.com/Daskott/swiftly/client"
	"github.com/Daskott/swiftly/location"
	"github.com/Daskott/swiftly/profile"
	"github.com/Daskott/swiftly/shared"
)

const (
	DEFAULT_EMERGENCY_TYPE = "Send an ambulance"

	MSG_HELP_ON_THE_WAY = "Help is on the way!"
	MSG_SEND_FAILED     = "Failed to send alert"
	MSG_NO_PROFILE      = "User data not found"
	MSG_NO_PERMISSION   = "Location permission not granted"
	MSG_NO_LOCATION     = "Unable to get location"
	MSG_NO_CONTACTS     = "No emergency contacts registered"
	MSG_ERROR_PREFIX    = "Error: "
)

var (
	ErrNoProfile  = errors.New("no profile registered")
	ErrNoLocation = errors.New("location could not be determined")
	ErrNoContacts = errors.New("profile has no contact numbers")
	ErrRejected   = errors.New("alert was rejected by the dispatch service")
	ErrTransport  = errors.New("alert could not reach the dispatch service")
)

// ProfileLoader is satisfied by *profile.Store
type ProfileLoader interface {
	Load() (*profile.Profile, error)
}

// Sender is satisfied by *client.Client
type Sender interface {
	SendAlert(ctx context.Context, req shared.AlertRequest) (*shared.AlertResponse, error)
}

// Outcome is what the user is told once an alert attempt settles.
type Outcome struct {
	Message  string
	Request  *shared.AlertRequest
	Response *shared.AlertResponse
}

// Task is an in-flight alert attempt started by Trigger.Fire.
type Task struct {
	done    chan struct{}
	outcome *Outcome
	err     error
}

// Done is closed once the attempt has settled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the attempt settles. The Outcome is never nil, even on error,
// so its Message can always be shown to the user.
func (t *Task) Wait() (*Outcome, error) {
	<-t.done
	return t.outcome, t.err
}

type Option func(t *Trigger)

func WithEmergencyType(emergencyType string) Option {
	return func(t *Trigger) {
		if emergencyType != "" {
			t.emergencyType = emergencyType
		}
	}
}

// Trigger turns a confirmed SOS into an alert request & sends it.
type Trigger struct {
	profiles      ProfileLoader
	location      location.Provider
	sender        Sender
	emergencyType string
}

func NewTrigger(profiles ProfileLoader, provider location.Provider, sender Sender, opts ...Option) *Trigger {
	t := &Trigger{
		profiles:      profiles,
		location:      provider,
		sender:        sender,
		emergencyType: DEFAULT_EMERGENCY_TYPE,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Fire starts an alert attempt in the background. Cancelling ctx abandons it.
func (t *Trigger) Fire(ctx context.Context) *Task {
	task := &Task{done: make(chan struct{})}

	go func() {
		defer close(task.done)
		task.outcome, task.err = t.run(ctx)
	}()

	return task
}

func (t *Trigger) run(ctx context.Context) (*Outcome, error) {
	p, err := t.profiles.Load()
	if errors.Is(err, profile.ErrProfileNotFound) {
		return &Outcome{Message: MSG_NO_PROFILE}, ErrNoProfile
	}

	if err != nil {
		return &Outcome{Message: MSG_ERROR_PREFIX + err.Error()}, fmt.Errorf("%w: %v", ErrNoProfile, err)
	}

	numbers := p.ContactNumbers()
	if len(numbers) == 0 {
		return &Outcome{Message: MSG_NO_CONTACTS}, ErrNoContacts
	}

	coordinates, err := t.location.Current(ctx)
	if errors.Is(err, location.ErrPermissionDenied) {
		return &Outcome{Message: MSG_NO_PERMISSION}, fmt.Errorf("%w: %v", ErrNoLocation, err)
	}

	if err != nil {
		return &Outcome{Message: MSG_NO_LOCATION}, fmt.Errorf("%w: %v", ErrNoLocation, err)
	}

	req := BuildRequest(p, coordinates, t.emergencyType)

	resp, err := t.sender.SendAlert(ctx, req)
	var requestErr *client.RequestError
	if errors.As(err, &requestErr) {
		return &Outcome{Message: MSG_SEND_FAILED, Request: &req}, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	if err != nil {
		return &Outcome{Message: MSG_ERROR_PREFIX + err.Error(), Request: &req}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return &Outcome{Message: MSG_HELP_ON_THE_WAY, Request: &req, Response: resp}, nil
}

// BuildRequest assembles the alert payload from the stored profile & current position.
func BuildRequest(p *profile.Profile, coordinates location.Coordinates, emergencyType string) shared.AlertRequest {
	return shared.AlertRequest{
		Name:          p.FirstName,
		Surname:       p.LastName,
		Coordinates:   coordinates.String(),
		CallMeAt:      p.CallbackNumber,
		EmergencyType: emergencyType,
		Contacts:      p.ContactNumbers(),
	}
}
