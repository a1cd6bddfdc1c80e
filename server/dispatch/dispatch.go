package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Daskott/swiftly/colors"
	"github.com/Daskott/swiftly/shared"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	SUCCESS_MESSAGE = "SOS sent successfully"
	MAPS_URL        = "https://maps.google.com/?q="
)

// Messages for the first failed validation rule, keyed by json field
var validationMessages = map[string]string{
	"name":          "Name and surname are required",
	"surname":       "Name and surname are required",
	"contacts":      "Contacts array is required",
	"coordinates":   "Coordinates string is required",
	"callMeAt":      "callMeAt is required as a string",
	"emergencyType": "emergencyType is required as a string",
}

// Gateway delivers a message to one phone number & returns the provider's message id.
type Gateway interface {
	SendMessage(ctx context.Context, to, body string) (string, error)
}

type AuditLog interface {
	Append(entry shared.LogEntry) error
}

// Policy bounds how many contacts are notified at once. The gateway is rate limited,
// so the default stays at one contact at a time.
type Policy struct {
	MaxConcurrency int
}

var SequentialPolicy = Policy{MaxConcurrency: 1}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Option func(s *Service)

func WithPolicy(policy Policy) Option {
	return func(s *Service) {
		if policy.MaxConcurrency > 0 {
			s.policy = policy
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logg *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.logg = logg
	}
}

type Service struct {
	gateway  Gateway
	audit    AuditLog
	policy   Policy
	now      func() time.Time
	logg     *zap.SugaredLogger
	validate *validator.Validate
}

func NewService(gateway Gateway, audit AuditLog, opts ...Option) *Service {
	s := &Service{
		gateway:  gateway,
		audit:    audit,
		policy:   SequentialPolicy,
		now:      time.Now,
		logg:     zap.NewNop().Sugar(),
		validate: shared.NewValidator(),
	}

	s.validate.RegisterTagNameFunc(jsonFieldName)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit validates req, relays the alert to every contact & records the attempt.
// Only a *ValidationError is ever returned; delivery & persistence failures are
// reported per contact or logged, never as a request level error.
func (s *Service) Submit(ctx context.Context, req shared.AlertRequest) (*shared.AlertResponse, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	// Once accepted, an alert goes out to every contact even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	contacts := make([]string, len(req.Contacts))
	for i, number := range req.Contacts {
		contacts[i] = strings.TrimSpace(number)
	}

	results := s.deliver(ctx, contacts, FormatMessage(req))

	entry := shared.LogEntry{
		Timestamp:   s.now().UTC(),
		Name:        req.Name,
		Surname:     req.Surname,
		Coordinates: req.Coordinates,
		Contacts:    contacts,
		Results:     results,
	}

	if s.audit != nil {
		if err := s.audit.Append(entry); err != nil {
			s.logg.Warnf(colors.Red("[dispatch] ")+"alert for %v %v was not written to the audit log: %v",
				req.Name, req.Surname, err)
		}
	}

	return &shared.AlertResponse{Message: SUCCESS_MESSAGE, Results: results}, nil
}

// Validate returns a *ValidationError for the first rule req breaks, in the order
// name & surname, contacts, coordinates, callMeAt, emergencyType.
func (s *Service) Validate(req shared.AlertRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	// Errors come back in struct field order, contact entries are reported as 'contacts'
	field := validationErrs[0].Field()
	if strings.HasPrefix(field, "contacts[") {
		field = "contacts"
	}

	message, ok := validationMessages[field]
	if !ok {
		message = fmt.Sprintf("%v is invalid", field)
	}

	return &ValidationError{Field: field, Message: message}
}

// deliver notifies each contact under the service policy. Results are positionally
// aligned with contacts & one failure never stops the others.
func (s *Service) deliver(ctx context.Context, contacts []string, body string) []shared.DispatchResult {
	results := make([]shared.DispatchResult, len(contacts))

	group := errgroup.Group{}
	group.SetLimit(s.policy.MaxConcurrency)

	for i, number := range contacts {
		i, number := i, number
		group.Go(func() error {
			results[i] = s.deliverOne(ctx, number, body)
			return nil
		})
	}
	group.Wait()

	return results
}

func (s *Service) deliverOne(ctx context.Context, number, body string) shared.DispatchResult {
	sid, err := s.gateway.SendMessage(ctx, number, body)
	if err == nil && sid == "" {
		err = fmt.Errorf("gateway returned no message id")
	}

	if err != nil {
		s.logg.Infof(colors.Yellow("[dispatch] ")+"delivery to %v failed: %v", number, err)
		return shared.DispatchResult{Number: number, Status: shared.FAILED_STATUS, Error: err.Error()}
	}

	return shared.DispatchResult{Number: number, Sid: sid, Status: shared.SENT_STATUS}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}

	return name
}

// FormatMessage renders the alert sent to every contact.
func FormatMessage(req shared.AlertRequest) string {
	return fmt.Sprintf("🚨 SOS ALERT 🚨\n"+
		"  Name: %v %v\n"+
		"  Emergency: %v\n"+
		"  Location: %v%v\n"+
		"  📞 Call me at: %v",
		req.Name, req.Surname, req.EmergencyType, MAPS_URL,
		strings.ReplaceAll(strings.TrimSpace(req.Coordinates), " ", ""), req.CallMeAt)
}
