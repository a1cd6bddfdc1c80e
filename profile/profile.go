package profile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Daskott/swiftly/shared"
	"github.com/Daskott/swiftly/utils"
	"github.com/go-playground/validator"
)

const DEFAULT_FILE_NAME = "user_data.txt"

var (
	ErrProfileNotFound = errors.New("user data not found")
	ErrPrimaryContact  = errors.New("the first emergency contact cannot be removed")
	ErrContactIndex    = errors.New("contact index out of range")

	validate = shared.NewValidator()
)

type Contact struct {
	Name   string `validate:"notblank"`
	Mobile string `validate:"notblank"`
}

// Profile is the locally stored personal & emergency contact record of the device owner.
type Profile struct {
	FirstName      string    `validate:"notblank"`
	LastName       string    `validate:"notblank"`
	CallbackNumber string    `validate:"notblank"`
	Contacts       []Contact `validate:"required,min=1,dive"`
}

// Validate applies the registration rules: personal details are required, there is at
// least one emergency contact & no contact field is blank.
func (p *Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	fieldErr := validationErrs[0]
	switch {
	case fieldErr.StructField() == "Contacts":
		return fmt.Errorf("please add at least one contact")
	case strings.HasPrefix(fieldErr.Namespace(), "Profile.Contacts["):
		return fmt.Errorf("no contact field can be blank")
	default:
		return fmt.Errorf("please fill in all personal details")
	}
}

func (p *Profile) AddContact(name, mobile string) {
	p.Contacts = append(p.Contacts, Contact{Name: name, Mobile: mobile})
}

// RemoveContact removes the contact at index i. The first contact is never removable.
func (p *Profile) RemoveContact(i int) error {
	if i < 0 || i >= len(p.Contacts) {
		return ErrContactIndex
	}

	if i == 0 {
		return ErrPrimaryContact
	}

	p.Contacts = append(p.Contacts[:i], p.Contacts[i+1:]...)
	return nil
}

// ContactNumbers returns the contact mobiles in order, skipping blank ones.
func (p *Profile) ContactNumbers() []string {
	numbers := []string{}
	for _, contact := range p.Contacts {
		mobile := strings.TrimSpace(contact.Mobile)
		if mobile != "" {
			numbers = append(numbers, mobile)
		}
	}

	return numbers
}

// Store reads & writes a profile as a single comma-delimited record:
// firstName,lastName,callbackNumber,name1,mobile1,name2,mobile2,...
// Fields are csv quoted when needed, so names containing commas survive a round trip.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the stored profile, or returns ErrProfileNotFound if nothing has been saved.
func (s *Store) Load() (*Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrProfileNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("Load: %v", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrProfileNotFound
	}

	return Decode(data)
}

// Save validates p & overwrites the stored record with it.
func (s *Store) Save(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := Encode(p)
	if err != nil {
		return err
	}

	return utils.WriteFileAtomic(s.path, data, 0600)
}

func Encode(p *Profile) ([]byte, error) {
	record := []string{p.FirstName, p.LastName, p.CallbackNumber}
	for _, contact := range p.Contacts {
		record = append(record, contact.Name, contact.Mobile)
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(record); err != nil {
		return nil, fmt.Errorf("Encode: %v", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("Encode: %v", err)
	}

	// Keep the record a single line with no trailing newline
	return bytes.TrimRight(buf.Bytes(), "\r\n"), nil
}

func Decode(data []byte) (*Profile, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	// Legacy records were written without any quoting
	r.LazyQuotes = true

	record, err := r.Read()
	if err == io.EOF {
		return nil, ErrProfileNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("Decode: %v", err)
	}

	p := &Profile{
		FirstName:      field(record, 0),
		LastName:       field(record, 1),
		CallbackNumber: field(record, 2),
	}

	// A trailing name without a mobile still yields a contact with a blank mobile
	for i := 3; i < len(record); i += 2 {
		p.Contacts = append(p.Contacts, Contact{Name: field(record, i), Mobile: field(record, i+1)})
	}

	return p, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}

	return record[i]
}
