package appointment

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrSlotTaken = errors.New("slot already taken")
	ErrNotFound  = errors.New("appointment not found")
)

var validate = validator.New()

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Occupies reports whether an appointment in this status holds its slot.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

const (
	ServiceIndividual = "individual"
	ServiceCouple     = "couple"
	ServiceOnline     = "online"
)

var serviceTypes = []string{ServiceIndividual, ServiceCouple, ServiceOnline}

func IsServiceType(s string) bool {
	return slices.Contains(serviceTypes, s)
}

const DefaultDurationMinutes = 60

// MaxNotesLength bounds both patient booking notes and the provider's own.
const MaxNotesLength = 2000

func ValidateNotes(notes string) error {
	if err := validate.Var(notes, "max=2000"); err != nil {
		return fmt.Errorf("notes must be at most %d characters", MaxNotesLength)
	}
	return nil
}

// Patient identifies who booked. PatientID is set for registered patients;
// guests are identified by name and email only.
type Patient struct {
	ID    *uuid.UUID `json:"patient_id,omitempty"`
	Name  string     `json:"name" validate:"required,max=200"`
	Email string     `json:"email" validate:"required,email,max=254"`
	Phone string     `json:"phone,omitempty" validate:"omitempty,max=40"`
}

func (p *Patient) Validate() error {
	if err := validate.Struct(p); err != nil {
		return describe(err)
	}
	return nil
}

type Appointment struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	GuestName       string     `json:"guest_name"`
	GuestEmail      string     `json:"guest_email"`
	GuestPhone      string     `json:"guest_phone,omitempty"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          Status     `json:"status"`
	Type            string     `json:"type"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (a *Appointment) Validate() error {
	if a.ScheduledAt.IsZero() {
		return errors.New("scheduled time is required")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	if !IsServiceType(a.Type) {
		return fmt.Errorf("unknown service type %q", a.Type)
	}
	if a.DurationMinutes <= 0 {
		return errors.New("duration minutes must be greater than 0")
	}
	if err := ValidateNotes(a.Notes); err != nil {
		return err
	}
	patient := Patient{ID: a.PatientID, Name: a.GuestName, Email: a.GuestEmail, Phone: a.GuestPhone}
	return patient.Validate()
}

// describe turns the first validator failure into a readable message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fieldName(fe.Field()))
	case "email":
		return fmt.Errorf("%s is not a valid email address", fieldName(fe.Field()))
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fieldName(fe.Field()), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fieldName(fe.Field()))
	}
}

func fieldName(field string) string {
	switch field {
	case "Name":
		return "name"
	case "Email":
		return "email"
	case "Phone":
		return "phone"
	default:
		return field
	}
}
