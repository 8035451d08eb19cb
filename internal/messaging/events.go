package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys
const (
	EventClinicCreated  = "clinic.created"
	EventClinicUpdated  = "clinic.updated"
	EventPatientCreated = "patient.created"
	EventPatientUpdated = "patient.updated"
)

// ServiceName identifies this service in published events.
const ServiceName = "clinic-datastore"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// ID is used as the AMQP message id.
func (e BaseEvent) ID() string {
	return e.EventID
}

// ClinicEvent is published when a clinic row is created or updated.
type ClinicEvent struct {
	BaseEvent
	Data ClinicEventData `json:"data"`
}

type ClinicEventData struct {
	ID         string    `json:"id"`
	ClinicCode string    `json:"clinic_code"`
	Name       string    `json:"name"`
	ChangedAt  time.Time `json:"changed_at"`
}

// PatientEvent is published when a patient row is created or updated.
type PatientEvent struct {
	BaseEvent
	Data PatientEventData `json:"data"`
}

type PatientEventData struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	ClinicCode string    `json:"clinic_code"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	ChangedAt  time.Time `json:"changed_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
	}
}

func NewClinicEvent(eventType string, data ClinicEventData) ClinicEvent {
	return ClinicEvent{BaseEvent: NewBaseEvent(eventType), Data: data}
}

func NewPatientEvent(eventType string, data PatientEventData) PatientEvent {
	return PatientEvent{BaseEvent: NewBaseEvent(eventType), Data: data}
}
