package datastore

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Attributes holds opaque caller-supplied key/value data stored as jsonb.
type Attributes map[string]any

// Value implements driver.Valuer so Attributes can be bound as a jsonb
// parameter. lib/pq encodes []byte as bytea, so the JSON goes out as text.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(a))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb columns.
func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported attributes type %T", src)
	}

	m := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	}
	*a = m
	return nil
}

// Clinic is a clinic row. ClinicCode is the case-insensitive business key.
type Clinic struct {
	ID          string     `json:"id,omitempty"`
	ClinicCode  string     `json:"clinic_code"`
	Name        string     `json:"name"`
	Address     string     `json:"address,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Attributes  Attributes `json:"attributes,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ClinicUpdate is a partial clinic update. Nil fields are left unchanged and
// Attributes are merged into the stored attributes key by key.
type ClinicUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Address     *string    `json:"address,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Attributes  Attributes `json:"attributes,omitempty"`
}

// Patient is a patient row. PatientID is an opaque caller-assigned identifier
// and is matched exactly.
type Patient struct {
	ID          string     `json:"id,omitempty"`
	PatientID   string     `json:"patient_id"`
	ClinicCode  string     `json:"clinic_code"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *string    `json:"date_of_birth,omitempty"` // Format: YYYY-MM-DD
	Email       string     `json:"email,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Attributes  Attributes `json:"attributes,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// PatientUpdate is a partial patient update.
type PatientUpdate struct {
	ClinicCode  *string    `json:"clinic_code,omitempty"`
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	DateOfBirth *string    `json:"date_of_birth,omitempty"`
	Email       *string    `json:"email,omitempty"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Attributes  Attributes `json:"attributes,omitempty"`
}

// NormalizeClinicCode returns the canonical (upper-case) form of a clinic code.
func NormalizeClinicCode(code string) string {
	return strings.ToUpper(code)
}
