package datastore

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/messaging"
)

// Checked is the result-returning view of a Store. Every method performs at
// most one backend call and never panics.
type Checked struct {
	store *Store
}

func nilClinic() *Clinic   { return nil }
func nilPatient() *Patient { return nil }

func emptyClinics() map[string]Clinic { return map[string]Clinic{} }
func emptyPatients() []Patient        { return []Patient{} }

// present turns a (nil, nil) backend answer into ErrNotFound.
func present[T any](v *T, err error) (*T, error) {
	if err == nil && v == nil {
		return nil, ErrNotFound
	}
	return v, err
}

// GetClinicByCode looks up a clinic by its upper-cased code.
func (c *Checked) GetClinicByCode(ctx context.Context, code string) Result[*Clinic] {
	code = NormalizeClinicCode(code)
	return execute(ctx, c.store, entityClinic, "GetClinicByCode", nilClinic,
		func(ctx context.Context) (*Clinic, error) {
			return present(c.store.backend.GetClinicByCode(ctx, code))
		})
}

// GetAllClinics returns every clinic keyed by code. When the backend returns
// the same code twice the last row wins.
func (c *Checked) GetAllClinics(ctx context.Context) Result[map[string]Clinic] {
	return execute(ctx, c.store, entityClinic, "GetAllClinics", emptyClinics,
		func(ctx context.Context) (map[string]Clinic, error) {
			rows, err := c.store.backend.ListClinics(ctx)
			if err != nil {
				return nil, err
			}
			byCode := make(map[string]Clinic, len(rows))
			for _, clinic := range rows {
				byCode[clinic.ClinicCode] = clinic
			}
			return byCode, nil
		})
}

// CreateClinic inserts a clinic and returns the stored row.
func (c *Checked) CreateClinic(ctx context.Context, clinic Clinic) Result[*Clinic] {
	clinic.ClinicCode = NormalizeClinicCode(clinic.ClinicCode)
	res := execute(ctx, c.store, entityClinic, "CreateClinic", nilClinic,
		func(ctx context.Context) (*Clinic, error) {
			return present(c.store.backend.CreateClinic(ctx, clinic))
		})
	if res.OK() {
		c.store.publish(ctx, messaging.EventClinicCreated, clinicEvent(messaging.EventClinicCreated, res.Value))
	}
	return res
}

// UpdateClinic applies a partial update to the clinic with the given code.
func (c *Checked) UpdateClinic(ctx context.Context, code string, updates ClinicUpdate) Result[*Clinic] {
	code = NormalizeClinicCode(code)
	res := execute(ctx, c.store, entityClinic, "UpdateClinic", nilClinic,
		func(ctx context.Context) (*Clinic, error) {
			return present(c.store.backend.UpdateClinic(ctx, code, updates))
		})
	if res.OK() {
		c.store.publish(ctx, messaging.EventClinicUpdated, clinicEvent(messaging.EventClinicUpdated, res.Value))
	}
	return res
}

// GetPatientByID looks up a patient by its exact identifier.
func (c *Checked) GetPatientByID(ctx context.Context, id string) Result[*Patient] {
	return execute(ctx, c.store, entityPatient, "GetPatientByID", nilPatient,
		func(ctx context.Context) (*Patient, error) {
			return present(c.store.backend.GetPatientByID(ctx, id))
		})
}

// GetPatientsByClinicCode lists the patients of a clinic in backend order.
// The slice is never nil.
func (c *Checked) GetPatientsByClinicCode(ctx context.Context, code string) Result[[]Patient] {
	code = NormalizeClinicCode(code)
	return execute(ctx, c.store, entityPatient, "GetPatientsByClinicCode", emptyPatients,
		func(ctx context.Context) ([]Patient, error) {
			patients, err := c.store.backend.ListPatientsByClinicCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if patients == nil {
				patients = emptyPatients()
			}
			return patients, nil
		})
}

// CreatePatient inserts a patient and returns the stored row.
func (c *Checked) CreatePatient(ctx context.Context, patient Patient) Result[*Patient] {
	patient.ClinicCode = NormalizeClinicCode(patient.ClinicCode)
	res := execute(ctx, c.store, entityPatient, "CreatePatient", nilPatient,
		func(ctx context.Context) (*Patient, error) {
			return present(c.store.backend.CreatePatient(ctx, patient))
		})
	if res.OK() {
		c.store.publish(ctx, messaging.EventPatientCreated, patientEvent(messaging.EventPatientCreated, res.Value))
	}
	return res
}

// UpdatePatient applies a partial update to the patient with the given id.
func (c *Checked) UpdatePatient(ctx context.Context, id string, updates PatientUpdate) Result[*Patient] {
	if updates.ClinicCode != nil {
		code := NormalizeClinicCode(*updates.ClinicCode)
		updates.ClinicCode = &code
	}
	res := execute(ctx, c.store, entityPatient, "UpdatePatient", nilPatient,
		func(ctx context.Context) (*Patient, error) {
			return present(c.store.backend.UpdatePatient(ctx, id, updates))
		})
	if res.OK() {
		c.store.publish(ctx, messaging.EventPatientUpdated, patientEvent(messaging.EventPatientUpdated, res.Value))
	}
	return res
}

func clinicEvent(eventType string, clinic *Clinic) messaging.ClinicEvent {
	changedAt := clinic.CreatedAt
	if clinic.UpdatedAt != nil {
		changedAt = *clinic.UpdatedAt
	}
	return messaging.NewClinicEvent(eventType, messaging.ClinicEventData{
		ID:         clinic.ID,
		ClinicCode: clinic.ClinicCode,
		Name:       clinic.Name,
		ChangedAt:  changedAt,
	})
}

func patientEvent(eventType string, patient *Patient) messaging.PatientEvent {
	changedAt := patient.CreatedAt
	if patient.UpdatedAt != nil {
		changedAt = *patient.UpdatedAt
	}
	return messaging.NewPatientEvent(eventType, messaging.PatientEventData{
		ID:         patient.ID,
		PatientID:  patient.PatientID,
		ClinicCode: patient.ClinicCode,
		FirstName:  patient.FirstName,
		LastName:   patient.LastName,
		ChangedAt:  changedAt,
	})
}
