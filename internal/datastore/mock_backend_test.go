package datastore

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockBackend is a function-field Backend that counts every call.
type mockBackend struct {
	calls atomic.Int32

	getClinicByCodeFunc          func(ctx context.Context, code string) (*Clinic, error)
	listClinicsFunc              func(ctx context.Context) ([]Clinic, error)
	createClinicFunc             func(ctx context.Context, clinic Clinic) (*Clinic, error)
	updateClinicFunc             func(ctx context.Context, code string, updates ClinicUpdate) (*Clinic, error)
	getPatientByIDFunc           func(ctx context.Context, id string) (*Patient, error)
	listPatientsByClinicCodeFunc func(ctx context.Context, code string) ([]Patient, error)
	createPatientFunc            func(ctx context.Context, patient Patient) (*Patient, error)
	updatePatientFunc            func(ctx context.Context, id string, updates PatientUpdate) (*Patient, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockBackend) GetClinicByCode(ctx context.Context, code string) (*Clinic, error) {
	m.calls.Add(1)
	if m.getClinicByCodeFunc != nil {
		return m.getClinicByCodeFunc(ctx, code)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) ListClinics(ctx context.Context) ([]Clinic, error) {
	m.calls.Add(1)
	if m.listClinicsFunc != nil {
		return m.listClinicsFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) CreateClinic(ctx context.Context, clinic Clinic) (*Clinic, error) {
	m.calls.Add(1)
	if m.createClinicFunc != nil {
		return m.createClinicFunc(ctx, clinic)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) UpdateClinic(ctx context.Context, code string, updates ClinicUpdate) (*Clinic, error) {
	m.calls.Add(1)
	if m.updateClinicFunc != nil {
		return m.updateClinicFunc(ctx, code, updates)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) GetPatientByID(ctx context.Context, id string) (*Patient, error) {
	m.calls.Add(1)
	if m.getPatientByIDFunc != nil {
		return m.getPatientByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) ListPatientsByClinicCode(ctx context.Context, code string) ([]Patient, error) {
	m.calls.Add(1)
	if m.listPatientsByClinicCodeFunc != nil {
		return m.listPatientsByClinicCodeFunc(ctx, code)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) CreatePatient(ctx context.Context, patient Patient) (*Patient, error) {
	m.calls.Add(1)
	if m.createPatientFunc != nil {
		return m.createPatientFunc(ctx, patient)
	}
	return nil, errNotImplemented
}

func (m *mockBackend) UpdatePatient(ctx context.Context, id string, updates PatientUpdate) (*Patient, error) {
	m.calls.Add(1)
	if m.updatePatientFunc != nil {
		return m.updatePatientFunc(ctx, id, updates)
	}
	return nil, errNotImplemented
}

// mockRecorder captures recorded operation statuses.
type mockRecorder struct {
	statuses []string
}

func (r *mockRecorder) RecordDatastoreOperation(_ context.Context, entity, operation, status string, _ float64) {
	r.statuses = append(r.statuses, entity+"."+operation+":"+status)
}

// panicRecorder fails every observation by panicking.
type panicRecorder struct{}

func (panicRecorder) RecordDatastoreOperation(context.Context, string, string, string, float64) {
	panic("recorder boom")
}

// panicPublisher fails every publish by panicking.
type panicPublisher struct{}

func (panicPublisher) Publish(context.Context, string, any) error { panic("publisher boom") }
func (panicPublisher) Close() error                               { return nil }
