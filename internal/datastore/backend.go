package datastore

import "context"

// Backend is the contract for the remote calls behind the Store. Keys reach
// the backend already normalized; implementations translate them directly
// into a single query each.
type Backend interface {
	GetClinicByCode(ctx context.Context, code string) (*Clinic, error)
	ListClinics(ctx context.Context) ([]Clinic, error)
	CreateClinic(ctx context.Context, clinic Clinic) (*Clinic, error)
	UpdateClinic(ctx context.Context, code string, updates ClinicUpdate) (*Clinic, error)
	GetPatientByID(ctx context.Context, id string) (*Patient, error)
	ListPatientsByClinicCode(ctx context.Context, code string) ([]Patient, error)
	CreatePatient(ctx context.Context, patient Patient) (*Patient, error)
	UpdatePatient(ctx context.Context, id string, updates PatientUpdate) (*Patient, error)
}

// Ensure implementations satisfy Backend
var (
	_ Backend = (*Repository)(nil)
	_ Backend = disabledBackend{}
)

// disabledBackend stands in for the remote backend when bootstrap could not
// produce a connection. Every call reports ErrUnavailable.
type disabledBackend struct{}

func (disabledBackend) GetClinicByCode(context.Context, string) (*Clinic, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) ListClinics(context.Context) ([]Clinic, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) CreateClinic(context.Context, Clinic) (*Clinic, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) UpdateClinic(context.Context, string, ClinicUpdate) (*Clinic, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) GetPatientByID(context.Context, string) (*Patient, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) ListPatientsByClinicCode(context.Context, string) ([]Patient, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) CreatePatient(context.Context, Patient) (*Patient, error) {
	return nil, ErrUnavailable
}

func (disabledBackend) UpdatePatient(context.Context, string, PatientUpdate) (*Patient, error) {
	return nil, ErrUnavailable
}
