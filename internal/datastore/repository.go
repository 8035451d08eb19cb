package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrMultipleRows is returned when a lookup that expects a single row matches more than one.
var ErrMultipleRows = errors.New("lookup matched more than one row")

const (
	clinicColumns  = "id, clinic_code, name, address, phone_number, attributes, created_at, updated_at"
	patientColumns = "id, patient_id, clinic_code, first_name, last_name, to_char(date_of_birth, 'YYYY-MM-DD') AS date_of_birth, email, phone_number, attributes, created_at, updated_at"
)

// Repository is the PostgreSQL-backed Backend.
type Repository struct {
	db     *sql.DB
	schema string
}

// NewRepository creates a repository over db. Tables are resolved inside
// schema, which defaults to "public".
func NewRepository(db *sql.DB, schema string) *Repository {
	if schema == "" {
		schema = "public"
	}
	return &Repository{db: db, schema: schema}
}

func (r *Repository) table(name string) string {
	return pq.QuoteIdentifier(r.schema) + "." + pq.QuoteIdentifier(name)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClinic(row rowScanner) (*Clinic, error) {
	var clinic Clinic
	var address sql.NullString
	var phoneNumber sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&clinic.ID,
		&clinic.ClinicCode,
		&clinic.Name,
		&address,
		&phoneNumber,
		&clinic.Attributes,
		&clinic.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if address.Valid {
		clinic.Address = address.String
	}
	if phoneNumber.Valid {
		clinic.PhoneNumber = phoneNumber.String
	}
	if updatedAt.Valid {
		clinic.UpdatedAt = &updatedAt.Time
	}

	return &clinic, nil
}

func scanPatient(row rowScanner) (*Patient, error) {
	var patient Patient
	var dob sql.NullString
	var email sql.NullString
	var phoneNumber sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&patient.ID,
		&patient.PatientID,
		&patient.ClinicCode,
		&patient.FirstName,
		&patient.LastName,
		&dob,
		&email,
		&phoneNumber,
		&patient.Attributes,
		&patient.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dob.Valid {
		patient.DateOfBirth = &dob.String
	}
	if email.Valid {
		patient.Email = email.String
	}
	if phoneNumber.Valid {
		patient.PhoneNumber = phoneNumber.String
	}
	if updatedAt.Valid {
		patient.UpdatedAt = &updatedAt.Time
	}

	return &patient, nil
}

// single runs query and requires exactly one row.
func single[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (*T, error), query string, args ...any) (*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found *T
	for rows.Next() {
		if found != nil {
			return nil, ErrMultipleRows
		}
		found, err = scan(rows)
		if err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *Repository) GetClinicByCode(ctx context.Context, code string) (*Clinic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE clinic_code = $1
		LIMIT 2
	`, clinicColumns, r.table("clinics"))

	clinic, err := single(ctx, r.db, scanClinic, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinic: %w", err)
	}
	return clinic, nil
}

func (r *Repository) ListClinics(ctx context.Context) ([]Clinic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
	`, clinicColumns, r.table("clinics"))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinics: %w", err)
	}
	defer rows.Close()

	var clinics []Clinic
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinic: %w", err)
		}
		clinics = append(clinics, *clinic)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinics: %w", err)
	}

	return clinics, nil
}

func (r *Repository) CreateClinic(ctx context.Context, clinic Clinic) (*Clinic, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(clinic_code, name, address, phone_number, attributes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, r.table("clinics"), clinicColumns)

	created, err := scanClinic(r.db.QueryRowContext(ctx, query,
		clinic.ClinicCode,
		clinic.Name,
		nullIfEmpty(clinic.Address),
		nullIfEmpty(clinic.PhoneNumber),
		clinic.Attributes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert clinic: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdateClinic(ctx context.Context, code string, updates ClinicUpdate) (*Clinic, error) {
	query, args := buildClinicUpdate(r.table("clinics"), code, updates)

	updated, err := scanClinic(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}
	return updated, nil
}

func (r *Repository) GetPatientByID(ctx context.Context, id string) (*Patient, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE patient_id = $1
		LIMIT 2
	`, patientColumns, r.table("patients"))

	patient, err := single(ctx, r.db, scanPatient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	return patient, nil
}

func (r *Repository) ListPatientsByClinicCode(ctx context.Context, code string) ([]Patient, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE clinic_code = $1
	`, patientColumns, r.table("patients"))

	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := []Patient{}
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, nil
}

func (r *Repository) CreatePatient(ctx context.Context, patient Patient) (*Patient, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(patient_id, clinic_code, first_name, last_name, date_of_birth, email, phone_number, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, r.table("patients"), patientColumns)

	created, err := scanPatient(r.db.QueryRowContext(ctx, query,
		patient.PatientID,
		patient.ClinicCode,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		nullIfEmpty(patient.Email),
		nullIfEmpty(patient.PhoneNumber),
		patient.Attributes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdatePatient(ctx context.Context, id string, updates PatientUpdate) (*Patient, error) {
	query, args := buildPatientUpdate(r.table("patients"), id, updates)

	updated, err := scanPatient(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return updated, nil
}

// setClause accumulates "column = $n" assignments for partial updates.
type setClause struct {
	assignments []string
	args        []any
}

func (s *setClause) set(column string, value any) {
	s.args = append(s.args, value)
	s.assignments = append(s.assignments, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) mergeAttributes(attrs Attributes) {
	s.args = append(s.args, attrs)
	s.assignments = append(s.assignments, fmt.Sprintf("attributes = COALESCE(attributes, '{}'::jsonb) || $%d::jsonb", len(s.args)))
}

// build finishes the statement. updated_at is always touched, so an empty
// update still returns the current row.
func (s *setClause) build(table, keyColumn string, key any, returning string) (string, []any) {
	s.assignments = append(s.assignments, "updated_at = NOW()")
	s.args = append(s.args, key)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE %s = $%d
		RETURNING %s
	`, table, strings.Join(s.assignments, ", "), keyColumn, len(s.args), returning)

	return query, s.args
}

func buildClinicUpdate(table, code string, updates ClinicUpdate) (string, []any) {
	var s setClause
	if updates.Name != nil {
		s.set("name", *updates.Name)
	}
	if updates.Address != nil {
		s.set("address", *updates.Address)
	}
	if updates.PhoneNumber != nil {
		s.set("phone_number", *updates.PhoneNumber)
	}
	if len(updates.Attributes) > 0 {
		s.mergeAttributes(updates.Attributes)
	}
	return s.build(table, "clinic_code", code, clinicColumns)
}

func buildPatientUpdate(table, id string, updates PatientUpdate) (string, []any) {
	var s setClause
	if updates.ClinicCode != nil {
		s.set("clinic_code", *updates.ClinicCode)
	}
	if updates.FirstName != nil {
		s.set("first_name", *updates.FirstName)
	}
	if updates.LastName != nil {
		s.set("last_name", *updates.LastName)
	}
	if updates.DateOfBirth != nil {
		s.set("date_of_birth", *updates.DateOfBirth)
	}
	if updates.Email != nil {
		s.set("email", *updates.Email)
	}
	if updates.PhoneNumber != nil {
		s.set("phone_number", *updates.PhoneNumber)
	}
	if len(updates.Attributes) > 0 {
		s.mergeAttributes(updates.Attributes)
	}
	return s.build(table, "patient_id", id, patientColumns)
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
