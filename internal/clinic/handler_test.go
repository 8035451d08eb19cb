package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/respond"
)

// mockStore implements Store for testing
type mockStore struct {
	getClinicFunc   func(ctx context.Context, code string) datastore.Result[*datastore.Clinic]
	listClinicsFunc func(ctx context.Context) datastore.Result[map[string]datastore.Clinic]
	createFunc      func(ctx context.Context, clinic datastore.Clinic) datastore.Result[*datastore.Clinic]
	updateFunc      func(ctx context.Context, code string, updates datastore.ClinicUpdate) datastore.Result[*datastore.Clinic]
	patientsFunc    func(ctx context.Context, code string) datastore.Result[[]datastore.Patient]
}

func unavailable[T any](v T) datastore.Result[T] {
	return datastore.Result[T]{Value: v, Status: datastore.StatusUnavailable, Err: datastore.ErrUnavailable}
}

func (m *mockStore) GetClinicByCode(ctx context.Context, code string) datastore.Result[*datastore.Clinic] {
	if m.getClinicFunc != nil {
		return m.getClinicFunc(ctx, code)
	}
	return unavailable[*datastore.Clinic](nil)
}

func (m *mockStore) GetAllClinics(ctx context.Context) datastore.Result[map[string]datastore.Clinic] {
	if m.listClinicsFunc != nil {
		return m.listClinicsFunc(ctx)
	}
	return unavailable(map[string]datastore.Clinic{})
}

func (m *mockStore) CreateClinic(ctx context.Context, clinic datastore.Clinic) datastore.Result[*datastore.Clinic] {
	if m.createFunc != nil {
		return m.createFunc(ctx, clinic)
	}
	return unavailable[*datastore.Clinic](nil)
}

func (m *mockStore) UpdateClinic(ctx context.Context, code string, updates datastore.ClinicUpdate) datastore.Result[*datastore.Clinic] {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, code, updates)
	}
	return unavailable[*datastore.Clinic](nil)
}

func (m *mockStore) GetPatientsByClinicCode(ctx context.Context, code string) datastore.Result[[]datastore.Patient] {
	if m.patientsFunc != nil {
		return m.patientsFunc(ctx, code)
	}
	return unavailable([]datastore.Patient{})
}

func withCode(req *http.Request, code string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"code": code})
}

func TestHandlerCreateClinic_Success(t *testing.T) {
	store := &mockStore{
		createFunc: func(ctx context.Context, c datastore.Clinic) datastore.Result[*datastore.Clinic] {
			c.ID = "clinic-1"
			return datastore.Result[*datastore.Clinic]{Value: &c}
		},
	}
	handler := NewHandler(store)

	body, _ := json.Marshal(datastore.Clinic{ClinicCode: "ABC", Name: "North"})
	req := httptest.NewRequest(http.MethodPost, "/clinics", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response SuccessResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if !response.Success || response.Clinic == nil {
		t.Fatal("Expected clinic in successful response")
	}
	if response.Clinic.ID != "clinic-1" {
		t.Errorf("Expected id 'clinic-1', got '%s'", response.Clinic.ID)
	}
}

func TestHandlerCreateClinic_InvalidJSON(t *testing.T) {
	handler := NewHandler(&mockStore{})

	req := httptest.NewRequest(http.MethodPost, "/clinics", bytes.NewReader([]byte("invalid json")))
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var response respond.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Error != "invalid_request" {
		t.Errorf("Expected error 'invalid_request', got '%s'", response.Error)
	}
}

func TestHandlerCreateClinic_MissingCode(t *testing.T) {
	called := false
	store := &mockStore{
		createFunc: func(ctx context.Context, c datastore.Clinic) datastore.Result[*datastore.Clinic] {
			called = true
			return datastore.Result[*datastore.Clinic]{Value: &c}
		},
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/clinics", bytes.NewReader([]byte(`{"name":"North"}`)))
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if called {
		t.Error("Expected store not to be called")
	}
}

func TestHandlerCreateClinic_QueryError(t *testing.T) {
	store := &mockStore{
		createFunc: func(ctx context.Context, c datastore.Clinic) datastore.Result[*datastore.Clinic] {
			return datastore.Result[*datastore.Clinic]{Status: datastore.StatusQueryError}
		},
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/clinics", bytes.NewReader([]byte(`{"clinic_code":"ABC"}`)))
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}
}

func TestHandlerGetClinic(t *testing.T) {
	tests := []struct {
		name       string
		status     datastore.Status
		wantStatus int
	}{
		{"found", datastore.StatusOK, http.StatusOK},
		{"not found", datastore.StatusNotFound, http.StatusNotFound},
		{"unavailable", datastore.StatusUnavailable, http.StatusServiceUnavailable},
		{"transport", datastore.StatusTransportError, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCode string
			store := &mockStore{
				getClinicFunc: func(ctx context.Context, code string) datastore.Result[*datastore.Clinic] {
					gotCode = code
					if tt.status != datastore.StatusOK {
						return datastore.Result[*datastore.Clinic]{Status: tt.status}
					}
					return datastore.Result[*datastore.Clinic]{Value: &datastore.Clinic{ClinicCode: "ABC"}}
				},
			}
			handler := NewHandler(store)

			req := withCode(httptest.NewRequest(http.MethodGet, "/clinics/abc", nil), "abc")
			rec := httptest.NewRecorder()

			handler.GetClinic(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if gotCode != "abc" {
				t.Errorf("Expected path code passed through, got '%s'", gotCode)
			}
		})
	}
}

func TestHandlerListClinics(t *testing.T) {
	store := &mockStore{
		listClinicsFunc: func(ctx context.Context) datastore.Result[map[string]datastore.Clinic] {
			return datastore.Result[map[string]datastore.Clinic]{Value: map[string]datastore.Clinic{
				"ABC": {ClinicCode: "ABC"},
				"DEF": {ClinicCode: "DEF"},
			}}
		},
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/clinics", nil)
	rec := httptest.NewRecorder()

	handler.ListClinics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response ListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Total != 2 {
		t.Errorf("Expected total 2, got %d", response.Total)
	}
	if _, ok := response.Clinics["DEF"]; !ok {
		t.Error("Expected clinics keyed by code")
	}
}

func TestHandlerListClinics_Unavailable(t *testing.T) {
	handler := NewHandler(&mockStore{})

	req := httptest.NewRequest(http.MethodGet, "/clinics", nil)
	rec := httptest.NewRecorder()

	handler.ListClinics(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}

	var response respond.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Error != "datastore_unavailable" {
		t.Errorf("Expected error 'datastore_unavailable', got '%s'", response.Error)
	}
}

func TestHandlerUpdateClinic(t *testing.T) {
	var got datastore.ClinicUpdate
	store := &mockStore{
		updateFunc: func(ctx context.Context, code string, updates datastore.ClinicUpdate) datastore.Result[*datastore.Clinic] {
			got = updates
			return datastore.Result[*datastore.Clinic]{Value: &datastore.Clinic{ClinicCode: "ABC", Name: *updates.Name}}
		},
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodPatch, "/clinics/abc", bytes.NewReader([]byte(`{"name":"South"}`)))
	req = withCode(req, "abc")
	rec := httptest.NewRecorder()

	handler.UpdateClinic(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if got.Name == nil || *got.Name != "South" {
		t.Error("Expected name update to reach the store")
	}
	if got.Address != nil {
		t.Error("Expected absent fields to stay nil")
	}
}

func TestHandlerUpdateClinic_NotFound(t *testing.T) {
	store := &mockStore{
		updateFunc: func(ctx context.Context, code string, updates datastore.ClinicUpdate) datastore.Result[*datastore.Clinic] {
			return datastore.Result[*datastore.Clinic]{Status: datastore.StatusNotFound}
		},
	}
	handler := NewHandler(store)

	req := withCode(httptest.NewRequest(http.MethodPatch, "/clinics/zzz", bytes.NewReader([]byte(`{}`))), "zzz")
	rec := httptest.NewRecorder()

	handler.UpdateClinic(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandlerListClinicPatients(t *testing.T) {
	store := &mockStore{
		patientsFunc: func(ctx context.Context, code string) datastore.Result[[]datastore.Patient] {
			return datastore.Result[[]datastore.Patient]{Value: []datastore.Patient{}}
		},
	}
	handler := NewHandler(store)

	req := withCode(httptest.NewRequest(http.MethodGet, "/clinics/abc/patients", nil), "abc")
	rec := httptest.NewRecorder()

	handler.ListClinicPatients(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response map[string]any
	json.NewDecoder(rec.Body).Decode(&response)

	if response["clinic_code"] != "ABC" {
		t.Errorf("Expected normalized clinic code, got %v", response["clinic_code"])
	}
	patients, ok := response["patients"].([]any)
	if !ok || len(patients) != 0 {
		t.Errorf("Expected empty patients array, got %v", response["patients"])
	}
}
