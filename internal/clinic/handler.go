package clinic

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/respond"
)

// Store is the part of the datastore the clinic endpoints use
type Store interface {
	GetClinicByCode(ctx context.Context, code string) datastore.Result[*datastore.Clinic]
	GetAllClinics(ctx context.Context) datastore.Result[map[string]datastore.Clinic]
	CreateClinic(ctx context.Context, clinic datastore.Clinic) datastore.Result[*datastore.Clinic]
	UpdateClinic(ctx context.Context, code string, updates datastore.ClinicUpdate) datastore.Result[*datastore.Clinic]
	GetPatientsByClinicCode(ctx context.Context, code string) datastore.Result[[]datastore.Patient]
}

var _ Store = (*datastore.Checked)(nil)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type SuccessResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Clinic  *datastore.Clinic `json:"clinic,omitempty"`
}

type ListResponse struct {
	Success bool                        `json:"success"`
	Clinics map[string]datastore.Clinic `json:"clinics"`
	Total   int                         `json:"total"`
}

type PatientsResponse struct {
	Success    bool                `json:"success"`
	ClinicCode string              `json:"clinic_code"`
	Patients   []datastore.Patient `json:"patients"`
	Total      int                 `json:"total"`
}

func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req datastore.Clinic
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if req.ClinicCode == "" {
		respond.Error(w, http.StatusBadRequest, "validation_error", "clinic_code is required")
		return
	}

	res := h.store.CreateClinic(r.Context(), req)
	if !res.OK() {
		respond.Failure(w, res.Status, "Clinic")
		return
	}

	respond.JSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Clinic created successfully",
		Clinic:  res.Value,
	})
}

func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	res := h.store.GetAllClinics(r.Context())
	if !res.OK() {
		respond.Failure(w, res.Status, "Clinics")
		return
	}

	respond.JSON(w, http.StatusOK, ListResponse{
		Success: true,
		Clinics: res.Value,
		Total:   len(res.Value),
	})
}

func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	res := h.store.GetClinicByCode(r.Context(), code)
	if !res.OK() {
		respond.Failure(w, res.Status, "Clinic")
		return
	}

	respond.JSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Clinic retrieved successfully",
		Clinic:  res.Value,
	})
}

func (h *Handler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req datastore.ClinicUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	res := h.store.UpdateClinic(r.Context(), code, req)
	if !res.OK() {
		respond.Failure(w, res.Status, "Clinic")
		return
	}

	respond.JSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Clinic updated successfully",
		Clinic:  res.Value,
	})
}

func (h *Handler) ListClinicPatients(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	res := h.store.GetPatientsByClinicCode(r.Context(), code)
	if !res.OK() {
		respond.Failure(w, res.Status, "Patients")
		return
	}

	respond.JSON(w, http.StatusOK, PatientsResponse{
		Success:    true,
		ClinicCode: datastore.NormalizeClinicCode(code),
		Patients:   res.Value,
		Total:      len(res.Value),
	})
}
