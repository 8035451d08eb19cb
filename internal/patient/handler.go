package patient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/respond"
)

type Store interface {
	GetPatientByID(ctx context.Context, id string) datastore.Result[*datastore.Patient]
	CreatePatient(ctx context.Context, patient datastore.Patient) datastore.Result[*datastore.Patient]
	UpdatePatient(ctx context.Context, id string, updates datastore.PatientUpdate) datastore.Result[*datastore.Patient]
}

var _ Store = (*datastore.Checked)(nil)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type PatientSuccessResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Patient *datastore.Patient `json:"patient,omitempty"`
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req datastore.Patient
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	if req.PatientID == "" {
		respond.Error(w, http.StatusBadRequest, "validation_error", "patient_id is required")
		return
	}

	if req.ClinicCode == "" {
		respond.Error(w, http.StatusBadRequest, "validation_error", "clinic_code is required")
		return
	}

	res := h.store.CreatePatient(r.Context(), req)
	if !res.OK() {
		respond.Failure(w, res.Status, "Patient")
		return
	}

	respond.JSON(w, http.StatusCreated, PatientSuccessResponse{
		Success: true,
		Message: "Patient created successfully",
		Patient: res.Value,
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	res := h.store.GetPatientByID(r.Context(), id)
	if !res.OK() {
		respond.Failure(w, res.Status, "Patient")
		return
	}

	respond.JSON(w, http.StatusOK, PatientSuccessResponse{
		Success: true,
		Message: "Patient retrieved successfully",
		Patient: res.Value,
	})
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req datastore.PatientUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	res := h.store.UpdatePatient(r.Context(), id, req)
	if !res.OK() {
		respond.Failure(w, res.Status, "Patient")
		return
	}

	respond.JSON(w, http.StatusOK, PatientSuccessResponse{
		Success: true,
		Message: "Patient updated successfully",
		Patient: res.Value,
	})
}
