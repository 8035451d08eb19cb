package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/clinic"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/patient"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/respond"
)

const serviceName = "clinic-datastore"

type RouterConfig struct {
	AllowedOrigins []string
	Logger         zerolog.Logger
	Metrics        HTTPRecorder
}

type HealthResponse struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	DatastoreAvailable bool   `json:"datastore_available"`
	DatastoreReason    string `json:"datastore_reason,omitempty"`
}

// SetupRouter initializes all routes for the application
func SetupRouter(store *datastore.Store, cfg RouterConfig) http.Handler {
	checked := store.Checked()
	clinicHandler := clinic.NewHandler(checked)
	patientHandler := patient.NewHandler(checked)

	r := mux.NewRouter()
	r.Use(
		otelmux.Middleware(serviceName),
		RequestLogger(cfg.Logger, cfg.Metrics),
		Recover(cfg.Logger),
	)

	// The service stays up when the datastore is not; health reports which.
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:             "ok",
			Service:            serviceName,
			DatastoreAvailable: store.IsAvailable(),
		}
		if !resp.DatastoreAvailable {
			resp.Status = "degraded"
			resp.DatastoreReason = store.Diagnosis().Reason.String()
		}
		respond.JSON(w, http.StatusOK, resp)
	}).Methods(http.MethodGet)

	r.HandleFunc("/clinics", clinicHandler.ListClinics).Methods(http.MethodGet)
	r.HandleFunc("/clinics", clinicHandler.CreateClinic).Methods(http.MethodPost)
	r.HandleFunc("/clinics/{code}", clinicHandler.GetClinic).Methods(http.MethodGet)
	r.HandleFunc("/clinics/{code}", clinicHandler.UpdateClinic).Methods(http.MethodPatch)
	r.HandleFunc("/clinics/{code}/patients", clinicHandler.ListClinicPatients).Methods(http.MethodGet)

	r.HandleFunc("/patients", patientHandler.CreatePatient).Methods(http.MethodPost)
	r.HandleFunc("/patients/{id}", patientHandler.GetPatient).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id}", patientHandler.UpdatePatient).Methods(http.MethodPatch)

	return CORSMiddleware(cfg.AllowedOrigins)(RequestID(r))
}
