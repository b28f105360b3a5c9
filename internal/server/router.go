package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/formshift/formshift/internal/handlers"
	"github.com/formshift/formshift/internal/middleware"
)

// NewRouter wires the API routes and middleware.
func NewRouter(h *handlers.Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/translate", h.Translate).Methods(http.MethodPost)
	api.HandleFunc("/forms", h.ListForms).Methods(http.MethodGet)
	api.HandleFunc("/forms", h.AddForm).Methods(http.MethodPost)
	api.HandleFunc("/forms/{row:[0-9]+}", h.UpdateForm).Methods(http.MethodPut)
	api.HandleFunc("/forms/{row:[0-9]+}", h.DeleteForm).Methods(http.MethodDelete)
	api.HandleFunc("/history", h.ListHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{id}/star", h.Star).Methods(http.MethodPost)
	api.HandleFunc("/history/{id}/star", h.Unstar).Methods(http.MethodDelete)
	api.HandleFunc("/interest/{kind}", h.GetInterest).Methods(http.MethodGet)
	api.HandleFunc("/interest/{kind}", h.RegisterInterest).Methods(http.MethodPost)
	api.HandleFunc("/stats/sessions", h.SessionStats).Methods(http.MethodGet)

	cors := middleware.CORS(middleware.DefaultCORSConfig())
	return middleware.RequestID(cors(r))
}
