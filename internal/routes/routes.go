package routes

import (
	"fmt"
	"net/http"
	"strconv"

	"CampusOntology.api/internal/controller"
	"CampusOntology.api/internal/middleware"
	"CampusOntology.api/internal/repository"
	"github.com/gorilla/mux"
)

// Options carries what the router serves besides the API itself.
type Options struct {
	StaticDir string
	Graph     repository.Source
	Metrics   http.Handler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router *mux.Router, c *controller.CampusController, opts Options) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/buildings", c.HandleBuildings).Methods(http.MethodGet)
	api.HandleFunc("/parking_lots", c.HandleParkingLots).Methods(http.MethodGet)
	api.HandleFunc("/nearby_parking", c.HandleNearbyParking).Methods(http.MethodGet)

	// Health check (GET only)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if opts.Graph != nil {
			w.Header().Set("X-Graph-Triples", strconv.Itoa(opts.Graph.Snapshot().Len()))
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	if opts.StaticDir != "" {
		router.PathPrefix("/").Handler(controller.StaticHandler(opts.StaticDir)).Methods(http.MethodGet, http.MethodHead)
	}

	router.MethodNotAllowedHandler = http.HandlerFunc(c.HandleMethodNotAllowed)
}

// NewRouter builds a router with every route registered. Matched routes
// report their template to middleware.Observe.
func NewRouter(c *controller.CampusController, opts Options) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CaptureRoute)
	RegisterRoutes(router, c, opts)
	return router
}
