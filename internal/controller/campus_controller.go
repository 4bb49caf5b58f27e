package controller

import (
	"context"
	"errors"
	"net/http"

	"CampusOntology.api/internal/models"
	"CampusOntology.api/internal/service"
	"CampusOntology.api/internal/utils"
	"github.com/rs/zerolog"
)

// CampusService is what the controller needs from the service layer.
type CampusService interface {
	ListBuildings(ctx context.Context) []models.Building
	ListParkingLots(ctx context.Context) []models.ParkingLot
	NearbyParking(ctx context.Context, name string) ([]models.NearbyParkingLot, error)
}

// CampusController handles HTTP requests for campus entities.
type CampusController struct {
	service CampusService
	logger  zerolog.Logger
}

// NewCampusController creates a new CampusController.
func NewCampusController(service CampusService, logger zerolog.Logger) *CampusController {
	return &CampusController{
		service: service,
		logger:  logger,
	}
}

// HandleBuildings lists every building.
func (c *CampusController) HandleBuildings(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.BuildingsResponse{
		Buildings: c.service.ListBuildings(r.Context()),
	})
}

// HandleParkingLots lists every parking lot.
func (c *CampusController) HandleParkingLots(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.ParkingLotsResponse{
		ParkingLots: c.service.ListParkingLots(r.Context()),
	})
}

// HandleNearbyParking lists the parking lots near the building named by the
// building_name query parameter.
func (c *CampusController) HandleNearbyParking(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("building_name")

	lots, err := c.service.NearbyParking(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrBuildingNotFound) {
			c.logger.Debug().Str("building_name", name).Msg("Building not found")
			utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeResourceNotFound, "Building not found", http.StatusNotFound))
			return
		}
		c.logger.Error().Err(err).Str("building_name", name).Msg("Error resolving nearby parking")
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInternalServerError, "Internal server error", http.StatusInternalServerError))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.NearbyParkingResponse{NearbyParking: lots})
}

// HandleMethodNotAllowed answers requests whose path exists but whose method does not.
func (c *CampusController) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed))
}
