package utils

import (
	"encoding/json"
	"net/http"

	"CampusOntology.api/internal/models"
	"github.com/rs/zerolog/log"
)

// RespondWithError sends a JSON error response using the APIError model.
// It sets the HTTP status code from the APIError and encodes its body.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	RespondWithJSON(writer, apiErr.StatusCode, apiErr)
}

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(writer, "Failed to send JSON response", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(append(body, '\n')); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
