// File: internal/handlers/geocoding_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/routelab/route-planner/internal/services/geocode"
)

type GeocodingHandler struct {
	GeocodeService *geocode.Service
}

func NewGeocodingHandler(gs *geocode.Service) *GeocodingHandler {
	return &GeocodingHandler{GeocodeService: gs}
}

// Reverse converts coordinates to a readable location name.
func (h *GeocodingHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		writeError(w, "latitude and longitude are required", http.StatusUnprocessableEntity)
		return
	}

	result, err := h.GeocodeService.Reverse(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		if geocode.IsValidation(err) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		// lookup failures and a missing key both surface the same way
		writeError(w, "Reverse geocoding failed. Ensure MAPBOX_API_KEY is configured.", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
