package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/unipheas/intercept/internal/modes"
	"github.com/unipheas/intercept/internal/satellite"
)

type satellitePredictRequest struct {
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Hours      float64       `json:"hours"`
	MinEl      float64       `json:"minEl"`
	Satellites []interface{} `json:"satellites"`
}

func (s *Server) handleSatellitePredict(w http.ResponseWriter, r *http.Request) {
	var req satellitePredictRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	passes, err := s.satellite.Predict(modes.PredictParams{
		Lat:   req.Latitude,
		Lon:   req.Longitude,
		Hours: req.Hours,
		MinEl: req.MinEl,
		Names: satellite.ResolveNames(req.Satellites),
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "passes": passes})
}

type satellitePositionRequest struct {
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Satellites []interface{} `json:"satellites"`
	Track      bool          `json:"track"`
}

func (s *Server) handleSatellitePosition(w http.ResponseWriter, r *http.Request) {
	var req satellitePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	positions, err := s.satellite.Position(modes.PositionParams{
		Lat:          req.Latitude,
		Lon:          req.Longitude,
		Names:        satellite.ResolveNames(req.Satellites),
		IncludeTrack: req.Track,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "positions": positions})
}

func (s *Server) handleSatelliteUpdateTLE(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r, 15*time.Second)
	defer cancel()
	updated, err := s.satellite.UpdateTLE(ctx)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "updated": updated})
}

func (s *Server) handleSatelliteCelestrak(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	ctx, cancel := timeoutCtx(r, 15*time.Second)
	defer cancel()
	records, err := s.satellite.Celestrak(ctx, category)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "satellites": records})
}
