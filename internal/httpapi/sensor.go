package httpapi

import (
	"net/http"

	"github.com/unipheas/intercept/internal/modes"
)

type startSensorRequest struct {
	Frequency string `json:"frequency"`
	Gain      string `json:"gain"`
	Device    string `json:"device"`
}

func (s *Server) handleSensorStart(w http.ResponseWriter, r *http.Request) {
	var req startSensorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out := s.sensor.Start(modes.SensorParams{
		Frequency: req.Frequency,
		Gain:      req.Gain,
		Device:    req.Device,
	})
	s.writeOutcome(w, out, "sensor")
}

func (s *Server) handleSensorStop(w http.ResponseWriter, r *http.Request) {
	s.writeStopOutcome(w, s.sensor.Stop())
}
