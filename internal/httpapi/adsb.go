package httpapi

import (
	"net/http"

	"github.com/unipheas/intercept/internal/modes"
)

type adsbStartRequest struct {
	Gain     string   `json:"gain"`
	Device   string   `json:"device"`
	JSONURLs []string `json:"json_urls"`
}

func (s *Server) handleAdsbStart(w http.ResponseWriter, r *http.Request) {
	var req adsbStartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out := s.adsb.Start(modes.AdsbParams{Gain: req.Gain, Device: req.Device, JSONURLs: req.JSONURLs})
	s.writeOutcome(w, out, "ADS-B")
}

func (s *Server) handleAdsbStop(w http.ResponseWriter, r *http.Request) {
	s.writeStopOutcome(w, s.adsb.Stop())
}

func (s *Server) handleAdsbTools(w http.ResponseWriter, r *http.Request) {
	s.writeToolStatus(w, "adsb")
}
