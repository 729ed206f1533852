package httpapi

import (
	"net/http"

	"github.com/unipheas/intercept/internal/modes"
)

type iridiumStartRequest struct {
	Freq       string `json:"freq"`
	Gain       string `json:"gain"`
	SampleRate string `json:"sampleRate"`
	Device     string `json:"device"`
}

func (s *Server) handleIridiumStart(w http.ResponseWriter, r *http.Request) {
	var req iridiumStartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out := s.iridium.Start(modes.IridiumParams{
		Frequency:  req.Freq,
		Gain:       req.Gain,
		SampleRate: req.SampleRate,
		Device:     req.Device,
	})
	s.writeOutcome(w, out, "iridium listener")
}

func (s *Server) handleIridiumStop(w http.ResponseWriter, r *http.Request) {
	s.writeStopOutcome(w, s.iridium.Stop())
}

func (s *Server) handleIridiumTools(w http.ResponseWriter, r *http.Request) {
	s.writeToolStatus(w, "iridium")
}
