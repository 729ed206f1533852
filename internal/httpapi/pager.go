package httpapi

import (
	"net/http"

	"github.com/unipheas/intercept/internal/modes"
)

type startPagerRequest struct {
	Frequency string   `json:"frequency"`
	Gain      string   `json:"gain"`
	Squelch   string   `json:"squelch"`
	PPM       string   `json:"ppm"`
	Device    string   `json:"device"`
	Protocols []string `json:"protocols"`
}

func (s *Server) handlePagerStart(w http.ResponseWriter, r *http.Request) {
	var req startPagerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out := s.pager.Start(modes.PagerParams{
		Frequency: req.Frequency,
		Gain:      req.Gain,
		Squelch:   req.Squelch,
		PPM:       req.PPM,
		Device:    req.Device,
		Protocols: req.Protocols,
	})
	s.writeOutcome(w, out, "pager")
}

func (s *Server) handlePagerStop(w http.ResponseWriter, r *http.Request) {
	s.writeStopOutcome(w, s.pager.Stop())
}

func (s *Server) handlePagerStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pager.Status())
}

type loggingRequest struct {
	Enabled bool   `json:"enabled"`
	LogFile string `json:"log_file"`
}

func (s *Server) handlePagerLogging(w http.ResponseWriter, r *http.Request) {
	var req loggingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.pager.SetLogging(req.Enabled, req.LogFile); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
}
