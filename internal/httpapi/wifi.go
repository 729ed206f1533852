package httpapi

import (
	"net/http"

	"github.com/unipheas/intercept/internal/modes"
)

type wifiScanStartRequest struct {
	Interface string `json:"interface"`
	Channel   string `json:"channel"`
	Band      string `json:"band"`
}

func (s *Server) handleWifiScanStart(w http.ResponseWriter, r *http.Request) {
	var req wifiScanStartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out := s.wifi.StartScan(modes.ScanParams{Interface: req.Interface, Channel: req.Channel, Band: req.Band})
	s.writeOutcome(w, out, "WiFi scan")
}

func (s *Server) handleWifiScanStop(w http.ResponseWriter, r *http.Request) {
	s.writeStopOutcome(w, s.wifi.StopScan())
}

func (s *Server) handleWifiInterfaces(w http.ResponseWriter, r *http.Request) {
	ifaces, err := s.wifi.Interfaces()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"interfaces": ifaces})
}

type wifiMonitorRequest struct {
	Interface     string `json:"interface"`
	Action        string `json:"action"`
	KillProcesses bool   `json:"kill_processes"`
}

func (s *Server) handleWifiMonitor(w http.ResponseWriter, r *http.Request) {
	var req wifiMonitorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	newState, iface, err := s.wifi.Monitor(modes.MonitorParams{
		Interface:     req.Interface,
		Action:        req.Action,
		KillProcesses: req.KillProcesses,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"state":     newState,
		"interface": iface,
	})
}

func (s *Server) handleWifiNetworks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"networks": s.wifi.Networks(),
		"clients":  s.wifi.ClientStore().All(),
	})
}

type wifiDeauthRequest struct {
	BSSID     string `json:"bssid"`
	Client    string `json:"client"`
	Count     int    `json:"count"`
	Interface string `json:"interface"`
}

func (s *Server) handleWifiDeauth(w http.ResponseWriter, r *http.Request) {
	var req wifiDeauthRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.wifi.Deauth(modes.DeauthParams{
		BSSID:     req.BSSID,
		Client:    req.Client,
		Count:     req.Count,
		Interface: req.Interface,
	}); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
}

type wifiHandshakeCaptureRequest struct {
	BSSID     string `json:"bssid"`
	Channel   string `json:"channel"`
	Interface string `json:"interface"`
}

func (s *Server) handleWifiHandshakeCapture(w http.ResponseWriter, r *http.Request) {
	var req wifiHandshakeCaptureRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	capture, out := s.wifi.CaptureHandshake(req.BSSID, req.Channel, req.Interface)
	if !out.Started() {
		s.writeOutcome(w, out, "WiFi handshake capture")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "started",
		"bssid":  capture.BSSID,
		"file":   capture.File,
	})
}

type wifiHandshakeStatusRequest struct {
	File  string `json:"file"`
	BSSID string `json:"bssid"`
}

func (s *Server) handleWifiHandshakeStatus(w http.ResponseWriter, r *http.Request) {
	var req wifiHandshakeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := s.wifi.HandshakeStatusCheck(req.File, req.BSSID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

type wifiPMKIDCaptureRequest struct {
	BSSID     string `json:"bssid"`
	Interface string `json:"interface"`
}

func (s *Server) handleWifiPMKIDCapture(w http.ResponseWriter, r *http.Request) {
	var req wifiPMKIDCaptureRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	capture, out := s.wifi.CapturePMKID(req.BSSID, req.Interface)
	if !out.Started() {
		s.writeOutcome(w, out, "PMKID capture")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "started",
		"bssid":  capture.BSSID,
		"file":   capture.File,
	})
}

type wifiPMKIDStatusRequest struct {
	File string `json:"file"`
}

func (s *Server) handleWifiPMKIDStatus(w http.ResponseWriter, r *http.Request) {
	var req wifiPMKIDStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := s.wifi.PMKIDStatusCheck(req.File)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

type wifiPMKIDStopRequest struct {
	BSSID string `json:"bssid"`
}

func (s *Server) handleWifiPMKIDStop(w http.ResponseWriter, r *http.Request) {
	var req wifiPMKIDStopRequest
	_ = decodeJSON(r, &req)
	s.writeStopOutcome(w, s.wifi.StopPMKID(req.BSSID))
}
