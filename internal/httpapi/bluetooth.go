package httpapi

import (
	"net/http"

	"github.com/unipheas/intercept/internal/modes"
	"github.com/unipheas/intercept/internal/validate"
)

type btScanStartRequest struct {
	Mode        string `json:"mode"`
	Interface   string `json:"interface"`
	Duration    int    `json:"duration"`
	ScanBLE     bool   `json:"scan_ble"`
	ScanClassic bool   `json:"scan_classic"`
}

func (s *Server) handleBtScanStart(w http.ResponseWriter, r *http.Request) {
	var req btScanStartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	backend := req.Mode
	if backend == "" || backend == "bluetoothctl" {
		backend = "ctl"
	}
	// hcitool lescan is BLE-only; a classic-only request has to go
	// through the interactive bluetoothctl session.
	if backend == "hcitool" && req.ScanClassic && !req.ScanBLE {
		backend = "ctl"
	}
	out := s.bluetooth.Start(modes.BluetoothParams{
		Backend:  backend,
		Adapter:  req.Interface,
		Duration: req.Duration,
	})
	s.writeOutcome(w, out, "bluetooth scan")
}

func (s *Server) handleBtScanStop(w http.ResponseWriter, r *http.Request) {
	s.writeStopOutcome(w, s.bluetooth.Stop())
}

func (s *Server) handleBtInterfaces(w http.ResponseWriter, r *http.Request) {
	ifaces, err := s.bluetooth.Interfaces()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"interfaces": ifaces})
}

func (s *Server) handleBtDevices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"devices": s.bluetooth.Devices()})
}

type btResetRequest struct {
	Adapter string `json:"adapter"`
}

func (s *Server) handleBtReset(w http.ResponseWriter, r *http.Request) {
	var req btResetRequest
	_ = decodeJSON(r, &req)
	if err := s.bluetooth.ResetAdapter(req.Adapter); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
}

type btEnumRequest struct {
	MAC string `json:"mac"`
}

func (s *Server) handleBtEnum(w http.ResponseWriter, r *http.Request) {
	var req btEnumRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.MAC(req.MAC); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	services, err := s.bluetooth.Services(req.MAC)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "services": services})
}

type btReloadOUIRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleBtReloadOUI(w http.ResponseWriter, r *http.Request) {
	var req btReloadOUIRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.bluetooth.ReloadOUI(req.Path); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
}
